package record

import "fmt"

// Query is one query record: its raw fields, which edition of its source
// record it was expanded from, and the filename it was read from. Schema
// version is a concern of the decoder that produces a Query, not of the
// Query itself — both json-schema-version=1 and =2 inputs resolve down to
// this same shape before the engine ever sees them.
type Query struct {
	title      string
	author     string
	place      string
	year       *int
	edition    int
	filename   string
	diagnostic Diagnostic
}

// Diagnostic carries schema-v2 fields the matching pipeline never reads but
// the report writer may still want for audit purposes: edition volume
// enumeration and any serial titles attached to the source record.
type Diagnostic struct {
	VolumeEnumeration string
	SerialTitles      []string
}

// NewQuery validates and creates a Query. edition must be >= 0; filename
// must be non-empty.
func NewQuery(title, author, place string, year *int, edition int, filename string, diag Diagnostic) (Query, error) {
	if edition < 0 {
		return Query{}, fmt.Errorf("edition index %d is negative", edition)
	}
	if filename == "" {
		return Query{}, fmt.Errorf("source filename is required")
	}
	return Query{
		title: title, author: author, place: place, year: year,
		edition: edition, filename: filename, diagnostic: diag,
	}, nil
}

// Title returns the raw (non-canonicalised) title.
func (q Query) Title() string { return q.title }

// Author returns the raw author string.
func (q Query) Author() string { return q.author }

// Place returns the raw place of publication.
func (q Query) Place() string { return q.place }

// Year returns the publication year, or nil if absent.
func (q Query) Year() *int { return q.year }

// Edition returns the expansion index within the source record.
func (q Query) Edition() int { return q.edition }

// Filename returns the source filename the query was read from.
func (q Query) Filename() string { return q.filename }

// Diagnostic returns the schema-v2 audit-only fields.
func (q Query) Diagnostic() Diagnostic { return q.diagnostic }
