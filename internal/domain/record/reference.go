package record

// Reference is one corpus record: its dense embedding, its raw fields
// retained for diagnostics and report emission, its per-field sparse
// vectors for secondary similarity scoring, and an opaque metadata blob
// carried verbatim through to the report writer. Index is the record's
// dense array position (0 <= Index < N); ExternalID is the opaque
// catalogue identifier exclusion files and report rows address the record
// by — the two are never assumed to coincide.
type Reference struct {
	index      uint32
	externalID string
	title      string
	author     string
	place      string
	year       *int
	embedding  Embedding
	fields     Fields
	meta       []byte
}

// NewReference creates a Reference. year is nil when the source record has
// no publication year.
func NewReference(
	index uint32, externalID, title, author, place string, year *int,
	embedding Embedding, fields Fields, meta []byte,
) Reference {
	return Reference{
		index: index, externalID: externalID, title: title, author: author, place: place, year: year,
		embedding: embedding, fields: fields, meta: meta,
	}
}

// Index returns the reference's dense array position r, 0 <= r < N.
func (r Reference) Index() uint32 { return r.index }

// ExternalID returns the opaque catalogue identifier.
func (r Reference) ExternalID() string { return r.externalID }

// Title returns the raw (non-canonicalised) title.
func (r Reference) Title() string { return r.title }

// Author returns the raw author string.
func (r Reference) Author() string { return r.author }

// Place returns the raw place of publication.
func (r Reference) Place() string { return r.place }

// Year returns the publication year, or nil if absent.
func (r Reference) Year() *int { return r.year }

// Embedding returns the dense record embedding.
func (r Reference) Embedding() Embedding { return r.embedding }

// Fields returns the sparse per-field vectors, if precomputed.
func (r Reference) Fields() Fields { return r.fields }

// Meta returns the opaque metadata blob, retained verbatim for report
// emission.
func (r Reference) Meta() []byte { return r.meta }
