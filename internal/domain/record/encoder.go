package record

import (
	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/canon"
	"github.com/libris-match/engine/internal/domain/field"
	"github.com/libris-match/engine/internal/domain/vocab"
)

// Encoder turns raw title/author/place/year strings into the sparse Fields
// set and the combined dense Embedding a Reference or Query is scored
// with. One Encoder is built per batch run from the active vocabulary and
// field-weight profile, then shared read-only across worker goroutines.
type Encoder struct {
	vocab            *vocab.Vocabulary
	weights          domain.FieldWeights
	embedder         Embedder
	addAuthorToTitle bool
}

// NewEncoder creates an Encoder. addAuthorToTitle mirrors the
// add-author-to-title option: when set, author tokens are prepended to the
// title stream before encoding the virtual author_in_title field.
func NewEncoder(v *vocab.Vocabulary, weights domain.FieldWeights, addAuthorToTitle bool) Encoder {
	return Encoder{
		vocab:            v,
		weights:          weights,
		embedder:         NewEmbedder(v.Size()),
		addAuthorToTitle: addAuthorToTitle,
	}
}

// Encode canonicalises and tokenizes title/author/place/year, builds the
// per-field sparse vectors, and combines them into a dense embedding. year
// is nil when the record has no publication year.
func (e Encoder) Encode(title, author, place string, year *int) (Fields, Embedding) {
	titleTokens := canon.Tokenize(canon.String(title))
	authorTokens := canon.Tokenize(canon.String(author))
	placeTokens := canon.Tokenize(canon.String(place))

	fields := Fields{
		domain.FieldTitle:              field.Encode(titleTokens, e.vocab, e.weights[domain.FieldTitle]),
		domain.FieldAuthor:             field.Encode(authorTokens, e.vocab, e.weights[domain.FieldAuthor]),
		domain.FieldPlaceOfPublication: field.Encode(placeTokens, e.vocab, e.weights[domain.FieldPlaceOfPublication]),
	}
	if year != nil {
		yearTokens := []string{field.YearToken(*year)}
		fields[domain.FieldYearOfPublication] = field.Encode(yearTokens, e.vocab, e.weights[domain.FieldYearOfPublication])
	}
	if e.addAuthorToTitle {
		combined := make([]string, 0, len(authorTokens)+len(titleTokens))
		combined = append(combined, authorTokens...)
		combined = append(combined, titleTokens...)
		fields[domain.FieldAuthorInTitle] = field.Encode(combined, e.vocab, e.weights[domain.FieldAuthorInTitle])
	}

	return fields, e.embedder.Embed(fields)
}
