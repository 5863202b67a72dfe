package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Field names recognised by the tokenizer/field encoder.
const (
	FieldTitle              = "title"
	FieldAuthor             = "author"
	FieldPlaceOfPublication = "placeOfPublication"
	FieldYearOfPublication  = "yearOfPublication"
	FieldAuthorInTitle      = "author_in_title"
)

// FieldWeights is a field name -> non-negative weight table. A zero weight
// disables a field.
type FieldWeights map[string]float32

// DefaultFieldWeights returns the pinned default weight profile for the
// libris-v1_5 vocabulary: title weighted above author, place and year at
// parity, and the author_in_title virtual field off unless explicitly
// configured with add-author-to-title and a non-zero weight.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		FieldTitle:              1.5,
		FieldAuthor:             0.75,
		FieldPlaceOfPublication: 1.0,
		FieldYearOfPublication:  1.0,
		FieldAuthorInTitle:      0.0,
	}
}

// LoadFieldWeights reads a JSON field->weight override file. Missing fields
// fall back to the default profile; unknown fields are rejected as
// ErrWeightsInvalid so a typo in a weights file fails loudly at startup.
func LoadFieldWeights(path string) (FieldWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file %s: %w", path, err)
	}

	var override map[string]float32
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrWeightsInvalid, path, err)
	}

	weights := DefaultFieldWeights()
	for field, weight := range override {
		if _, known := weights[field]; !known {
			return nil, fmt.Errorf("%w: unknown field %q in %s", ErrWeightsInvalid, field, path)
		}
		if weight < 0 {
			return nil, fmt.Errorf("%w: negative weight for field %q in %s", ErrWeightsInvalid, field, path)
		}
		weights[field] = weight
	}
	return weights, nil
}
