package domain

import "errors"

var (
	// ErrCorpusInvalid signals a malformed or inconsistent corpus file set. Fatal at load.
	ErrCorpusInvalid = errors.New("corpus invalid")
	// ErrVocabInvalid signals a malformed vocabulary file. Fatal at load.
	ErrVocabInvalid = errors.New("vocab invalid")
	// ErrWeightsInvalid signals a malformed field-weights file. Fatal at startup.
	ErrWeightsInvalid = errors.New("weights invalid")
	// ErrQueryMalformed signals a query record missing a required field. Per-record, not fatal.
	ErrQueryMalformed = errors.New("query malformed")
	// ErrExclusionFileInvalid signals a malformed exclusion-id file. Fatal at startup.
	ErrExclusionFileInvalid = errors.New("exclusion file invalid")
	// ErrEmptyEmbedding signals a query embedding with zero norm (all tokens out-of-vocabulary).
	ErrEmptyEmbedding = errors.New("empty embedding")
)
