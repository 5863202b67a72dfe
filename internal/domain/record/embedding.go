package record

import (
	"math"

	"github.com/libris-match/engine/internal/domain/field"
)

// Embedding is a dense vector of fixed dimension D, either unit-norm or the
// all-zero sentinel for a record whose fields contained only
// out-of-vocabulary tokens.
type Embedding struct {
	Vector []float32
}

// IsZero reports whether the embedding is the all-zero sentinel. A
// zero-norm embedding can never match anything: its dot product with every
// other vector, zero or not, is zero.
func (e Embedding) IsZero() bool {
	for _, x := range e.Vector {
		if x != 0 {
			return false
		}
	}
	return true
}

// Fields is the sparse per-field vector set one record carries alongside
// its dense embedding, keyed by field name, used for diagnostic per-field
// similarity breakdowns.
type Fields map[string]field.Vector

// Embedder combines per-field sparse vectors into the single dense
// L2-normalised embedding every record is scored against. D equals the
// vocabulary size, so every field vector projects onto the same axis
// without a separate dimensionality-reduction step.
type Embedder struct {
	dim int
}

// NewEmbedder creates an Embedder producing vectors of dimension dim.
func NewEmbedder(dim int) Embedder {
	return Embedder{dim: dim}
}

// Embed sums every field vector's weighted entries onto the dense axis and
// L2-normalises the result.
func (e Embedder) Embed(fields Fields) Embedding {
	dense := make([]float32, e.dim)
	for _, fv := range fields {
		for _, entry := range fv.Entries() {
			dense[entry.ID] += entry.Weight
		}
	}
	return normalize(dense)
}

func normalize(v []float32) Embedding {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return Embedding{Vector: v}
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return Embedding{Vector: v}
}
