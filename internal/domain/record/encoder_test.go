package record

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/vocab"
)

func testVocab(t *testing.T, tokens []string) *vocab.Vocabulary {
	t.Helper()

	var body []byte
	for id, tok := range tokens {
		buf := make([]byte, 4+2+len(tok)+4)
		binary.LittleEndian.PutUint32(buf[0:], uint32(id))
		binary.LittleEndian.PutUint16(buf[4:], uint16(len(tok)))
		copy(buf[6:], tok)
		binary.LittleEndian.PutUint32(buf[6+len(tok):], math.Float32bits(1.0))
		body = append(body, buf...)
	}

	header := make([]byte, 18)
	copy(header[:4], "LMVC")
	binary.LittleEndian.PutUint16(header[4:6], 1)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(tokens)))
	binary.LittleEndian.PutUint64(header[10:18], xxhash.Sum64(body))

	v, err := vocab.Parse(append(header, body...))
	if err != nil {
		t.Fatalf("build test vocab: %v", err)
	}
	return v
}

func TestEncoder_Encode_UnitNorm(t *testing.T) {
	v := testVocab(t, []string{"moby", "dick", "herman", "melville", "y1851"})
	enc := NewEncoder(v, domain.DefaultFieldWeights(), false)

	year := 1851
	fields, emb := enc.Encode("Moby Dick", "Herman Melville", "", &year)

	if len(fields) == 0 {
		t.Fatal("expected non-empty fields")
	}

	var sumSq float64
	for _, x := range emb.Vector {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm < 0.99999 || norm > 1.00001 {
		t.Errorf("‖embedding‖ = %v, want ~1", norm)
	}
}

func TestEncoder_Encode_AllOOV_ProducesZeroEmbedding(t *testing.T) {
	v := testVocab(t, []string{"moby"})
	enc := NewEncoder(v, domain.DefaultFieldWeights(), false)

	fields, emb := enc.Encode("Narwhal Expedition", "Unknown Author", "Nowhere", nil)
	_ = fields
	if !emb.IsZero() {
		t.Error("expected zero embedding for all out-of-vocabulary query")
	}
}

func TestEncoder_Encode_AddAuthorToTitle(t *testing.T) {
	v := testVocab(t, []string{"moby", "herman"})
	weights := domain.DefaultFieldWeights()
	weights[domain.FieldAuthorInTitle] = 1.0
	enc := NewEncoder(v, weights, true)

	fields, _ := enc.Encode("Moby", "Herman", "", nil)
	combined, ok := fields[domain.FieldAuthorInTitle]
	if !ok {
		t.Fatal("expected author_in_title field to be present")
	}
	if combined.Len() != 2 {
		t.Errorf("author_in_title Len() = %d, want 2", combined.Len())
	}
}

func TestEncoder_Encode_DisabledFieldAbsent(t *testing.T) {
	v := testVocab(t, []string{"moby", "herman"})
	enc := NewEncoder(v, domain.DefaultFieldWeights(), false) // author_in_title weight is 0 by default

	fields, _ := enc.Encode("Moby", "Herman", "", nil)
	if fv, ok := fields[domain.FieldAuthorInTitle]; ok && fv.Len() != 0 {
		t.Error("expected author_in_title to be absent or empty when not configured")
	}
}
