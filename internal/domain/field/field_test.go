package field

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/libris-match/engine/internal/domain/vocab"
)

func testVocab(t *testing.T, tokens map[string]float32) *vocab.Vocabulary {
	t.Helper()

	type rec struct {
		id    uint32
		token string
		idf   float32
	}
	var recs []rec
	var id uint32
	for tok, idf := range tokens {
		recs = append(recs, rec{id: id, token: tok, idf: idf})
		id++
	}

	var body []byte
	for _, r := range recs {
		buf := make([]byte, 4+2+len(r.token)+4)
		binary.LittleEndian.PutUint32(buf[0:], r.id)
		binary.LittleEndian.PutUint16(buf[4:], uint16(len(r.token)))
		copy(buf[6:], r.token)
		binary.LittleEndian.PutUint32(buf[6+len(r.token):], math.Float32bits(r.idf))
		body = append(body, buf...)
	}

	header := make([]byte, 18)
	copy(header[:4], "LMVC")
	binary.LittleEndian.PutUint16(header[4:6], 1)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(recs)))
	binary.LittleEndian.PutUint64(header[10:18], xxhash.Sum64(body))

	v, err := vocab.Parse(append(header, body...))
	if err != nil {
		t.Fatalf("build test vocab: %v", err)
	}
	return v
}

func TestEncode_Basic(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0, "dick": 1.5})

	fv := Encode([]string{"moby", "dick"}, v, 1.0)
	if fv.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fv.Len())
	}
}

func TestEncode_ZeroWeightDisablesField(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0})
	fv := Encode([]string{"moby"}, v, 0)
	if fv.Len() != 0 {
		t.Errorf("Len() = %d, want 0", fv.Len())
	}
}

func TestEncode_OutOfVocabularyDropped(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0})
	fv := Encode([]string{"moby", "narwhal"}, v, 1.0)
	if fv.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", fv.Len())
	}
}

func TestEncode_DuplicateTokenCollapses(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0})
	fv := Encode([]string{"moby", "moby", "moby"}, v, 1.0)
	if fv.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", fv.Len())
	}
}

func TestEncode_WeightAppliesIDF(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0})
	fv := Encode([]string{"moby"}, v, 1.5)
	entries := fv.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	want := float32(2.0 * 1.5)
	if entries[0].Weight != want {
		t.Errorf("Weight = %v, want %v", entries[0].Weight, want)
	}
}

func TestYearToken(t *testing.T) {
	if got := YearToken(1851); got != "y1851" {
		t.Errorf("YearToken(1851) = %q, want y1851", got)
	}
}

func TestCosine_IdenticalVectors(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0, "dick": 1.5})
	a := Encode([]string{"moby", "dick"}, v, 1.0)
	b := Encode([]string{"moby", "dick"}, v, 1.0)
	got := Cosine(a, b)
	if got < 0.999 || got > 1.001 {
		t.Errorf("Cosine() = %v, want ~1", got)
	}
}

func TestCosine_Disjoint(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0, "ahab": 1.0})
	a := Encode([]string{"moby"}, v, 1.0)
	b := Encode([]string{"ahab"}, v, 1.0)
	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine() = %v, want 0", got)
	}
}

func TestCosine_EmptyVector(t *testing.T) {
	v := testVocab(t, map[string]float32{"moby": 2.0})
	a := Encode([]string{"moby"}, v, 1.0)
	var b Vector
	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine() = %v, want 0", got)
	}
}
