package vocab

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/libris-match/engine/internal/domain"
)

type fixtureToken struct {
	id    uint32
	token string
	idf   float32
}

func encodeFixture(t *testing.T, tokens []fixtureToken) []byte {
	t.Helper()

	var body []byte
	for _, tk := range tokens {
		rec := make([]byte, 4+2+len(tk.token)+4)
		binary.LittleEndian.PutUint32(rec[0:], tk.id)
		binary.LittleEndian.PutUint16(rec[4:], uint16(len(tk.token)))
		copy(rec[6:], tk.token)
		binary.LittleEndian.PutUint32(rec[6+len(tk.token):], math.Float32bits(tk.idf))
		body = append(body, rec...)
	}

	header := make([]byte, headerLen)
	copy(header[:4], magic)
	binary.LittleEndian.PutUint16(header[4:6], formatVersion)
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(tokens)))
	binary.LittleEndian.PutUint64(header[10:18], xxhash.Sum64(body))

	return append(header, body...)
}

func TestParse_RoundTrip(t *testing.T) {
	fixture := []fixtureToken{
		{id: 0, token: "moby", idf: 2.1},
		{id: 1, token: "dick", idf: 1.5},
		{id: 2, token: "y1851", idf: 4.0},
	}
	data := encodeFixture(t, fixture)

	v, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Size() != 3 {
		t.Errorf("Size() = %d, want 3", v.Size())
	}
	for _, tk := range fixture {
		id, ok := v.Lookup(tk.token)
		if !ok {
			t.Fatalf("Lookup(%q) not found", tk.token)
		}
		if id != tk.id {
			t.Errorf("Lookup(%q) = %d, want %d", tk.token, id, tk.id)
		}
		if v.IDF(id) != tk.idf {
			t.Errorf("IDF(%d) = %v, want %v", id, v.IDF(id), tk.idf)
		}
	}
}

func TestLookup_OutOfVocabulary(t *testing.T) {
	data := encodeFixture(t, []fixtureToken{{id: 0, token: "whale", idf: 1.0}})
	v, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := v.Lookup("narwhal"); ok {
		t.Error("Lookup(\"narwhal\") should miss")
	}
}

func TestParse_BadMagic(t *testing.T) {
	data := encodeFixture(t, []fixtureToken{{id: 0, token: "x", idf: 1}})
	data[0] = 'Z'
	_, err := Parse(data)
	if !errors.Is(err, domain.ErrVocabInvalid) {
		t.Errorf("expected ErrVocabInvalid, got %v", err)
	}
}

func TestParse_HashMismatch(t *testing.T) {
	data := encodeFixture(t, []fixtureToken{{id: 0, token: "x", idf: 1}})
	data[len(data)-1] ^= 0xFF // corrupt last byte of the idf payload
	_, err := Parse(data)
	if !errors.Is(err, domain.ErrVocabInvalid) {
		t.Errorf("expected ErrVocabInvalid, got %v", err)
	}
}

func TestParse_TruncatedHeader(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	if !errors.Is(err, domain.ErrVocabInvalid) {
		t.Errorf("expected ErrVocabInvalid, got %v", err)
	}
}
