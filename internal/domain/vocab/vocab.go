// Package vocab holds the frozen token->id map and its per-token IDF
// weights, as loaded from a vocabulary file built by the offline ingestion
// job.
package vocab

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/adamzy/cedar-go"
	"github.com/cespare/xxhash/v2"

	"github.com/libris-match/engine/internal/domain"
)

const (
	magic         = "LMVC"
	formatVersion = uint16(1)
	headerLen     = 4 + 2 + 4 + 8 // magic + version + V + hash
)

// Vocabulary is a frozen token->id map with a parallel id->IDF array,
// backed by a cedar-go double-array trie so lookup cost is proportional to
// token length rather than a hash table's load factor. Ids are dense in
// [0, Size()).
type Vocabulary struct {
	trie *cedar.Cedar
	idf  []float32
	hash uint64
}

// Load reads a vocabulary file from disk.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab file %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse vocab file %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes a vocabulary file already read into memory.
func Parse(data []byte) (*Vocabulary, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: truncated header", domain.ErrVocabInvalid)
	}
	if string(data[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", domain.ErrVocabInvalid)
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", domain.ErrVocabInvalid, version)
	}

	v := binary.LittleEndian.Uint32(data[6:10])
	wantHash := binary.LittleEndian.Uint64(data[10:18])

	body := data[headerLen:]
	if gotHash := xxhash.Sum64(body); gotHash != wantHash {
		return nil, fmt.Errorf("%w: hash mismatch (want %x, got %x)", domain.ErrVocabInvalid, wantHash, gotHash)
	}

	trie := cedar.New()
	idf := make([]float32, v)

	off := 0
	for i := uint32(0); i < v; i++ {
		if off+4+2 > len(body) {
			return nil, fmt.Errorf("%w: truncated record %d", domain.ErrVocabInvalid, i)
		}
		id := binary.LittleEndian.Uint32(body[off:])
		off += 4
		tokenLen := int(binary.LittleEndian.Uint16(body[off:]))
		off += 2

		if off+tokenLen+4 > len(body) {
			return nil, fmt.Errorf("%w: truncated record %d", domain.ErrVocabInvalid, i)
		}
		token := string(body[off : off+tokenLen])
		off += tokenLen
		idfBits := binary.LittleEndian.Uint32(body[off:])
		off += 4

		if id >= v {
			return nil, fmt.Errorf("%w: id %d out of range for V=%d", domain.ErrVocabInvalid, id, v)
		}
		if token == "" {
			return nil, fmt.Errorf("%w: empty token for id %d", domain.ErrVocabInvalid, id)
		}
		if err := trie.Insert([]byte(token), int(id)); err != nil {
			return nil, fmt.Errorf("%w: insert token %q: %v", domain.ErrVocabInvalid, token, err)
		}
		idf[id] = math.Float32frombits(idfBits)
	}
	if off != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d records", domain.ErrVocabInvalid, len(body)-off, v)
	}

	return &Vocabulary{trie: trie, idf: idf, hash: wantHash}, nil
}

// Lookup returns the dense id for token, or ok=false if the token was never
// seen by the vocabulary. Out-of-vocabulary tokens are the caller's
// responsibility to drop; the vocabulary itself never invents an id.
func (v *Vocabulary) Lookup(token string) (id uint32, ok bool) {
	n, err := v.trie.Get([]byte(token))
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// IDF returns the inverse-document-frequency weight for a known id. Callers
// must only pass ids returned by Lookup.
func (v *Vocabulary) IDF(id uint32) float32 {
	return v.idf[id]
}

// Size returns V, the number of distinct tokens (and the dense embedding
// dimension D).
func (v *Vocabulary) Size() int {
	return len(v.idf)
}

// Hash returns the vocabulary's content digest, as verified at load.
func (v *Vocabulary) Hash() uint64 {
	return v.hash
}
