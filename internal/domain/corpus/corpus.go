// Package corpus loads and owns the memory-mapped reference corpus: one
// dense embedding row, one raw-fields record, and one opaque metadata blob
// per reference, all immutable for the lifetime of the engine handle.
package corpus

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/record"
)

const (
	magicVectors      = "LMDV"
	formatVersion     = uint16(1)
	vectorsHeaderLen  = 4 + 2 + 4 + 4 + 1 // magic + version + N + D + dtype
	dtypeFloat32      = 0
)

// Store holds the three parallel corpus arrays described in the spec: EMB
// (memory-mapped dense rows), FIELDS and META (decoded fully into memory
// at load, since every scored candidate touches them and they are far
// smaller than EMB).
type Store struct {
	n, d    int
	vecFile *os.File
	vecMmap mmap.MMap
	vectors []float32 // aliases vecMmap[vectorsHeaderLen:], row-major N*D
	refs    []record.Reference
}

// Load reads `<source>-dataset-vectors.bin` and `<source>-source-data.bin`
// from dir. vocabSize must equal the loaded vocabulary's size; it is
// checked against the vectors file's declared D.
func Load(dir, source string, vocabSize int) (*Store, error) {
	vecPath := filepath.Join(dir, source+"-dataset-vectors.bin")
	srcPath := filepath.Join(dir, source+"-source-data.bin")

	vecFile, n, d, err := openVectors(vecPath, vocabSize)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Map(vecFile, mmap.RDONLY, 0)
	if err != nil {
		vecFile.Close()
		return nil, fmt.Errorf("mmap %s: %w", vecPath, err)
	}

	wantLen := vectorsHeaderLen + n*d*4
	if len(m) != wantLen {
		m.Unmap()
		vecFile.Close()
		return nil, fmt.Errorf("%w: vectors file length %d, want %d", domain.ErrCorpusInvalid, len(m), wantLen)
	}

	// The vectors body is a flat row-major float32 array. Reinterpreting the
	// mapped bytes avoids decoding N*D floats one at a time in the hot
	// scoring loop; files are produced little-endian by the same ingestion
	// job that runs the engine, so host and file byte order always agree.
	vectors := unsafe.Slice((*float32)(unsafe.Pointer(&m[vectorsHeaderLen])), n*d)

	if err := verifyRowNorms(vectors, n, d); err != nil {
		m.Unmap()
		vecFile.Close()
		return nil, err
	}

	refs, err := loadSourceData(srcPath, uint32(n), vectors, d)
	if err != nil {
		m.Unmap()
		vecFile.Close()
		return nil, err
	}

	return &Store{
		n: n, d: d,
		vecFile: vecFile, vecMmap: m, vectors: vectors,
		refs: refs,
	}, nil
}

func openVectors(path string, vocabSize int) (f *os.File, n, d int, err error) {
	vf, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open %s: %w", path, err)
	}

	header := make([]byte, vectorsHeaderLen)
	if _, err := vf.ReadAt(header, 0); err != nil {
		vf.Close()
		return nil, 0, 0, fmt.Errorf("%w: read vectors header: %v", domain.ErrCorpusInvalid, err)
	}
	if string(header[:4]) != magicVectors {
		vf.Close()
		return nil, 0, 0, fmt.Errorf("%w: bad vectors magic", domain.ErrCorpusInvalid)
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	if version != formatVersion {
		vf.Close()
		return nil, 0, 0, fmt.Errorf("%w: unsupported vectors format version %d", domain.ErrCorpusInvalid, version)
	}
	nn := binary.LittleEndian.Uint32(header[6:10])
	dd := binary.LittleEndian.Uint32(header[10:14])
	dtype := header[14]
	if dtype != dtypeFloat32 {
		vf.Close()
		return nil, 0, 0, fmt.Errorf("%w: unsupported dtype %d", domain.ErrCorpusInvalid, dtype)
	}
	if int(dd) != vocabSize {
		vf.Close()
		return nil, 0, 0, fmt.Errorf("%w: D=%d does not match vocabulary size %d", domain.ErrCorpusInvalid, dd, vocabSize)
	}
	return vf, int(nn), int(dd), nil
}

// verifyRowNorms enforces the load-time invariant that every row is
// unit-norm or exactly zero (±1e-5), per law 1.
func verifyRowNorms(vectors []float32, n, d int) error {
	const eps = 1e-5
	for r := 0; r < n; r++ {
		row := vectors[r*d : r*d+d]
		var sumSq float64
		for _, x := range row {
			sumSq += float64(x) * float64(x)
		}
		if sumSq == 0 {
			continue
		}
		norm := math.Sqrt(sumSq)
		if norm < 1-eps || norm > 1+eps {
			return fmt.Errorf("%w: row %d has norm %v, want 0 or 1±%v", domain.ErrCorpusInvalid, r, norm, eps)
		}
	}
	return nil
}

// N returns the number of reference records.
func (s *Store) N() int { return s.n }

// D returns the dense embedding dimension (equal to the vocabulary size).
func (s *Store) D() int { return s.d }

// EmbeddingRow returns reference r's dense embedding row. The returned
// slice aliases the memory-mapped file; callers must not retain it past
// the Store's lifetime.
func (s *Store) EmbeddingRow(r int) []float32 {
	return s.vectors[r*s.d : r*s.d+s.d]
}

// Reference returns reference r's raw fields and metadata.
func (s *Store) Reference(r int) record.Reference {
	return s.refs[r]
}

// Close unmaps the vectors file and releases its file handle.
func (s *Store) Close() error {
	if err := s.vecMmap.Unmap(); err != nil {
		return fmt.Errorf("unmap vectors file: %w", err)
	}
	return s.vecFile.Close()
}
