package corpus

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/record"
)

const (
	magicSource     = "LMSD"
	sourceHeaderLen = 4 + 2 + 4 // magic + version + N
)

// loadSourceData decodes `<source>-source-data.bin`: a header {N} followed
// by N variable-length {length, bytes} records whose payload is an opaque
// catalogue id plus title/author/place/year and an opaque metadata blob,
// in this package's own fixed internal layout (the spec leaves the payload
// layout to the implementer; only the outer {length, bytes} framing is
// fixed).
func loadSourceData(path string, n uint32, vectors []float32, d int) ([]record.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source data file %s: %w", path, err)
	}
	if len(data) < sourceHeaderLen {
		return nil, fmt.Errorf("%w: truncated source data header", domain.ErrCorpusInvalid)
	}
	if string(data[:4]) != magicSource {
		return nil, fmt.Errorf("%w: bad source data magic", domain.ErrCorpusInvalid)
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported source data format version %d", domain.ErrCorpusInvalid, version)
	}
	declaredN := binary.LittleEndian.Uint32(data[6:10])
	if declaredN != n {
		return nil, fmt.Errorf("%w: source data N=%d does not match vectors N=%d", domain.ErrCorpusInvalid, declaredN, n)
	}

	refs := make([]record.Reference, n)
	off := sourceHeaderLen
	for r := uint32(0); r < n; r++ {
		if off+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated record %d length", domain.ErrCorpusInvalid, r)
		}
		length := binary.LittleEndian.Uint32(data[off:])
		off += 4
		if off+int(length) > len(data) {
			return nil, fmt.Errorf("%w: truncated record %d payload", domain.ErrCorpusInvalid, r)
		}
		payload := data[off : off+int(length)]
		off += int(length)

		externalID, title, author, place, year, meta, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrCorpusInvalid, r, err)
		}

		ri := int(r)
		emb := record.Embedding{Vector: vectors[ri*d : ri*d+d]}
		refs[r] = record.NewReference(r, externalID, title, author, place, year, emb, nil, meta)
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d records", domain.ErrCorpusInvalid, len(data)-off, n)
	}

	return refs, nil
}

// decodePayload decodes one source-data record body:
// idLen u16, id; titleLen u16, title; authorLen u16, author;
// placeLen u16, place; hasYear u8, [year int32]; metaLen u32, meta.
func decodePayload(p []byte) (externalID, title, author, place string, year *int, meta []byte, err error) {
	off := 0
	externalID, off, err = readString16(p, off)
	if err != nil {
		return
	}
	title, off, err = readString16(p, off)
	if err != nil {
		return
	}
	author, off, err = readString16(p, off)
	if err != nil {
		return
	}
	place, off, err = readString16(p, off)
	if err != nil {
		return
	}
	if off+1 > len(p) {
		err = fmt.Errorf("truncated year flag")
		return
	}
	hasYear := p[off]
	off++
	if hasYear != 0 {
		if off+4 > len(p) {
			err = fmt.Errorf("truncated year value")
			return
		}
		y := int(int32(binary.LittleEndian.Uint32(p[off:])))
		year = &y
		off += 4
	}
	if off+4 > len(p) {
		err = fmt.Errorf("truncated meta length")
		return
	}
	metaLen := binary.LittleEndian.Uint32(p[off:])
	off += 4
	if off+int(metaLen) > len(p) {
		err = fmt.Errorf("truncated meta")
		return
	}
	meta = p[off : off+int(metaLen)]
	off += int(metaLen)
	if off != len(p) {
		err = fmt.Errorf("%d trailing bytes in payload", len(p)-off)
		return
	}
	return externalID, title, author, place, year, meta, nil
}

func readString16(p []byte, off int) (string, int, error) {
	if off+2 > len(p) {
		return "", off, fmt.Errorf("truncated string length")
	}
	l := int(binary.LittleEndian.Uint16(p[off:]))
	off += 2
	if off+l > len(p) {
		return "", off, fmt.Errorf("truncated string body")
	}
	s := string(p[off : off+l])
	return s, off + l, nil
}
