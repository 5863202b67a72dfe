// Package archive reads a batch run's input: one JSON file per bibliographic
// card, each expanding to one record.Query per edition, plus an optional
// prompt text file. It is a reference implementation of a pluggable
// interface — the matching engine core never depends on it directly.
package archive

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/record"
)

// Batch is everything an archive yields for one run: the expanded queries in
// a stable, deterministic order, and the optional prompt text carried
// through to the run summary.
type Batch struct {
	Queries    []record.Query
	PromptUsed string
}

// Reader loads a batch's queries from wherever they're stored: a ZIP file or
// a flat directory of the same files.
type Reader interface {
	Read(path string, schemaVersion int) (Batch, error)
}

// invalidJSONEdition and noEditionsEdition mirror the source format's
// sentinel edition indices for records that failed to parse or declared no
// editions at all.
const (
	noEditionsEdition    = 9999999
	invalidJSONEdition   = 9999998
	promptFileSuffix     = ".prompt"
	jsonFileSuffix       = ".json"
	macosxResourcePrefix = "__MACOSX"
	dsStorePrefix        = ".DS_Store"
)

// skipEntry reports whether a zip/directory entry is one of the junk
// entries a macOS-authored ZIP tends to carry (__MACOSX, .DS_Store). Entries
// that are neither JSON cards nor prompt files are filtered separately by
// decodeEntries.
func skipEntry(name string) bool {
	if strings.HasPrefix(name, macosxResourcePrefix) || strings.HasPrefix(name, dsStorePrefix) {
		return true
	}
	base := basename(name)
	return strings.HasPrefix(base, macosxResourcePrefix) || strings.HasPrefix(base, dsStorePrefix)
}

func basename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// decodeEntries turns a name->content map (already filtered to files) into a
// Batch. Entries are processed in lexical filename order so the resulting
// query order is deterministic across runs and across archive backends.
func decodeEntries(entries map[string]string, schemaVersion int) (Batch, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var batch Batch
	for _, name := range names {
		content := entries[name]
		if skipEntry(name) {
			continue
		}
		if strings.HasSuffix(name, promptFileSuffix) {
			batch.PromptUsed = content
			continue
		}
		if !strings.HasSuffix(name, jsonFileSuffix) {
			continue
		}

		filename := basename(name)
		var queries []record.Query
		var err error
		if schemaVersion == 2 {
			queries, err = decodeCardV2(filename, content)
		} else {
			queries, err = decodeCardV1(filename, content)
		}
		if err != nil {
			return Batch{}, fmt.Errorf("decode %s: %w", filename, err)
		}
		batch.Queries = append(batch.Queries, queries...)
	}
	return batch, nil
}

// readDirectory mirrors the ZIP path for a directory of loose files, per
// original_source/src/zipfile.rs's own directory/ZIP duality: a batch run's
// input doesn't have to be compressed to be valid.
func readDirectory(path string, schemaVersion int) (Batch, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: read directory %s: %v", domain.ErrQueryMalformed, path, err)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(path + "/" + e.Name())
		if err != nil {
			return Batch{}, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		files[e.Name()] = string(data)
	}
	return decodeEntries(files, schemaVersion)
}
