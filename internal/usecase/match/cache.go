package match

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	badgeropts "github.com/dgraph-io/badger/v4/options"
)

// OpenCache opens (or creates) the badger result cache at path, for the
// composition root to pass into Deps.Cache. Compression is disabled:
// outcome rows are small and already deduplicated by the fingerprint key,
// so the CPU cost of compressing them buys little.
func OpenCache(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.Compression = badgeropts.None
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open result cache %s: %w", path, err)
	}
	return db, nil
}

func cacheKey(fp uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, fp)
	return key
}

// lookupCache returns a previously cached outcome for fingerprint fp, if
// any. A miss (ErrKeyNotFound) is not an error: it just means the caller
// should run the pipeline.
func lookupCache(db *badger.DB, fp uint64) (PipelineResult, bool, error) {
	var out PipelineResult
	found := false
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(fp))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &out); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return PipelineResult{}, false, fmt.Errorf("read result cache: %w", err)
	}
	return out, found, nil
}

// storeCache memoizes out under fingerprint fp.
func storeCache(db *badger.DB, fp uint64, out PipelineResult) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode cached outcome: %w", err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(fp), data)
	})
	if err != nil {
		return fmt.Errorf("write result cache: %w", err)
	}
	return nil
}
