// Package match wires the vocabulary, corpus, scorer, and classifier into a
// runnable batch engine: the component spec.md and SPEC_FULL.md call the
// batch driver.
package match

import (
	"fmt"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/corpus"
	"github.com/libris-match/engine/internal/domain/record"
	"github.com/libris-match/engine/internal/domain/score"
	"github.com/libris-match/engine/internal/domain/usage/budget"
	"github.com/libris-match/engine/internal/domain/vocab"
	"github.com/libris-match/engine/internal/repository/exclusion"
)

// Deps are the Engine's optional external collaborators. Cache and
// Disambiguator may be nil, in which case the driver skips caching and
// disambiguation. A nil Exclusions is replaced by an in-memory set in New,
// so unique matches are still claimed across the queries of one process.
type Deps struct {
	Cache         *badger.DB
	Exclusions    exclusion.Set
	Disambiguator domain.Disambiguator
	Logger        *zap.Logger
	PoolSize      int // 0 means runtime.GOMAXPROCS(0)
}

// Engine owns one immutable corpus and vocabulary and drives batches of
// queries against them across a bounded worker pool.
type Engine struct {
	corpus  *corpus.Store
	scorer  score.Scorer
	encoder record.Encoder
	opts    domain.EngineOptions

	pool *ants.Pool
	deps Deps
}

// New builds an Engine from a loaded corpus and vocabulary. The encoder is
// built once here and shared read-only across every worker goroutine.
func New(c *corpus.Store, v *vocab.Vocabulary, weights domain.FieldWeights, opts domain.EngineOptions, deps Deps) (*Engine, error) {
	poolSize := deps.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	if deps.Exclusions == nil {
		deps.Exclusions = exclusion.NewMemory()
	}

	enc := record.NewEncoder(v, weights, opts.AddAuthorToTitle)
	return &Engine{
		corpus:  c,
		scorer:  score.NewScorer(c, enc),
		encoder: enc,
		opts:    opts,
		pool:    pool,
		deps:    deps,
	}, nil
}

// Close releases the worker pool and the exclusion-set connection. The
// corpus and result cache outlive the Engine and are closed by their owner.
func (e *Engine) Close() error {
	e.pool.Release()
	if e.deps.Exclusions != nil {
		return e.deps.Exclusions.Close()
	}
	return nil
}

func (e *Engine) refByIndex(idx uint32) record.Reference {
	return e.corpus.Reference(int(idx))
}

// budgetFor returns a token budget for one batch run. A zero TokenBudget
// means unlimited.
func budgetFor(opts domain.EngineOptions) *budget.Budget {
	return budget.New(opts.Disambiguation.TokenBudget)
}
