package match

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/batch"
	"github.com/libris-match/engine/internal/domain/classify"
	"github.com/libris-match/engine/internal/domain/record"
	"github.com/libris-match/engine/internal/domain/usage/budget"
	"github.com/libris-match/engine/internal/metrics"
	"github.com/libris-match/engine/internal/repository/exclusion"
)

// Summary is the post-run tally the CLI prints after a batch completes.
// PromptUsed is not set by RunBatch itself — the archive reader surfaces it
// separately, and the CLI composition root carries it across into this
// struct before the run summary is written out.
type Summary struct {
	OK         int
	Errors     int
	PromptUsed string
	Results    []batch.Result
	Budget  *budget.Budget
}

// RunBatch scores every query against the engine's corpus, one goroutine per
// query submitted to the bounded worker pool, and returns outcomes restored
// to input order via the sequence-reordering buffer. A malformed or
// otherwise failing query never aborts the run: it contributes a
// StatusError batch.Result and an absent Outcome instead.
func (e *Engine) RunBatch(ctx context.Context, queries []record.Query) ([]Outcome, Summary) {
	n := len(queries)
	outcomes := make([]Outcome, 0, n)
	results := make([]batch.Result, 0, n)
	tokenBudget := budgetFor(e.opts)

	var mu sync.Mutex
	seq := newSequencer(func(it item) {
		mu.Lock()
		defer mu.Unlock()
		id := strconv.Itoa(it.seq)
		if it.failed {
			results = append(results, batch.NewError(id, it.err))
			return
		}
		outcomes = append(outcomes, it.outcome)
		results = append(results, batch.NewOK(id))
	})

	var wg sync.WaitGroup
	wg.Add(n)
	for i, q := range queries {
		i, q := i, q
		task := func() {
			defer wg.Done()
			out, err := e.processOne(ctx, i, q, tokenBudget)
			if err != nil {
				seq.submit(item{seq: i, failed: true, err: err})
				return
			}
			seq.submit(item{seq: i, outcome: out})
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			seq.submit(item{seq: i, failed: true, err: fmt.Errorf("submit query %d: %w", i, err)})
		}
	}
	wg.Wait()

	summary := Summary{Results: results, Budget: tokenBudget}
	for _, r := range results {
		if r.Status() == batch.StatusOK {
			summary.OK++
		} else {
			summary.Errors++
		}
	}
	return outcomes, summary
}

// processOne runs the scorer, classifier, and optional disambiguation and
// cache steps for a single query.
func (e *Engine) processOne(ctx context.Context, seq int, q record.Query, tokenBudget *budget.Budget) (Outcome, error) {
	start := time.Now()
	outcomeLabel := "error"
	defer func() {
		metrics.QueriesTotal.WithLabelValues(outcomeLabel).Inc()
		metrics.QueryDuration.WithLabelValues(outcomeLabel).Observe(time.Since(start).Seconds())
	}()

	if q.Title() == "" && q.Author() == "" {
		return Outcome{}, fmt.Errorf("%w: query %d (%s) has neither title nor author", domain.ErrQueryMalformed, seq, q.Filename())
	}

	opts := e.opts
	if e.deps.Exclusions != nil {
		backend := "memory"
		if _, ok := e.deps.Exclusions.(*exclusion.Redis); ok {
			backend = "redis"
		}
		shared, err := e.deps.Exclusions.Snapshot(ctx)
		if err != nil {
			metrics.ExclusionCacheTotal.WithLabelValues(backend, "error").Inc()
			if e.deps.Logger != nil {
				e.deps.Logger.Warn("exclusion cache snapshot failed, proceeding without it", zap.Error(err))
			}
		} else {
			metrics.ExclusionCacheTotal.WithLabelValues(backend, "ok").Inc()
		}
		if err == nil && len(shared) > 0 {
			merged := make(map[string]bool, len(opts.ExcludedIDs)+len(shared))
			for id := range opts.ExcludedIDs {
				merged[id] = true
			}
			for id := range shared {
				merged[id] = true
			}
			opts.ExcludedIDs = merged
		}
	}

	cacheable := e.deps.Cache != nil && !opts.Disambiguation.Enabled
	var fp uint64
	if cacheable {
		fp = fingerprint(q, opts)
		if cached, hit, err := lookupCache(e.deps.Cache, fp); err == nil && hit {
			metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
			outcomeLabel = string(cached.Tag)
			return toOutcome(seq, q, cached), nil
		}
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
	}

	fields, emb := e.encoder.Encode(q.Title(), q.Author(), q.Place(), q.Year())
	candidates, stats := e.scorer.Score(emb, q.Title(), fields, q.Year(), opts)
	outcome := classify.Classify(candidates, stats, opts)

	if e.deps.Disambiguator != nil && opts.Disambiguation.Enabled {
		outcome = disambiguate(ctx, e.deps.Disambiguator, tokenBudget, e.deps.Logger, q, outcome, opts, e.refByIndex)
	}

	if outcome.Tag == classify.UniqueMatch && len(outcome.WinningCluster) == 1 && e.deps.Exclusions != nil {
		if err := e.deps.Exclusions.Add(ctx, outcome.WinningCluster[0].ExternalID); err != nil && e.deps.Logger != nil {
			e.deps.Logger.Warn("failed to claim matched reference in exclusion cache", zap.Error(err))
		}
	}

	outcomeLabel = string(outcome.Tag)
	pr := toPipelineResult(outcome)
	if cacheable {
		if err := storeCache(e.deps.Cache, fp, pr); err != nil && e.deps.Logger != nil {
			e.deps.Logger.Warn("failed to write result cache", zap.Error(err))
		}
	}

	return toOutcome(seq, q, pr), nil
}
