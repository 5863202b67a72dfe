package match

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/classify"
	"github.com/libris-match/engine/internal/domain/record"
	"github.com/libris-match/engine/internal/domain/score"
	"github.com/libris-match/engine/internal/domain/usage/budget"
	"github.com/libris-match/engine/internal/metrics"
)

// disambiguate consults the optional LLM tie-breaker for a MultipleMatches
// outcome whose winning cluster is small enough to present to the model. It
// always fails open: any error, a declined pick, or a budget exhaustion
// leaves out unchanged.
func disambiguate(
	ctx context.Context, d domain.Disambiguator, b *budget.Budget, logger *zap.Logger,
	q record.Query, out classify.Outcome, opts domain.EngineOptions, refByID func(uint32) record.Reference,
) classify.Outcome {
	if out.Tag != classify.MultipleMatches {
		return out
	}
	n := len(out.WinningCluster)
	if n < 2 || n > opts.Disambiguation.MaxClusterSize {
		return out
	}
	if b.IsExhausted() {
		metrics.DisambiguationCallsTotal.WithLabelValues("budget_exhausted").Inc()
		return out
	}

	query := domain.DisambiguationQuery{Title: q.Title(), Author: q.Author(), Place: q.Place()}
	if q.Year() != nil {
		query.Year = yearString(*q.Year())
	}
	candidates := make([]domain.DisambiguationCandidate, n)
	for i, c := range out.WinningCluster {
		ref := refByID(c.RefIndex)
		candidates[i] = domain.DisambiguationCandidate{
			ReferenceID: c.ExternalID,
			Title:       ref.Title(),
			Author:      ref.Author(),
			Place:       ref.Place(),
		}
		if ref.Year() != nil {
			candidates[i].Year = yearString(*ref.Year())
		}
	}

	result, err := d.Pick(ctx, query, candidates)
	if err != nil {
		metrics.DisambiguationCallsTotal.WithLabelValues("error").Inc()
		if logger != nil {
			logger.Warn("disambiguation call failed, keeping multiple_matches", zap.Error(err))
		}
		return out
	}
	metrics.DisambiguationTokensTotal.WithLabelValues("prompt").Add(float64(result.PromptTokens))
	metrics.DisambiguationTokensTotal.WithLabelValues("total").Add(float64(result.TotalTokens))
	if usage := domain.DisambiguationUsageFromContext(ctx); usage != nil {
		usage.AddTokens(result.TotalTokens)
	}
	b.Spend(result.TotalTokens)

	if result.ReferenceID == "" {
		metrics.DisambiguationCallsTotal.WithLabelValues("declined").Inc()
		return out
	}
	for _, c := range out.WinningCluster {
		if c.ExternalID == result.ReferenceID {
			metrics.DisambiguationCallsTotal.WithLabelValues("picked").Inc()
			out.Tag = classify.UniqueMatch
			out.WinningCluster = []score.Candidate{c}
			return out
		}
	}
	metrics.DisambiguationCallsTotal.WithLabelValues("declined").Inc()
	return out
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}
