package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/canon"
	"github.com/libris-match/engine/internal/domain/record"
)

// fingerprint returns a deterministic digest of a query's canonicalised
// fields and the option set that would affect its outcome, used as the
// result-cache key. Two queries with the same fingerprint always produce
// the same outcome, per the scorer and classifier's determinism guarantee.
func fingerprint(q record.Query, opts domain.EngineOptions) uint64 {
	year := "-"
	if q.Year() != nil {
		year = fmt.Sprintf("%d", *q.Year())
	}
	excluded := make([]string, 0, len(opts.ExcludedIDs))
	for id, on := range opts.ExcludedIDs {
		if on {
			excluded = append(excluded, id)
		}
	}
	sort.Strings(excluded)
	key := fmt.Sprintf(
		"%s\x00%s\x00%s\x00%s\x00%v\x00%v\x00%v\x00%v\x00%v\x00%d\x00%v\x00%v\x00%v\x00%v\x00%s\x00%s",
		canon.String(q.Title()), canon.String(q.Author()), canon.String(q.Place()), year,
		opts.SimilarityThreshold, opts.ZThreshold, opts.MinSingleSimilarity, opts.MinMultipleSimilarity,
		opts.ForceYear, opts.YearTolerance, opts.YearTolerancePenalty,
		opts.OverlapAdjustment, opts.JaroWinklerAdjustment, opts.AddAuthorToTitle,
		opts.WeightsFile, strings.Join(excluded, "\x01"),
	)
	return xxhash.Sum64String(key)
}
