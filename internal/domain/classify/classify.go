// Package classify turns a scorer's candidate list and population
// statistics into a single Outcome: NoMatch, UniqueMatch, or
// MultipleMatches.
package classify

import (
	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/score"
)

// Tag is the classifier's verdict for one query.
type Tag string

// Classifier verdicts.
const (
	NoMatch         Tag = "no_match"
	UniqueMatch     Tag = "unique_match"
	MultipleMatches Tag = "multiple_matches"
)

// minStdev floors sigma so a near-zero-variance population never produces
// an unbounded z-score.
const minStdev = 1e-6

// clusterEpsilon is the winning-cluster fraction: a candidate belongs to
// the winning cluster when its score is within this fraction of the top
// score.
const clusterEpsilon = 0.01

// Outcome is the classifier's result for one query: the verdict, the full
// candidate list as scored (for report emission — the winning cluster is
// always its prefix once sorted), and the winning cluster size actually
// used for the verdict.
type Outcome struct {
	Tag            Tag
	Candidates     []score.Candidate
	Stats          score.Stats
	WinningCluster []score.Candidate
	TopZ           float64
}

// Classify implements the seven-step decision procedure. candidates must
// already be sorted by adjusted score descending, reference index
// ascending on ties, as Scorer.Score returns them.
func Classify(candidates []score.Candidate, stats score.Stats, opts domain.EngineOptions) Outcome {
	if len(candidates) == 0 {
		return Outcome{Tag: NoMatch, Stats: stats}
	}

	top := candidates[0].AdjustedScore

	sigma := stats.Stdev
	if sigma < minStdev {
		sigma = minStdev
	}
	z := (float64(top) - stats.Mean) / sigma

	if z < float64(opts.ZThreshold) {
		return Outcome{Tag: NoMatch, Candidates: candidates, Stats: stats, TopZ: z}
	}

	cluster := winningCluster(candidates, top)

	switch {
	case len(cluster) == 1 && top >= opts.MinSingleSimilarity:
		return Outcome{Tag: UniqueMatch, Candidates: candidates, Stats: stats, WinningCluster: cluster, TopZ: z}
	case len(cluster) >= 2 && top >= opts.MinMultipleSimilarity:
		return Outcome{Tag: MultipleMatches, Candidates: candidates, Stats: stats, WinningCluster: cluster, TopZ: z}
	default:
		return Outcome{Tag: NoMatch, Candidates: candidates, Stats: stats, WinningCluster: cluster, TopZ: z}
	}
}

// winningCluster returns the leading run of candidates within
// clusterEpsilon of top. Candidates arrive sorted descending, so the
// cluster is always a contiguous prefix.
func winningCluster(candidates []score.Candidate, top float32) []score.Candidate {
	floor := top * (1 - clusterEpsilon)
	i := 0
	for i < len(candidates) && candidates[i].AdjustedScore >= floor {
		i++
	}
	return candidates[:i]
}
