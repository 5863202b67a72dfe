// Package score implements the scorer: the cosine pass over the corpus
// plus the fixed-order adjustments (year policy, overlap, Jaro-Winkler,
// exclusion sets) described in the matching pipeline.
package score

import (
	"math"
	"sort"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/canon"
	"github.com/libris-match/engine/internal/domain/corpus"
	"github.com/libris-match/engine/internal/domain/field"
	"github.com/libris-match/engine/internal/domain/record"
	"github.com/xrash/smetrics"
)

// Candidate is one surviving reference after all adjustments: discarded
// after classification.
type Candidate struct {
	RefIndex          uint32
	ExternalID        string
	RawCosine         float32
	AdjustedScore     float32
	FieldSimilarities map[string]float32
	YearDelta         *int
}

// Stats summarises the pre-threshold population of raw cosines.
type Stats struct {
	Mean           float64
	Stdev          float64
	PopulationSize int
}

// Scorer computes, for one query, the sorted candidate list and summary
// statistics the classifier consumes.
type Scorer struct {
	corpus  *corpus.Store
	encoder record.Encoder
}

// NewScorer creates a Scorer bound to a loaded corpus and the encoder used
// to recompute per-field diagnostics for surviving candidates.
func NewScorer(c *corpus.Store, enc record.Encoder) Scorer {
	return Scorer{corpus: c, encoder: enc}
}

// Score runs the full scorer pipeline for one query against the shared
// corpus. queryEmbedding is the query's dense embedding; queryTitle is the
// raw query title, which Score canonicalises (and tokenizes, for overlap)
// for the overlap and Jaro-Winkler adjustments. A zero-norm queryEmbedding short-circuits to an
// empty candidate list per law 2 ("zero-norm queries short-circuit to no
// match").
func (s Scorer) Score(
	queryEmbedding record.Embedding,
	queryTitle string,
	queryFields record.Fields,
	queryYear *int,
	opts domain.EngineOptions,
) ([]Candidate, Stats) {
	if queryEmbedding.IsZero() {
		return nil, Stats{}
	}

	n := s.corpus.N()
	raw := make([]float32, n)
	for r := 0; r < n; r++ {
		raw[r] = dot(queryEmbedding.Vector, s.corpus.EmbeddingRow(r))
	}

	stats := computeStats(raw)

	queryTitleTokens := canon.Tokenize(canon.String(queryTitle))

	candidates := make([]Candidate, 0, n)
	for r := 0; r < n; r++ {
		sc := raw[r]
		if sc < opts.SimilarityThreshold {
			continue
		}

		ref := s.corpus.Reference(r)

		var yearDelta *int
		if opts.ForceYear {
			ok, delta := applyYearPolicy(&sc, queryYear, ref.Year(), opts)
			if !ok {
				continue
			}
			yearDelta = delta
		}

		if opts.OverlapAdjustment >= 1 {
			refTitleTokens := canon.Tokenize(canon.String(ref.Title()))
			sc *= clamp01(overlapMultiplier(queryTitleTokens, refTitleTokens, opts.OverlapAdjustment))
		}

		if opts.JaroWinklerAdjustment {
			j := float32(smetrics.JaroWinkler(canon.String(queryTitle), canon.String(ref.Title()), 0.7, 4))
			sc *= clamp01(0.5 + 0.5*j)
		}

		if opts.ExcludedIDs != nil && opts.ExcludedIDs[ref.ExternalID()] {
			continue
		}

		candidates = append(candidates, Candidate{
			RefIndex:          ref.Index(),
			ExternalID:        ref.ExternalID(),
			RawCosine:         raw[r],
			AdjustedScore:     sc,
			FieldSimilarities: s.fieldSimilarities(queryFields, ref),
			YearDelta:         yearDelta,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AdjustedScore != candidates[j].AdjustedScore {
			return candidates[i].AdjustedScore > candidates[j].AdjustedScore
		}
		return candidates[i].RefIndex < candidates[j].RefIndex
	})

	return candidates, stats
}

func (s Scorer) fieldSimilarities(queryFields record.Fields, ref record.Reference) map[string]float32 {
	refFields, _ := s.encoder.Encode(ref.Title(), ref.Author(), ref.Place(), ref.Year())
	sims := make(map[string]float32, len(queryFields))
	for name, qv := range queryFields {
		sims[name] = field.Cosine(qv, refFields[name])
	}
	return sims
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func computeStats(raw []float32) Stats {
	n := len(raw)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, x := range raw {
		sum += float64(x)
	}
	mean := sum / float64(n)

	var sumSqDiff float64
	for _, x := range raw {
		d := float64(x) - mean
		sumSqDiff += d * d
	}
	stdev := math.Sqrt(sumSqDiff / float64(n))

	return Stats{Mean: mean, Stdev: stdev, PopulationSize: n}
}

// applyYearPolicy implements step 3. Returns ok=false when the candidate
// must be dropped.
func applyYearPolicy(sc *float32, yq, yr *int, opts domain.EngineOptions) (ok bool, delta *int) {
	if yq == nil || yr == nil {
		return false, nil
	}
	d := *yq - *yr
	if d < 0 {
		d = -d
	}
	if d > opts.YearTolerance {
		return false, nil
	}
	mult := clamp01(1 - float32(d)*opts.YearTolerancePenalty)
	*sc *= mult
	return true, &d
}

// overlapMultiplier implements step 4: the longest common contiguous token
// subsequence between query and reference title tokens.
func overlapMultiplier(q, r []string, k int) float32 {
	l := longestCommonContiguousSubsequence(q, r)
	maxLen := len(q)
	if len(r) > maxLen {
		maxLen = len(r)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - (1-float32(l)/float32(maxLen))*(1-1/float32(k))
}

func longestCommonContiguousSubsequence(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
