package match

import (
	"github.com/libris-match/engine/internal/domain/classify"
	"github.com/libris-match/engine/internal/domain/record"
	"github.com/libris-match/engine/internal/domain/score"
)

// topN is TOP_N from the original matcher: at most this many candidates are
// carried onto an outcome row, regardless of how many survived scoring.
const topN = 10

// CandidateRow is one candidate's fields on an outcome row.
type CandidateRow struct {
	ExternalID        string
	RawCosine         float32
	AdjustedScore     float32
	YearDelta         *int
	FieldSimilarities map[string]float32
}

// PipelineResult is the part of a query's outcome that is a pure function of
// (canonicalised fields, option set, corpus) — the part the result cache
// memoizes. It excludes the query's own identity (filename, edition), since
// two distinct queries can share a fingerprint and must not share identity.
type PipelineResult struct {
	Tag        classify.Tag
	TopZ       float64
	Stats      score.Stats
	Candidates []CandidateRow
}

// Outcome is one query's fully-processed result row: source filename,
// edition, and the cacheable pipeline result, per the outcome-row shape the
// report writer and audit sink consume.
type Outcome struct {
	QueryIndex int
	Filename   string
	Edition    int
	Diagnostic record.Diagnostic
	PipelineResult
}

func toPipelineResult(out classify.Outcome) PipelineResult {
	n := len(out.Candidates)
	if n > topN {
		n = topN
	}
	rows := make([]CandidateRow, n)
	for i := 0; i < n; i++ {
		c := out.Candidates[i]
		rows[i] = CandidateRow{
			ExternalID:        c.ExternalID,
			RawCosine:         c.RawCosine,
			AdjustedScore:     c.AdjustedScore,
			YearDelta:         c.YearDelta,
			FieldSimilarities: c.FieldSimilarities,
		}
	}
	return PipelineResult{Tag: out.Tag, TopZ: out.TopZ, Stats: out.Stats, Candidates: rows}
}

func toOutcome(seq int, q record.Query, pr PipelineResult) Outcome {
	return Outcome{
		QueryIndex:     seq,
		Filename:       q.Filename(),
		Edition:        q.Edition(),
		Diagnostic:     q.Diagnostic(),
		PipelineResult: pr,
	}
}
