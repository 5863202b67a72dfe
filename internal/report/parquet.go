package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/libris-match/engine/internal/usecase/match"
)

// AuditRow is the flat, columnar shape an outcome row is mirrored into for
// the parquet audit sink. Per-candidate detail (external id, scores,
// per-field similarities) doesn't flatten cleanly into fixed columns since
// the candidate count varies row to row, so it is carried as a JSON column
// rather than forcing the reader to guess a fixed TOP_N column width —
// downstream analysis tools can still query into it.
type AuditRow struct {
	QueryIndex     int     `parquet:"query_index"`
	Filename       string  `parquet:"filename"`
	Edition        int     `parquet:"edition"`
	Tag            string  `parquet:"tag"`
	TopZ           float64 `parquet:"top_z"`
	StatsMean      float64 `parquet:"stats_mean"`
	StatsStdev     float64 `parquet:"stats_stdev"`
	PopulationSize int     `parquet:"population_size"`
	CandidatesJSON string  `parquet:"candidates_json"`
}

func toAuditRow(o match.Outcome) (AuditRow, error) {
	candidates, err := json.Marshal(o.Candidates)
	if err != nil {
		return AuditRow{}, fmt.Errorf("marshal candidates for audit row: %w", err)
	}
	return AuditRow{
		QueryIndex:     o.QueryIndex,
		Filename:       o.Filename,
		Edition:        o.Edition,
		Tag:            string(o.Tag),
		TopZ:           o.TopZ,
		StatsMean:      o.Stats.Mean,
		StatsStdev:     o.Stats.Stdev,
		PopulationSize: o.Stats.PopulationSize,
		CandidatesJSON: string(candidates),
	}, nil
}

// ParquetWriter mirrors every outcome row into a columnar file for later
// analysis, independent of whatever richer report an external writer
// produces from the same run.
type ParquetWriter struct {
	w *parquet.GenericWriter[AuditRow]
}

// NewParquetWriter creates a ParquetWriter over w.
func NewParquetWriter(w io.Writer) *ParquetWriter {
	return &ParquetWriter{w: parquet.NewGenericWriter[AuditRow](w)}
}

// Write implements OutcomeWriter.
func (p *ParquetWriter) Write(o match.Outcome) error {
	row, err := toAuditRow(o)
	if err != nil {
		return err
	}
	if _, err := p.w.Write([]AuditRow{row}); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	return nil
}

// Close implements OutcomeWriter. It flushes the parquet footer.
func (p *ParquetWriter) Close() error {
	if err := p.w.Close(); err != nil {
		return fmt.Errorf("close parquet audit sink: %w", err)
	}
	return nil
}
