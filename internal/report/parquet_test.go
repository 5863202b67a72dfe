package report

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/libris-match/engine/internal/domain/classify"
	"github.com/libris-match/engine/internal/usecase/match"
)

func TestParquetWriter_WritesReadableFile(t *testing.T) {
	var buf bytes.Buffer
	w := NewParquetWriter(&buf)

	o := match.Outcome{
		QueryIndex:     3,
		Filename:       "card7.json",
		Edition:        1,
		PipelineResult: match.PipelineResult{Tag: classify.NoMatch, TopZ: 1.5},
	}
	if err := w.Write(o); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pf, err := parquet.OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	reader := parquet.NewGenericReader[AuditRow](pf)
	defer reader.Close()

	rows := make([]AuditRow, 1)
	n, err := reader.Read(rows)
	if n != 1 {
		t.Fatalf("read %d rows (err=%v), want 1", n, err)
	}
	if rows[0].Filename != "card7.json" || rows[0].QueryIndex != 3 {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Tag != string(classify.NoMatch) {
		t.Errorf("Tag = %q, want %q", rows[0].Tag, classify.NoMatch)
	}
}
