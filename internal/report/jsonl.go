package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/libris-match/engine/internal/usecase/match"
)

// JSONLWriter writes one outcome row per line, newline-delimited JSON. It is
// the lightweight, always-available reference implementation of
// OutcomeWriter.
type JSONLWriter struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewJSONLWriter wraps w in a buffered encoder. If w also implements
// io.Closer, Close closes it after flushing.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	closer, _ := w.(io.Closer)
	return &JSONLWriter{w: bufio.NewWriter(w), closer: closer}
}

// Write implements OutcomeWriter.
func (j *JSONLWriter) Write(o match.Outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outcome row: %w", err)
	}
	if _, err := j.w.Write(data); err != nil {
		return fmt.Errorf("write outcome row: %w", err)
	}
	return j.w.WriteByte('\n')
}

// Close implements OutcomeWriter.
func (j *JSONLWriter) Close() error {
	if err := j.w.Flush(); err != nil {
		return fmt.Errorf("flush outcome writer: %w", err)
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
