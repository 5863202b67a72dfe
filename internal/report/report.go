// Package report writes a batch run's outcome rows: the primary
// spreadsheet/markdown-style report stays out of scope (spec §1), but every
// outcome is still made available as JSON lines and mirrored into a
// columnar audit file for later analysis.
package report

import (
	"go.uber.org/multierr"

	"github.com/libris-match/engine/internal/usecase/match"
)

// OutcomeWriter receives one outcome row at a time, in whatever order the
// batch driver's reordering buffer emits them (input order). Close flushes
// and releases the underlying sink.
type OutcomeWriter interface {
	Write(o match.Outcome) error
	Close() error
}

// MultiWriter fans a single outcome out to every configured sink, so a run
// can write both the JSON-lines reference output and the parquet audit
// sink without the driver knowing either exists.
type MultiWriter []OutcomeWriter

// Write implements OutcomeWriter. It writes to every sink, combining every
// error encountered rather than stopping at the first — a failure in the
// audit sink shouldn't mask one in the reference output, or vice versa.
func (m MultiWriter) Write(o match.Outcome) error {
	var errs error
	for _, w := range m {
		errs = multierr.Append(errs, w.Write(o))
	}
	return errs
}

// Close implements OutcomeWriter.
func (m MultiWriter) Close() error {
	var errs error
	for _, w := range m {
		errs = multierr.Append(errs, w.Close())
	}
	return errs
}
