// Package usage aggregates disambiguation LLM usage for a batch run or a
// reporting window into a Report. No CLI command builds or prints a Report.
package usage

import (
	"github.com/libris-match/engine/internal/domain/usage/budget"
	"github.com/libris-match/engine/internal/domain/usage/metrics"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// Report is a disambiguation usage report for a run or a reporting period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	runLabel    string
	metrics     metrics.Metrics
	budget      *budget.Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, runLabel string, m metrics.Metrics, b *budget.Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		runLabel:    runLabel,
		metrics:     m,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// RunLabel returns the run label filter, if any.
func (r *Report) RunLabel() string { return r.runLabel }

// Metrics returns the usage metrics.
func (r *Report) Metrics() metrics.Metrics { return r.metrics }

// Budget returns the budget status, if a cap was configured.
func (r *Report) Budget() *budget.Budget { return r.budget }
