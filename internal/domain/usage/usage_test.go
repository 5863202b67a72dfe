package usage

import (
	"testing"

	"github.com/libris-match/engine/internal/domain/usage/budget"
	"github.com/libris-match/engine/internal/domain/usage/metrics"
)

func TestNewReport(t *testing.T) {
	m := metrics.New(1542, 384200, 38)
	b := budget.New(1000000)
	b.Spend(615800)

	r := NewReport(PeriodMonth, 1700000000, 1702600000, "nightly-batch", m, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 {
		t.Errorf("PeriodStart() = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != 1702600000 {
		t.Errorf("PeriodEnd() = %d", r.PeriodEnd())
	}
	if r.RunLabel() != "nightly-batch" {
		t.Errorf("RunLabel() = %q", r.RunLabel())
	}
	if r.Metrics().Calls() != 1542 {
		t.Errorf("Metrics().Calls() = %d", r.Metrics().Calls())
	}
	if r.Budget().Spent() != 615800 {
		t.Errorf("Budget().Spent() = %d", r.Budget().Spent())
	}
}

func TestPeriodConstants(t *testing.T) {
	if PeriodDay != "day" {
		t.Errorf("PeriodDay = %q", PeriodDay)
	}
	if PeriodMonth != "month" {
		t.Errorf("PeriodMonth = %q", PeriodMonth)
	}
	if PeriodTotal != "total" {
		t.Errorf("PeriodTotal = %q", PeriodTotal)
	}
}
