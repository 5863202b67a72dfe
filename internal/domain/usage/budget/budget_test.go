package budget

import "testing"

func TestSpend_WithinLimit(t *testing.T) {
	b := New(1000)
	if b.Spend(400) {
		t.Error("Spend() = true, want false")
	}
	if b.Spent() != 400 {
		t.Errorf("Spent() = %d", b.Spent())
	}
	if b.Remaining() != 600 {
		t.Errorf("Remaining() = %d", b.Remaining())
	}
	if b.IsExhausted() {
		t.Error("IsExhausted() = true, want false")
	}
}

func TestSpend_ExceedsLimit(t *testing.T) {
	b := New(1000)
	b.Spend(700)
	exhausted := b.Spend(700)
	if !exhausted {
		t.Error("Spend() = false, want true once over the cap")
	}
	if !b.IsExhausted() {
		t.Error("IsExhausted() = false, want true")
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", b.Remaining())
	}
}

func TestSpend_Unlimited(t *testing.T) {
	b := New(0)
	if b.Spend(1_000_000) {
		t.Error("Spend() = true, want false for an unlimited budget")
	}
	if b.Limit() != 0 {
		t.Errorf("Limit() = %d, want 0", b.Limit())
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0 (unlimited reports 0, not a cap)", b.Remaining())
	}
}

func TestSpend_NilReceiver(t *testing.T) {
	var b *Budget
	if b.Spend(10) {
		t.Error("Spend() on nil budget = true, want false")
	}
	if b.IsExhausted() {
		t.Error("IsExhausted() on nil budget = true, want false")
	}
}
