// Package budget caps disambiguation LLM token spend for a batch run.
package budget

// Budget tracks disambiguation LLM token spend against an optional cap. A
// Limit of 0 means unlimited: Spend never reports exhaustion.
type Budget struct {
	limit     int
	spent     int
	exhausted bool
}

// New creates a Budget with the given token cap.
func New(limit int) *Budget {
	return &Budget{limit: limit}
}

// Spend records n additional spent tokens and reports whether the budget is
// now exhausted. Once exhausted it stays exhausted.
func (b *Budget) Spend(n int) bool {
	if b == nil || b.limit <= 0 {
		return false
	}
	b.spent += n
	if b.spent >= b.limit {
		b.exhausted = true
	}
	return b.exhausted
}

// Limit returns the token cap, or 0 if unlimited.
func (b *Budget) Limit() int { return b.limit }

// Spent returns tokens spent so far.
func (b *Budget) Spent() int { return b.spent }

// Remaining returns tokens left under the cap: 0 once the cap is reached,
// and 0 for an unlimited budget.
func (b *Budget) Remaining() int {
	if b.limit <= 0 {
		return 0
	}
	if r := b.limit - b.spent; r > 0 {
		return r
	}
	return 0
}

// IsExhausted reports whether spending has reached the cap.
func (b *Budget) IsExhausted() bool { return b != nil && b.exhausted }
