package domain

import "context"

type disambiguationUsageKey struct{}

// DisambiguationUsage collects LLM token usage across a batch run. When a
// context carries one (see NewContextWithDisambiguationUsage), the
// disambiguation step adds each call's tokens to it. RunBatch does not
// install one, and the CLI's post-run line reads the token budget instead.
type DisambiguationUsage struct {
	Calls       int
	TotalTokens int
}

// NewContextWithDisambiguationUsage returns a context with an embedded usage collector.
func NewContextWithDisambiguationUsage(ctx context.Context) (context.Context, *DisambiguationUsage) {
	u := &DisambiguationUsage{}
	return context.WithValue(ctx, disambiguationUsageKey{}, u), u
}

// DisambiguationUsageFromContext extracts the usage collector from context. Returns nil if not set.
func DisambiguationUsageFromContext(ctx context.Context) *DisambiguationUsage {
	u, _ := ctx.Value(disambiguationUsageKey{}).(*DisambiguationUsage)
	return u
}

// AddTokens records consumed tokens for one disambiguation call.
func (u *DisambiguationUsage) AddTokens(n int) {
	if u != nil {
		u.Calls++
		u.TotalTokens += n
	}
}
