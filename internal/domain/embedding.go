package domain

import (
	"context"
	"fmt"
)

// Disambiguator is the optional LLM-assisted tie-breaker contract (spec §4.6a).
// Implementations must fail open: any error means the caller keeps the
// classifier's original MultipleMatches outcome.
type Disambiguator interface {
	// Pick asks the model to choose the single best match for query among
	// candidates and returns the chosen candidate's ReferenceID. An empty
	// return with a nil error means the model declined to choose.
	Pick(ctx context.Context, query DisambiguationQuery, candidates []DisambiguationCandidate) (DisambiguationResult, error)
}

// HealthChecker verifies a collaborator's availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DisambiguationQuery carries the raw query fields shown to the model.
type DisambiguationQuery struct {
	Title  string
	Author string
	Place  string
	Year   string
}

// DisambiguationCandidate carries one winning-cluster candidate's fields.
type DisambiguationCandidate struct {
	ReferenceID string
	Title       string
	Author      string
	Place       string
	Year        string
}

// DisambiguationResult carries the model's choice plus token usage.
type DisambiguationResult struct {
	ReferenceID  string // empty if the model declined to choose
	PromptTokens int
	TotalTokens  int
}

// instructionDisambiguator is a domain decorator that prepends a system
// instruction before delegating — the same shape as a text-embedding
// instruction wrapper, applied here to chat-based disambiguation prompts.
type instructionDisambiguator struct {
	inner       Disambiguator
	instruction string
}

// NewInstructionDisambiguator wraps inner so every query's title is prefixed
// with instruction before the model sees it (useful for steering prompt
// style without touching the transport implementation).
func NewInstructionDisambiguator(inner Disambiguator, instruction string) Disambiguator {
	if instruction == "" {
		return inner
	}
	return &instructionDisambiguator{inner: inner, instruction: instruction}
}

func (d *instructionDisambiguator) Pick(
	ctx context.Context, query DisambiguationQuery, candidates []DisambiguationCandidate,
) (DisambiguationResult, error) {
	query.Title = d.instruction + query.Title
	result, err := d.inner.Pick(ctx, query, candidates)
	if err != nil {
		return DisambiguationResult{}, fmt.Errorf("instruction disambiguate: %w", err)
	}
	return result, nil
}
