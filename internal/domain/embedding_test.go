package domain

import (
	"context"
	"errors"
	"testing"
)

type stubDisambiguator struct {
	result DisambiguationResult
	err    error
	got    DisambiguationQuery
}

func (s *stubDisambiguator) Pick(
	_ context.Context, query DisambiguationQuery, _ []DisambiguationCandidate,
) (DisambiguationResult, error) {
	s.got = query
	return s.result, s.err
}

func TestInstructionDisambiguator_PrependsInstruction(t *testing.T) {
	inner := &stubDisambiguator{result: DisambiguationResult{ReferenceID: "r1"}}
	dis := NewInstructionDisambiguator(inner, "Be precise: ")

	result, err := dis.Pick(context.Background(), DisambiguationQuery{Title: "Moby Dick"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got.Title != "Be precise: Moby Dick" {
		t.Errorf("expected prepended title, got %q", inner.got.Title)
	}
	if result.ReferenceID != "r1" {
		t.Errorf("expected r1, got %q", result.ReferenceID)
	}
}

func TestInstructionDisambiguator_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubDisambiguator{err: innerErr}
	dis := NewInstructionDisambiguator(inner, "prefix: ")

	_, err := dis.Pick(context.Background(), DisambiguationQuery{Title: "x"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionDisambiguator_EmptyInstructionReturnsInner(t *testing.T) {
	inner := &stubDisambiguator{result: DisambiguationResult{ReferenceID: "r2"}}
	dis := NewInstructionDisambiguator(inner, "")

	if dis != inner {
		t.Fatalf("expected empty instruction to return inner unchanged")
	}
}

func TestDisambiguationUsage_AddTokens(t *testing.T) {
	ctx, usage := NewContextWithDisambiguationUsage(context.Background())

	DisambiguationUsageFromContext(ctx).AddTokens(42)
	DisambiguationUsageFromContext(ctx).AddTokens(8)

	if usage.Calls != 2 {
		t.Errorf("expected 2 calls, got %d", usage.Calls)
	}
	if usage.TotalTokens != 50 {
		t.Errorf("expected 50 tokens, got %d", usage.TotalTokens)
	}
}

func TestDisambiguationUsageFromContext_NotSet(t *testing.T) {
	if u := DisambiguationUsageFromContext(context.Background()); u != nil {
		t.Errorf("expected nil usage for bare context, got %+v", u)
	}
	// AddTokens on a nil receiver must not panic.
	var u *DisambiguationUsage
	u.AddTokens(10)
}
