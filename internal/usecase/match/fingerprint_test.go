package match

import (
	"testing"

	"github.com/libris-match/engine/internal/domain"
	"github.com/libris-match/engine/internal/domain/record"
)

func mustQuery(t *testing.T, title, author, place string, year *int) record.Query {
	t.Helper()
	q, err := record.NewQuery(title, author, place, year, 0, "q.json", record.Diagnostic{})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	return q
}

func TestFingerprint_DeterministicAcrossCalls(t *testing.T) {
	year := 1955
	q := mustQuery(t, "Moby Dick", "Herman Melville", "New York", &year)
	opts := domain.DefaultEngineOptions()

	a := fingerprint(q, opts)
	b := fingerprint(q, opts)
	if a != b {
		t.Errorf("fingerprint changed across identical calls: %d != %d", a, b)
	}
}

func TestFingerprint_DiffersOnFieldChange(t *testing.T) {
	year := 1955
	q1 := mustQuery(t, "Moby Dick", "Herman Melville", "New York", &year)
	q2 := mustQuery(t, "Billy Budd", "Herman Melville", "New York", &year)
	opts := domain.DefaultEngineOptions()

	if fingerprint(q1, opts) == fingerprint(q2, opts) {
		t.Errorf("fingerprint collided for distinct canonicalised titles")
	}
}

func TestFingerprint_IgnoresFilenameAndEdition(t *testing.T) {
	year := 1955
	q1, _ := record.NewQuery("Moby Dick", "Herman Melville", "New York", &year, 0, "a.json", record.Diagnostic{})
	q2, _ := record.NewQuery("Moby Dick", "Herman Melville", "New York", &year, 3, "b.json", record.Diagnostic{})
	opts := domain.DefaultEngineOptions()

	if fingerprint(q1, opts) != fingerprint(q2, opts) {
		t.Errorf("fingerprint must depend only on canonicalised fields and options, not filename/edition")
	}
}

func TestFingerprint_DiffersOnOptionChange(t *testing.T) {
	year := 1955
	q := mustQuery(t, "Moby Dick", "Herman Melville", "New York", &year)
	opts1 := domain.DefaultEngineOptions()
	opts2 := domain.DefaultEngineOptions()
	opts2.SimilarityThreshold = 0.5

	if fingerprint(q, opts1) == fingerprint(q, opts2) {
		t.Errorf("fingerprint must change when the active option set changes")
	}
}
