// Package exclusion implements the optional distributed exclusion-id set
// shared across multiple engine processes running the same batch, so a
// reference already claimed by a UniqueMatch on one process is not handed
// out again by another. Falls back to an in-memory set when unconfigured.
package exclusion

import "context"

// Set is a shared collection of already-claimed reference external ids.
type Set interface {
	// Snapshot returns the full current set, consulted once per query before
	// scoring so a fresh claim by a concurrent process is honored promptly
	// without a per-candidate round trip.
	Snapshot(ctx context.Context) (map[string]bool, error)
	// Add claims externalID, making it visible to subsequent Snapshot calls
	// from any process sharing this set.
	Add(ctx context.Context, externalID string) error
	// Close releases any held connection.
	Close() error
}
