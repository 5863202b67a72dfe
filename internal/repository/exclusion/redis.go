package exclusion

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

const setKey = "libris-match:excluded-ids"

// Redis is a Set backed by a single Redis (or Redis-compatible) SET key,
// shared across every engine process pointed at the same Redis address.
type Redis struct {
	client rueidis.Client
}

// NewRedis dials a rueidis client against addrs.
func NewRedis(addrs []string) (*Redis, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("exclusion cache: at least one redis address is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  addrs,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("exclusion cache: dial redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Snapshot issues a single SMEMBERS call.
func (r *Redis) Snapshot(ctx context.Context) (map[string]bool, error) {
	cmd := r.client.B().Smembers().Key(setKey).Build()
	members, err := r.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("exclusion cache: smembers: %w", err)
	}
	out := make(map[string]bool, len(members))
	for _, m := range members {
		out[m] = true
	}
	return out, nil
}

// Add issues SADD, claiming externalID for every process sharing this set.
func (r *Redis) Add(ctx context.Context, externalID string) error {
	cmd := r.client.B().Sadd().Key(setKey).Member(externalID).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("exclusion cache: sadd: %w", err)
	}
	return nil
}

// Close shuts down the underlying client.
func (r *Redis) Close() error {
	r.client.Close()
	return nil
}
