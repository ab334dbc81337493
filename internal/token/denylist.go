package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revoked token ids in Valkey.
const keyPrefix = "revoked:"

// ValkeyDenylist stores revoked token ids in Valkey. Each entry expires when
// the token would have, so the set never outgrows the live tokens.
type ValkeyDenylist struct {
	client *redis.Client
}

// NewValkeyDenylist creates a denylist backed by the given Valkey client.
func NewValkeyDenylist(client *redis.Client) *ValkeyDenylist {
	return &ValkeyDenylist{client: client}
}

// Revoke marks jti as revoked until the given time.
func (d *ValkeyDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // Already expired, nothing to deny.
	}
	if err := d.client.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("denylist set: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *ValkeyDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("denylist exists: %w", err)
	}
	return n > 0, nil
}

// MemoryDenylist keeps revoked ids in process memory. It serves tests and
// single-instance deployments running without Valkey.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryDenylist returns an empty in-memory denylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time)}
}

// Revoke marks jti as revoked until the given time.
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, exp := range d.revoked {
		if now.After(exp) {
			delete(d.revoked, id)
		}
	}
	d.revoked[jti] = until
	return nil
}

// IsRevoked reports whether jti has been revoked and not yet expired.
func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[jti]
	return ok && time.Now().Before(exp), nil
}
