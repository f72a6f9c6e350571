package auth

import (
	"context"
	"time"

	"github.com/geocoder89/bloghub/internal/cache"
)

// MemoryRevocations keeps revoked token ids in process. It is used when no
// Redis is configured, so revocations do not survive a restart and are not
// shared between replicas.
type MemoryRevocations struct {
	entries *cache.Cache
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: cache.New(time.Hour)}
}

func (r *MemoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.entries.Sweep()
	r.entries.SetWithTTL(tokenID, struct{}{}, ttl)

	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.entries.Get(tokenID)

	return ok, nil
}
