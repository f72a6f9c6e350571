package redisclient

import (
	"context"
	"fmt"
	"time"
)

const revokedPrefix = "bloghub:revoked:"

// Revocations stores revoked token ids as keys that expire together with the
// token, so the set never outgrows the tokens still in circulation.
type Revocations struct {
	client *Client
}

func NewRevocations(c *Client) *Revocations {
	return &Revocations{client: c}
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired; the signature check rejects it anyway
		return nil
	}

	if err := r.client.redisdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.redisdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}

	return n > 0, nil
}
