package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/geocoder89/bloghub/internal/domain/user"
)

// Keep these small so tests can fake them easily.
type TokenCodec interface {
	Verify(token string) bool
	DecodeClaims(token string) (*Claims, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Authenticator struct {
	codec       TokenCodec
	users       UserFinder
	revocations RevocationList
	// retention bounds how long revocations of non-expiring tokens are kept
	retention time.Duration
}

func NewAuthenticator(codec TokenCodec, users UserFinder, revocations RevocationList, retention time.Duration) *Authenticator {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &Authenticator{
		codec:       codec,
		users:       users,
		revocations: revocations,
		retention:   retention,
	}
}

// Authenticate resolves an Authorization header value into an AuthContext.
// Every rejection is an Unauthorized apperr; any other error is a storage
// failure. Unknown users, revoked tokens and bad signatures all fail with
// AUTH_TOKEN_INVALID so callers cannot tell them apart.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (AuthContext, error) {
	if header == "" {
		return AuthContext{}, apperr.ErrAuthMissing
	}

	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return AuthContext{}, apperr.ErrAuthWrongType
	}

	token, _, _ := strings.Cut(rest, " ")
	if token == "" {
		return AuthContext{}, apperr.ErrAuthTokenMissing
	}

	if !a.codec.Verify(token) {
		return AuthContext{}, apperr.ErrAuthTokenInvalid
	}

	claims, err := a.codec.DecodeClaims(token)
	if err != nil {
		return AuthContext{}, apperr.ErrAuthTokenInvalid
	}

	if a.revocations != nil && claims.ID != "" {
		revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return AuthContext{}, fmt.Errorf("check token revocation: %w", err)
		}

		if revoked {
			slog.Default().DebugContext(ctx, "auth.revoked_token", "user_id", claims.UserID)
			return AuthContext{}, apperr.ErrAuthTokenInvalid
		}
	}

	u, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return AuthContext{}, apperr.ErrAuthTokenInvalid
		}

		return AuthContext{}, fmt.Errorf("load token user: %w", err)
	}

	ac := AuthContext{
		Token:   token,
		TokenID: claims.ID,
		User:    u,
	}

	if claims.ExpiresAt != nil {
		ac.ExpiresAt = claims.ExpiresAt.Time
	}

	return ac, nil
}

// Revoke invalidates the token ac was authenticated with until it would
// have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, ac AuthContext) error {
	if a.revocations == nil || ac.TokenID == "" {
		return nil
	}

	ttl := a.retention
	if !ac.ExpiresAt.IsZero() {
		ttl = time.Until(ac.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	return a.revocations.Revoke(ctx, ac.TokenID, ttl)
}
