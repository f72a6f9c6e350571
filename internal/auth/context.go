package auth

import (
	"context"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
)

// Scope is the row restriction a request runs under.
type Scope string

const (
	// ScopeFull is the zero value: no row restriction.
	ScopeFull Scope = ""
	// ScopeSelf limits the request to rows the caller owns.
	ScopeSelf Scope = "self"
)

// AuthContext is the identity a single request runs as. It is a value:
// resolving a scope returns a new AuthContext rather than changing one.
type AuthContext struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      user.User
	Scope     Scope
}

func (ac AuthContext) Authenticated() bool {
	return ac.User.ID != 0
}

func (ac AuthContext) WithScope(scope Scope) AuthContext {
	ac.Scope = scope
	return ac
}

type ctxKey struct{}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(ctxKey{}).(AuthContext)

	return ac, ok && ac.Authenticated()
}
