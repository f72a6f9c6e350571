package auth

import (
	"github.com/geocoder89/bloghub/internal/apperr"
)

// RequireAdmin gates admin-only operations.
func RequireAdmin(ac AuthContext) error {
	if !ac.Authenticated() {
		return apperr.ErrAuthMissing
	}

	if !ac.User.IsAdmin() {
		return apperr.ErrForbidden
	}

	return nil
}

// ResolveScope narrows non-admins to their own rows. Admins keep the full
// scope.
func ResolveScope(ac AuthContext) (AuthContext, error) {
	if !ac.Authenticated() {
		return AuthContext{}, apperr.ErrAuthMissing
	}

	if ac.User.IsAdmin() {
		return ac.WithScope(ScopeFull), nil
	}

	return ac.WithScope(ScopeSelf), nil
}
