package middlewares

import (
	"context"
	"log/slog"

	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.AuthContext, error)
}

type AuthMiddleware struct {
	authn Authenticator
	prom  *observability.Prom
}

func NewAuthMiddleware(authn Authenticator, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, prom: prom}
}

// RequireAuth runs the authenticator and stops the chain on any failure, so
// no resource handler sees an unauthenticated request.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, err := m.authn.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				m.prom.RecordAuthFailure(appErr.Code)
				slog.DebugContext(c.Request.Context(), "authentication rejected",
					"code", appErr.Code,
					"route", c.FullPath(),
				)
			}

			c.Abort()
			handlers.RespondAppError(c, err)
			return
		}

		setAuth(c, ac)

		c.Next()
	}
}

// AuthFromContext returns the identity attached by RequireAuth.
func AuthFromContext(c *gin.Context) (auth.AuthContext, bool) {
	return auth.FromContext(c.Request.Context())
}

// setAuth publishes ac on the request context, where handlers and the log
// handler read it.
func setAuth(c *gin.Context, ac auth.AuthContext) {
	c.Request = c.Request.WithContext(auth.WithAuth(c.Request.Context(), ac))
}
