package middlewares

import (
	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, _ := AuthFromContext(c)

		if err := auth.RequireAdmin(ac); err != nil {
			c.Abort()
			handlers.RespondAppError(c, err)
			return
		}

		c.Next()
	}
}

// ResolveScope narrows the request's identity to its access scope. Routes
// that filter rows by owner must mount it after RequireAuth.
func ResolveScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := AuthFromContext(c)
		if !ok {
			c.Abort()
			handlers.RespondAppError(c, apperr.ErrAuthMissing)
			return
		}

		scoped, err := auth.ResolveScope(ac)
		if err != nil {
			c.Abort()
			handlers.RespondAppError(c, err)
			return
		}

		setAuth(c, scoped)

		c.Next()
	}
}
