package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects POST/PUT/PATCH requests that carry a body in any other
// format. Body-less requests such as PATCH /posts/toggle_visibility/:id pass.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				c.Abort()
				handlers.RespondError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json", nil)
				return
			}
		}
		c.Next()
	}
}
