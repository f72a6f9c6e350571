package middlewares

import (
	"net/http"

	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// MaxBodyBytes rejects requests that declare a body larger than max and caps
// the rest, so a chunked body that runs over fails inside binding.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			handlers.RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
			ctx.Abort()
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
