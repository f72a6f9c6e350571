package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondAppError writes a typed error with its own status and code. Any
// other error is logged and answered with a generic 500.
func RespondAppError(ctx *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		slog.ErrorContext(ctx.Request.Context(), "unhandled error",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
		)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	RespondError(ctx, appErr.Kind.Status(), appErr.Code, appErr.Message, nil)
}
