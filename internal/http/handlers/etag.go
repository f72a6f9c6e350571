package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a content hash as its ETag and
// answers 304 when the client already holds it. List bodies depend on who
// is asking, so the response is marked private and varies on Authorization.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	ctx.Header("Cache-Control", "private, no-cache")
	ctx.Header("Vary", "Authorization")

	etag, err := buildETag(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func buildETag(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)

	// 16 bytes is plenty to tell list versions apart
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

func ifNoneMatchMatches(headerValue, currentETag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || currentETag == "" {
		return false
	}

	if headerValue == "*" {
		return true
	}

	current := normalizeETag(currentETag)

	for _, part := range strings.Split(headerValue, ",") {
		if normalizeETag(part) == current {
			return true
		}
	}

	return false
}

// normalizeETag strips the weak prefix; If-None-Match uses weak comparison.
func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)
	return strings.TrimSpace(strings.TrimPrefix(v, "W/"))
}
