package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes shared across handlers.
const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeInvalidBody  = "invalid_body"
	CodeInvalidID    = "invalid_id"
	CodeNotFound     = "not_found"
	CodeDBError      = "db_error"
	CodeRateLimited  = "rate_limited"
)

// OK writes a success payload with ok=true merged in.
func OK(ctx *gin.Context, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(http.StatusOK, body)
}

// OKCached writes a success payload and best-effort stores the encoded body
// under the given Redis key so a follow-up request can be served verbatim.
func OKCached(ctx *gin.Context, payload gin.H, cacheKey string) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	CacheSetJSON(cacheKey, body, 0)
	ctx.JSON(http.StatusOK, body)
}

// Fail writes a failure envelope with a string error code.
func Fail(ctx *gin.Context, status int, code string) {
	ctx.JSON(status, gin.H{"ok": false, "error": code})
}

// FailDB reports a store-layer failure, keeping the underlying message in the
// logs for diagnostics while the response stays generic.
func FailDB(ctx *gin.Context, err error) {
	if Sugar != nil {
		Sugar.Errorw("database error", "path", ctx.FullPath(), "err", err)
	}
	Fail(ctx, http.StatusInternalServerError, CodeDBError)
}

// LimitReached writes the scan-quota rejection: not an error, a structured
// business-rule refusal with its own payload shape and HTTP 429.
func LimitReached(ctx *gin.Context, usage any) {
	ctx.JSON(http.StatusTooManyRequests, gin.H{
		"ok":    false,
		"code":  "LIMIT_REACHED",
		"usage": usage,
	})
}
