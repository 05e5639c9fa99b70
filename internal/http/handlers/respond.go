package handlers

import (
	"log/slog"
	"time"

	"github.com/elthrasher/eventreg/internal/apierr"
	"github.com/gin-gonic/gin"
)

// wireError is the exact shape spec §7 requires:
// { "error": { "code", "message", "details"?, "timestamp", "path", "requestId" } }
type wireError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	RequestID string      `json:"requestId,omitempty"`
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

// RespondAPIError renders an *apierr.APIError in the spec's wire format
// and logs 5xx-class failures (the raw store/internal error is never part
// of the response body).
func RespondAPIError(ctx *gin.Context, err error) {
	ae := apierr.From(err)

	if ae.Status >= 500 {
		slog.Default().ErrorContext(ctx.Request.Context(), "request_failed",
			"code", ae.Code, "path", ctx.Request.URL.Path, "err", err)
	}

	ctx.JSON(ae.Status, gin.H{
		"error": wireError{
			Code:      string(ae.Code),
			Message:   ae.Message,
			Details:   ae.Details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      ctx.Request.URL.Path,
			RequestID: requestIDFrom(ctx),
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondAPIError(ctx, apierr.Validation(message, details))
}
