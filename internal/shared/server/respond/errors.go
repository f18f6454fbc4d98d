package respond

import (
	"github.com/gin-gonic/gin"

	"aari-docs/internal/shared/telemetry"
)

// ErrorResponse is the error envelope returned to clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends {"error": message}. cause is logged server-side only.
func Error(c *gin.Context, status int, message string, cause error) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
