package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"finanzas-be/internal/logging"
)

// RequestLogger logs one line per request. 4xx responses are logged at
// warn and 5xx at error, together with any errors handlers attached.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	logger = logger.WithComponent(logging.ComponentHTTP)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		args := []any{
			logging.FieldMethod, c.Request.Method,
			logging.FieldPath, path,
			logging.FieldStatusCode, status,
			logging.FieldDuration, time.Since(start).Milliseconds(),
			logging.FieldClientIP, c.ClientIP(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			args = append(args, logging.FieldUserID, userID)
		}
		if len(c.Errors) > 0 {
			args = append(args, logging.FieldError, c.Errors.String())
		}

		logger.Log(c.Request.Context(), level, "http request", args...)
	}
}
