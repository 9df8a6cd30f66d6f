package http

import (
	"context"
	"log/slog"
)

const serviceName = "genius-core-web"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}

// logHTTPOperationError records a failed handler outcome. 5xx responses
// log at error level since they indicate our fault; everything else is a
// client problem and logs at warn.
func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	logger := httpLogger().With(
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"error_code", code,
		"message", message,
		"request_id", requestIDFromContext(ctx),
	)
	if err != nil {
		logger = logger.With("error", err.Error())
	}
	logger.Log(ctx, level, "http operation failed")
}
