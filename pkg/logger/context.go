package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// contextKey keeps the logger's context key private to this package
type contextKey int

const loggerKey contextKey = iota

// WithLogger stores a logger in a Go context, for code paths that run
// outside an Echo handler (the update protocol's detached writes)
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request-scoped logger. The request-id middleware
// seeds the Echo context; handlers and the error mapper read it back here.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	if l, ok := c.Request().Context().Value(loggerKey).(*zap.Logger); ok {
		return l
	}

	// No request scope, use the service-wide logger
	return GetLogger()
}
