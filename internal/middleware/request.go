package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
)

// Attribute keys shared by the request logger and the context aware slog handler.
const (
	RequestLoggerKeyCorrelationID = "correlationId"
	RequestLoggerKeyWedding       = "weddingId"
)

// CorrelationIDHeader is echoed on every response so clients can report it.
const CorrelationIDHeader = "X-Correlation-ID"

type ctxKey int

var correlationIDKey ctxKey

// CorrelationID is a Gin middleware that adds a correlation ID to the [http.Request.Context]. A
// valid id sent by the client is kept, otherwise a new one is generated.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		ctx := NewContextWithCorrelationID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// NewContextWithCorrelationID returns a new [context.Context] that carries value correlationID.
func NewContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// GetCorrelationID returns the correlation ID stored in the ctx, if any. It had to have been set by
// the [CorrelationID] middleware before.
func GetCorrelationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok
}

// WeddingScope parses the weddingId path parameter and stores it in the request context.
func WeddingScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		weddingID, err := strconv.ParseUint(c.Param("weddingId"), 10, 32)
		if err != nil || weddingID == 0 {
			_ = c.AbortWithError(http.StatusBadRequest, fmt.Errorf("invalid wedding id %q", c.Param("weddingId")))
			return
		}
		ctx := model.NewContextWithWedding(c.Request.Context(), uint(weddingID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequestLogger logs details like request time, response time, latency and more about every
// request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()

		c.Next()

		responseTime := time.Now()

		params := make(map[string]string, len(c.Params))
		for _, param := range c.Params {
			params[param.Key] = param.Value
		}
		requestAttribute := slog.Group("request",
			slog.Time("time", requestTime),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Any("params", params),
			slog.String("ip", c.ClientIP()),
		)
		responseAttribute := slog.Group("response",
			slog.Time("time", responseTime),
			slog.Duration("latency", responseTime.Sub(requestTime)),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
		)

		level := slog.LevelInfo
		const msg = "Processed HTTP request"
		var errorAttribute slog.Attr
		if status := c.Writer.Status(); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			level = slog.LevelWarn
			errorAttribute = slog.String("error", c.Errors.String())
		} else if status >= http.StatusInternalServerError {
			level = slog.LevelError
			errorAttribute = slog.String("error", c.Errors.String())
		}

		logger.LogAttrs(c.Request.Context(), level, msg, errorAttribute, requestAttribute, responseAttribute)
	}
}
