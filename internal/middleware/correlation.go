package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderCorrelationID carries the per-request id in both directions.
const HeaderCorrelationID = "X-Correlation-Id"

type correlationKey struct{}

// NewCorrelationID returns a fresh id for requests that did not bring one.
var NewCorrelationID = func() string {
	return uuid.NewString()
}

// ResolveCorrelationID returns the caller's id when present, otherwise a new one.
func ResolveCorrelationID(provided string) string {
	if id := strings.TrimSpace(provided); id != "" {
		return id
	}
	return NewCorrelationID()
}

// WithCorrelationID stores id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom returns the id stored by WithCorrelationID, or "".
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// CorrelationID echoes or assigns X-Correlation-Id and makes it available
// through the request context.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ResolveCorrelationID(c.GetHeader(HeaderCorrelationID))
		c.Header(HeaderCorrelationID, id)
		c.Request = c.Request.WithContext(WithCorrelationID(c.Request.Context(), id))
		c.Next()
	}
}
