package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const wildcardOrigin = "*"

// CORSPolicy decides which origins receive CORS headers. A "*" entry allows
// every origin. It is shared by the gin middleware and the Lambda adapter.
type CORSPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func NewCORSPolicy(allowedOrigins []string) *CORSPolicy {
	return &CORSPolicy{
		allowAll: lo.Contains(allowedOrigins, wildcardOrigin),
		origins: lo.SliceToMap(allowedOrigins, func(o string) (string, struct{}) {
			return o, struct{}{}
		}),
	}
}

// Headers returns the response headers for a request from origin, or nil
// when the origin is empty or not allowed.
func (p *CORSPolicy) Headers(origin string) map[string]string {
	if p == nil || origin == "" {
		return nil
	}
	if _, listed := p.origins[origin]; !p.allowAll && !listed {
		return nil
	}
	return map[string]string{
		"Access-Control-Allow-Origin":   origin,
		"Access-Control-Allow-Methods":  "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers":  "Authorization, Content-Type",
		"Access-Control-Expose-Headers": HeaderCorrelationID,
		"Access-Control-Max-Age":        "86400",
		"Vary":                          "Origin",
	}
}

// CORS allows cross-origin requests from allowedOrigins. Preflight requests
// are answered with 204 and never reach the route handlers.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := NewCORSPolicy(allowedOrigins)

	return func(c *gin.Context) {
		for k, v := range policy.Headers(c.GetHeader("Origin")) {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
