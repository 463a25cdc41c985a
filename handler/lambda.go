package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"coach-gateway/internal/middleware"
)

// Handle serves API Gateway REST proxy events with the same routes and
// responses as the HTTP router.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := middleware.ResolveCorrelationID(headerValue(req.Headers, middleware.HeaderCorrelationID))
	ctx = middleware.WithCorrelationID(ctx, correlationID)

	var resp events.APIGatewayProxyResponse
	switch route := normalizePath(req.Path); {
	case req.HTTPMethod == http.MethodOptions:
		resp = events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: map[string]string{}}
	case route == "/" && req.HTTPMethod == http.MethodGet:
		resp = textResponse(http.StatusOK, HealthMessage)
	case route == "/api/coach" && req.HTTPMethod == http.MethodPost:
		status, payload := h.serveCoach(ctx, headerValue(req.Headers, "Authorization"), func() ([]byte, error) {
			return eventBody(req)
		})
		resp = jsonResponse(status, payload)
	case route == "/" || route == "/api/coach":
		resp = jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
	default:
		resp = jsonResponse(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}

	for k, v := range h.cors.Headers(headerValue(req.Headers, "Origin")) {
		resp.Headers[k] = v
	}
	resp.Headers[middleware.HeaderCorrelationID] = correlationID
	h.logger.InfoContext(ctx, "request completed",
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"correlation_id", correlationID,
	)
	return resp, nil
}

func eventBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, fmt.Errorf("handler: decode base64 body: %w", err)
	}
	return body, nil
}

// headerValue looks a header up case-insensitively; API Gateway forwards
// header names as the client sent them.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimRight(p, "/")
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}

func jsonResponse(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
