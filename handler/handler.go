// Package handler exposes the coach gateway over HTTP (gin) and over API
// Gateway proxy events (Lambda). Both transports share the same
// authentication, decoding and error mapping.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"coach-gateway/internal/auth"
	"coach-gateway/internal/middleware"
	"coach-gateway/internal/usecase"
)

// HealthMessage is the plaintext liveness response served on GET /.
const HealthMessage = "Financial Coach AI Backend is Running."

const (
	msgMissingAccessKey = "Missing access key"
	msgInvalidAccessKey = "Invalid Access Key"
	msgInvalidBody      = "Invalid request body"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"

	replyMisconfigured  = "Error: Server is missing OpenAI API Key configuration."
	replyProviderFailed = "I'm having trouble connecting to my brain right now. Please try again in a moment."
)

const maxBodyBytes = 1 << 20

type CoachUseCase interface {
	Coach(ctx context.Context, in usecase.CoachInput) (usecase.CoachOutput, error)
}

type Handler struct {
	coach          CoachUseCase
	accessKey      string
	logger         *slog.Logger
	allowedOrigins []string
	cors           *middleware.CORSPolicy
}

type Option func(*Handler)

// WithAllowedOrigins sets the origins that receive CORS headers on both
// transports. Without it no CORS headers are sent.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		h.allowedOrigins = origins
	}
}

type coachRequest struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
}

type coachResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(uc CoachUseCase, accessKey string, logger *slog.Logger, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: coach usecase must not be nil")
	}
	if accessKey == "" {
		return nil, errors.New("handler: access key must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{coach: uc, accessKey: accessKey, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	h.cors = middleware.NewCORSPolicy(h.allowedOrigins)
	return h, nil
}

// serveCoach runs a coach request end to end and returns the status and JSON
// payload to send. The body is read only after the caller is authenticated.
func (h *Handler) serveCoach(ctx context.Context, authHeader string, readBody func() ([]byte, error)) (int, any) {
	if err := auth.CheckBearer(authHeader, h.accessKey); err != nil {
		h.logger.InfoContext(ctx, "coach request rejected",
			"reason", err.Error(),
			"correlation_id", middleware.CorrelationIDFrom(ctx),
		)
		if errors.Is(err, auth.ErrInvalidCredential) {
			return http.StatusForbidden, errorResponse{Error: msgInvalidAccessKey}
		}
		return http.StatusUnauthorized, errorResponse{Error: msgMissingAccessKey}
	}

	body, err := readBody()
	if err != nil {
		return h.invalidBody(ctx, err)
	}
	in, err := decodeCoachRequest(body)
	if err != nil {
		return h.invalidBody(ctx, err)
	}

	out, err := h.coach.Coach(ctx, in)
	if err != nil {
		return h.coachFailure(ctx, err)
	}
	return http.StatusOK, coachResponse{Reply: out.Reply}
}

func (h *Handler) invalidBody(ctx context.Context, err error) (int, any) {
	h.logger.InfoContext(ctx, "coach request body rejected",
		"err", err,
		"correlation_id", middleware.CorrelationIDFrom(ctx),
	)
	return http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
}

func (h *Handler) coachFailure(ctx context.Context, err error) (int, any) {
	attrs := []any{"err", err, "correlation_id", middleware.CorrelationIDFrom(ctx)}

	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		attrs = append(attrs, "code", string(ucErr.Code), "reason", ucErr.Reason)
		if ucErr.Code == usecase.ErrorProviderMisconfigured {
			h.logger.ErrorContext(ctx, "coach request failed: provider not configured", attrs...)
			return http.StatusInternalServerError, coachResponse{Reply: replyMisconfigured}
		}
	}

	h.logger.ErrorContext(ctx, "openai call failed", attrs...)
	return http.StatusInternalServerError, coachResponse{Reply: replyProviderFailed}
}

// decodeCoachRequest accepts an empty or null body as {}. Anything else must
// be a JSON object whose message, when present, is a string.
func decodeCoachRequest(body []byte) (usecase.CoachInput, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return usecase.CoachInput{}, nil
	}
	if !strings.HasPrefix(string(body), "{") {
		return usecase.CoachInput{}, errors.New("handler: request body must be a JSON object")
	}

	var req coachRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return usecase.CoachInput{}, err
	}
	return usecase.CoachInput{Message: req.Message, Context: req.Context}, nil
}
