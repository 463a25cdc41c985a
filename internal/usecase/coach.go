package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"coach-gateway/internal/domain"
)

// CoachModel is the completion model every coach request is sent to.
const CoachModel = "gpt-4o"

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	// Configured reports whether a provider credential was supplied at startup.
	Configured() bool
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type CoachService struct {
	llm   LLMClient
	model string
}

type CoachInput struct {
	Message string
	// Context is the caller's financial state, passed through as raw JSON.
	Context json.RawMessage
}

type CoachOutput struct {
	Reply string
}

func NewCoachService(llm LLMClient) (*CoachService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	return &CoachService{llm: llm, model: CoachModel}, nil
}

func (s *CoachService) Coach(ctx context.Context, in CoachInput) (CoachOutput, error) {
	if !s.llm.Configured() {
		return CoachOutput{}, newError(ErrorProviderMisconfigured, "missing_openai_api_key", nil)
	}

	messages, err := buildPromptMessages(in.Context, in.Message)
	if err != nil {
		return CoachOutput{}, newError(ErrorProviderCallFailed, "prompt_build_error", err)
	}

	reply, err := s.llm.Chat(ctx, s.model, messages)
	if err != nil {
		// The reason only feeds logs; callers see one generic failure.
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return CoachOutput{}, newError(ErrorProviderCallFailed, "openai_rate_limited", err)
		}
		return CoachOutput{}, newError(ErrorProviderCallFailed, "openai_error", err)
	}

	return CoachOutput{Reply: reply}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
