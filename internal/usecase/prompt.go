package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"coach-gateway/internal/domain"
)

const emptyContext = "{}"

func buildPromptMessages(financialContext json.RawMessage, message string) ([]domain.ChatMessage, error) {
	data, err := serializeContext(financialContext)
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildSystemPrompt(data)},
		{Role: domain.RoleUser, Content: message},
	}, nil
}

func buildSystemPrompt(userData string) string {
	return strings.Join([]string{
		"You are an expert Financial Coach.",
		"You have access to the user's live financial data in JSON format below.",
		"",
		"USER DATA:",
		userData,
		"",
		"INSTRUCTIONS:",
		coachingRules(),
	}, "\n")
}

func coachingRules() string {
	return strings.Join([]string{
		"1. Analyze their Income vs Outflow, specific Debts, and Business expenses (if any).",
		"2. Answer their specific question based on these numbers.",
		"3. Be encouraging but realistic.",
		"4. Keep the answer concise (under 150 words) unless they ask for a detailed plan.",
	}, "\n")
}

// serializeContext renders the caller's context as compact JSON. An absent
// context is rendered as an empty object.
func serializeContext(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyContext, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("usecase: serialize context: %w", err)
	}
	return buf.String(), nil
}
