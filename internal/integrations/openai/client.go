package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"coach-gateway/internal/domain"
)

// ErrNoChoices is returned when the provider answers without any completion choice.
var ErrNoChoices = errors.New("openai: no choices in response")

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused chat completions client. The API key is fixed at
// construction; an empty key yields a client that reports itself unconfigured.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int

	sdk sdk.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every completion request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{apiKey: strings.TrimSpace(apiKey)}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout < 0 {
		return nil, errors.New("openai: timeout must not be negative")
	}
	if c.maxRetries < 0 {
		return nil, errors.New("openai: max retries must not be negative")
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(c.apiKey),
		option.WithMaxRetries(c.maxRetries),
	}
	if c.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(normalizeBaseURL(c.baseURL)))
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(c.httpClient))
	}
	if c.timeout > 0 {
		sdkOpts = append(sdkOpts, option.WithRequestTimeout(c.timeout))
	}
	c.sdk = sdk.NewClient(sdkOpts...)
	return c, nil
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Chat sends a single chat completion request and returns the content of the
// first choice. Only model and messages are sent.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	if model == "" {
		return "", errors.New("openai: model must not be empty")
	}
	if !c.Configured() {
		return "", errors.New("openai: api key is not configured")
	}

	params, err := chatParams(model, messages)
	if err != nil {
		return "", err
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", asStatusError(err))
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}
	return completion.Choices[0].Message.Content, nil
}

func chatParams(model string, messages []domain.ChatMessage) (sdk.ChatCompletionNewParams, error) {
	converted := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			converted = append(converted, sdk.SystemMessage(m.Content))
		case domain.RoleUser:
			converted = append(converted, sdk.UserMessage(m.Content))
		case domain.RoleAssistant:
			converted = append(converted, sdk.AssistantMessage(m.Content))
		default:
			return sdk.ChatCompletionNewParams{}, fmt.Errorf("openai: unsupported message role %q", m.Role)
		}
	}
	return sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: converted,
	}, nil
}

// asStatusError converts SDK API errors into HTTPStatusError so callers can
// inspect the upstream status without depending on the SDK.
func asStatusError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	statusErr := &HTTPStatusError{StatusCode: apiErr.StatusCode}
	if apiErr.Request != nil && apiErr.Request.URL != nil {
		statusErr.URL = apiErr.Request.URL.String()
	}
	statusErr.Body = truncate(apiErr.RawJSON(), 4096)
	return statusErr
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
