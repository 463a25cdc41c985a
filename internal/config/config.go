// Package config loads the gateway's process-wide settings once at startup.
// The resulting Config is passed by value into constructors and never mutated
// while requests are served.
package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codingconcepts/env"
	"github.com/samber/lo"

	"coach-gateway/internal/integrations/paramstore"
)

// DefaultAccessKey is used when no access key is configured and
// REQUIRE_ACCESS_KEY is off. Deployments should always set ACCESS_KEY.
const DefaultAccessKey = "default-key"

var ErrMissingAccessKey = errors.New("config: ACCESS_KEY is required when REQUIRE_ACCESS_KEY is set")

type Config struct {
	AccessKey        string `env:"ACCESS_KEY"`
	AccessKeyParam   string `env:"ACCESS_KEY_PARAM"`
	RequireAccessKey bool   `env:"REQUIRE_ACCESS_KEY" default:"false"`

	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIAPIKeyParam string        `env:"OPENAI_API_KEY_PARAM"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	OpenAITimeout     time.Duration `env:"OPENAI_TIMEOUT" default:"60s"`
	OpenAIMaxRetries  int           `env:"OPENAI_MAX_RETRIES" default:"0"`

	Port            string        `env:"PORT" default:"10000"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" default:"*"`
	LogLevel        string        `env:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	// UsingDefaultAccessKey is set by ApplyDefaults when DefaultAccessKey was
	// substituted for a missing ACCESS_KEY.
	UsingDefaultAccessKey bool `env:"-"`
}

// Load reads the environment and validates the result. Secrets stored in
// Parameter Store are not fetched here; see ResolveSecrets.
func Load() (Config, error) {
	var c Config
	if err := env.Set(&c); err != nil {
		return Config{}, fmt.Errorf("config: setting variables from environment: %w", err)
	}
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.AllowedOrigins = lo.Compact(lo.Map(c.AllowedOrigins, func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: PORT must be a TCP port number, got %q", c.Port)
	}
	if c.OpenAITimeout < 0 {
		return errors.New("config: OPENAI_TIMEOUT must not be negative")
	}
	if c.OpenAIMaxRetries < 0 {
		return errors.New("config: OPENAI_MAX_RETRIES must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// NeedsParamStore reports whether any secret has to be fetched from SSM.
func (c Config) NeedsParamStore() bool {
	return (c.AccessKey == "" && c.AccessKeyParam != "") ||
		(c.OpenAIAPIKey == "" && c.OpenAIAPIKeyParam != "")
}

// ResolveSecrets fills secrets that were not set directly from their
// Parameter Store names. Values given directly in the environment win.
func (c *Config) ResolveSecrets(ctx context.Context, getter paramstore.Getter) error {
	if c.AccessKey == "" && c.AccessKeyParam != "" {
		v, err := paramstore.ResolveSecret(ctx, getter, c.AccessKeyParam)
		if err != nil {
			return fmt.Errorf("config: resolve access key: %w", err)
		}
		c.AccessKey = v
	}
	if c.OpenAIAPIKey == "" && c.OpenAIAPIKeyParam != "" {
		v, err := paramstore.ResolveSecret(ctx, getter, c.OpenAIAPIKeyParam)
		if err != nil {
			return fmt.Errorf("config: resolve openai api key: %w", err)
		}
		c.OpenAIAPIKey = v
	}
	return nil
}

// ApplyDefaults substitutes DefaultAccessKey for a missing access key, or
// fails when REQUIRE_ACCESS_KEY is set. It must run after ResolveSecrets.
func (c *Config) ApplyDefaults() error {
	if c.AccessKey != "" {
		return nil
	}
	if c.RequireAccessKey {
		return ErrMissingAccessKey
	}
	c.AccessKey = DefaultAccessKey
	c.UsingDefaultAccessKey = true
	return nil
}
