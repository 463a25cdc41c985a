// Package wiring assembles the gateway from its configuration. Both
// entrypoints (HTTP server and Lambda) build their handler here.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"coach-gateway/handler"
	"coach-gateway/internal/config"
	"coach-gateway/internal/integrations/openai"
	"coach-gateway/internal/integrations/paramstore"
	"coach-gateway/internal/usecase"
)

// GetterFactory creates the Parameter Store reader. It is only invoked when a
// secret has to be fetched, so deployments without SSM never load AWS config.
type GetterFactory func(ctx context.Context) (paramstore.Getter, error)

// SSMGetter builds a paramstore client from the default AWS credential chain.
func SSMGetter(ctx context.Context) (paramstore.Getter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("wiring: load AWS config: %w", err)
	}
	client, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// FinalizeConfig resolves Parameter Store secrets and applies defaults. It
// must run once, before the handler is built.
func FinalizeConfig(ctx context.Context, cfg *config.Config, newGetter GetterFactory, logger *slog.Logger) error {
	if cfg.NeedsParamStore() {
		if newGetter == nil {
			return errors.New("wiring: parameter store requested but no getter factory configured")
		}
		getter, err := newGetter(ctx)
		if err != nil {
			return err
		}
		if err := cfg.ResolveSecrets(ctx, getter); err != nil {
			return err
		}
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return err
	}

	if cfg.UsingDefaultAccessKey {
		logger.Warn("ACCESS_KEY is not set; falling back to the built-in default key",
			"hint", "set ACCESS_KEY or REQUIRE_ACCESS_KEY=true")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; coach requests will fail until it is configured")
	}
	return nil
}

// NewHandler builds the provider client, coach service and transport handler.
func NewHandler(cfg config.Config, logger *slog.Logger) (*handler.Handler, error) {
	client, err := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithTimeout(cfg.OpenAITimeout),
		openai.WithMaxRetries(cfg.OpenAIMaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("wiring: create OpenAI client: %w", err)
	}

	svc, err := usecase.NewCoachService(client)
	if err != nil {
		return nil, fmt.Errorf("wiring: create coach service: %w", err)
	}

	h, err := handler.NewHandler(svc, cfg.AccessKey, logger, handler.WithAllowedOrigins(cfg.AllowedOrigins))
	if err != nil {
		return nil, fmt.Errorf("wiring: create handler: %w", err)
	}
	return h, nil
}
