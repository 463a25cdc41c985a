package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"coach-gateway/internal/config"
	"coach-gateway/internal/logging"
	"coach-gateway/internal/wiring"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		logger.Warn("invalid LOG_LEVEL, using info", "err", err)
	}
	slog.SetDefault(logger)

	if err := wiring.FinalizeConfig(ctx, &cfg, wiring.SSMGetter, logger); err != nil {
		logger.Error("failed to finalize configuration", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := wiring.NewHandler(cfg, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
