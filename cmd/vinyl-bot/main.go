package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/averageanalysis/vinyl-recorder/internal/bot"
	"github.com/averageanalysis/vinyl-recorder/internal/config"
	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/discogs"
	"github.com/averageanalysis/vinyl-recorder/internal/identifier"
	"github.com/averageanalysis/vinyl-recorder/internal/ledger"
	"github.com/averageanalysis/vinyl-recorder/internal/llm"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
	"github.com/averageanalysis/vinyl-recorder/internal/pipeline"
	"github.com/averageanalysis/vinyl-recorder/internal/recommend"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	for _, validate := range []func() error{cfg.ValidateIdentify, cfg.ValidateEnrich, cfg.ValidateBot} {
		if err := validate(); err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(ctx, cfg)
	if err != nil {
		appLogger.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}

	llmClient, err := llm.New(cfg.LLMProvider, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		appLogger.Error("Failed to init LLM client", "error", err)
		os.Exit(1)
	}
	recognizer := identifier.New(llmClient, appLogger)
	enricher := discogs.NewClient(constants.DiscogsBaseURL, cfg.DiscogsToken)
	pipe := pipeline.New(store, recognizer, enricher, appLogger)
	recommender := recommend.New(llmClient, store, appLogger)

	b, err := bot.New(cfg, pipe, recognizer, recommender, appLogger)
	if err != nil {
		appLogger.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
}
