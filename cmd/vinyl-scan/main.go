package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/averageanalysis/vinyl-recorder/internal/config"
	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/discogs"
	"github.com/averageanalysis/vinyl-recorder/internal/identifier"
	"github.com/averageanalysis/vinyl-recorder/internal/ledger"
	"github.com/averageanalysis/vinyl-recorder/internal/llm"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
	"github.com/averageanalysis/vinyl-recorder/internal/pipeline"
	"github.com/averageanalysis/vinyl-recorder/internal/tracker"
)

func main() {
	pendingOnly := flag.Bool("pending", false, "list pending images and exit")
	enrichOnly := flag.Bool("enrich", false, "only run the enrichment sweep")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
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

	src := tracker.NewDirSource(cfg.ImagesDir, cfg.ImageType)

	if err := cfg.ValidateEnrich(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	enricher := discogs.NewClient(constants.DiscogsBaseURL, cfg.DiscogsToken)

	if *enrichOnly {
		p := pipeline.New(store, nil, enricher, appLogger)
		enriched, missed, err := p.EnrichPending(ctx)
		if err != nil {
			appLogger.Error("Enrichment sweep failed", "error", err)
			os.Exit(1)
		}
		appLogger.Info("Enrichment sweep finished", "enriched", enriched, "missed", missed)
		return
	}

	if err := cfg.ValidateIdentify(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	llmClient, err := llm.New(cfg.LLMProvider, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		appLogger.Error("Failed to init LLM client", "error", err)
		os.Exit(1)
	}
	recognizer := identifier.New(llmClient, appLogger)

	p := pipeline.New(store, recognizer, enricher, appLogger)

	if *pendingOnly {
		pending, err := p.PendingImages(ctx, src)
		if err != nil {
			appLogger.Error("Failed to resolve pending images", "error", err)
			os.Exit(1)
		}
		fmt.Printf("%d pending images\n", len(pending))
		for _, img := range pending {
			fmt.Println(img.Name)
		}
		return
	}

	sum, err := p.RunBatch(ctx, src, constants.SourceLocal, cfg.DuplicateCheckBatch)
	if err != nil {
		appLogger.Error("Batch failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d pending images: %d recorded, %d failed, %d duplicates, %d enriched (%d without a match)\n",
		sum.Pending, sum.Identified, sum.Failed, sum.Duplicates, sum.Enriched, sum.EnrichMissed)
}
