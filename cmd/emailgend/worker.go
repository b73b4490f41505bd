package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leadgpt/emailgend/internal/config"
	"github.com/leadgpt/emailgend/internal/content"
	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/enrich"
	"github.com/leadgpt/emailgend/internal/jobrunner"
	"github.com/leadgpt/emailgend/internal/pipeline"
	"github.com/leadgpt/emailgend/internal/summary"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume and process email generation jobs",
	Long: `Consume jobs from the configured queue until SIGINT or SIGTERM.

Each job is enriched, summarized and turned into one three-email sequence per
target. The result is written to the job's registered record, and the delivery
is acknowledged only after that write succeeds.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Postgres.RunMigrationsOnStart {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	var rc redis.UniversalClient
	if needsRedis(cfg) {
		rc, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
	}

	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	website, profile := newSources(cfg, rc, logger)
	fetcher := enrich.NewFetcher(enrich.Options{
		Website:          website,
		Profile:          profile,
		Timeout:          cfg.RapidAPI.Timeout,
		Truncator:        enrich.NewTruncator(logger),
		MaxWebsiteTokens: cfg.Pipeline.MaxWebsiteTokens,
		Logger:           logger,
	})
	summarizer := summary.New(client, summary.Options{Logger: logger})
	generator := content.New(client, content.Options{Logger: logger})

	popts := pipeline.Options{
		MaxTargetConcurrency: cfg.Pipeline.MaxTargetConcurrency,
		OnProgress: func(ev pipeline.ProgressEvent) {
			logger.Debug("progress",
				"stage", ev.Stage,
				"organization_id", ev.OrganizationID,
				"target_id", ev.TargetID,
				"message", ev.Message)
		},
		Logger: logger,
	}
	orchestrator := pipeline.NewOrchestrator(pipeline.NewTargetProcessor(fetcher, summarizer, generator, popts), popts)

	runner, err := jobrunner.New(jobrunner.Options{
		Store:        store,
		Orchestrator: orchestrator,
		Model:        generator.Model(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	tr, err := newTransport(cfg, rc, logger)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	logger.Info("worker started",
		"queue_driver", cfg.Queue.Driver,
		"queue", cfg.Queue.Name,
		"llm_provider", cfg.LLM.Provider,
		"model", generator.Model(),
		"website_mode", cfg.RapidAPI.WebsiteMode,
		"cache", cfg.Cache.Enabled)

	if err := runner.Run(ctx, tr); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}
