package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leadgpt/emailgend/internal/config"
	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/fetch"
	"github.com/leadgpt/emailgend/internal/llm"
	"github.com/leadgpt/emailgend/internal/observability"
	"github.com/leadgpt/emailgend/internal/queue"
	"github.com/redis/go-redis/v9"
)

// transport is a queue driver that can both consume and publish.
type transport interface {
	queue.Consumer
	queue.Publisher
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	logger := observability.NewLogger(cfg.Level, cfg.Format, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

func llmConfig(cfg config.LLMConfig) *llm.Config {
	lc := llm.ConfigFor(llm.Provider(cfg.Provider)).
		WithModel(llm.TierStandard, cfg.SummaryModel).
		WithModel(llm.TierAdvanced, cfg.GenerationModel)
	lc.Temperature = cfg.Temperature
	lc.BaseURL = cfg.BaseURL
	return lc
}

func newLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	client, err := llm.NewClient(ctx, llmConfig(cfg), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewRateLimited(client, cfg.RPS, cfg.Burst), nil
}

func newRedisClient(cfg config.RedisConfig) redis.UniversalClient {
	addrs := []string{cfg.Addr}
	if cfg.UseCluster {
		addrs = addrs[:0]
		for _, node := range cfg.ClusterNodes {
			if node != "" {
				addrs = append(addrs, node)
			}
		}
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// needsRedis reports whether any configured component talks to Redis.
func needsRedis(cfg config.AppConfig) bool {
	return cfg.Queue.Driver == config.DriverRedis || cfg.Cache.Enabled
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := newRedisClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// newSources builds the enrichment sources for the configured website mode.
// The profile source is disabled without a RapidAPI key. rc may be nil when
// caching is disabled.
func newSources(cfg config.AppConfig, rc redis.UniversalClient, logger *slog.Logger) (fetch.WebsiteSource, fetch.ProfileSource) {
	rapid := cfg.RapidAPI

	var website fetch.WebsiteSource
	switch rapid.WebsiteMode {
	case fetch.ModeDirect:
		opts := fetch.DefaultOptions()
		opts.Timeout = rapid.Timeout
		src := &fetch.DirectSource{Options: opts, Logger: logger}
		if rapid.BrowserFallback {
			src.Render = fetch.BrowserRenderer(rapid.BrowserTimeout, logger)
		}
		website = src
	case fetch.ModeBrowser:
		website = &fetch.BrowserSource{Render: fetch.BrowserRenderer(rapid.BrowserTimeout, logger)}
	default:
		website = fetch.NewScraperSource(fetch.RapidAPIOptions{
			Key:     rapid.Key,
			BaseURL: rapid.ScraperBaseURL,
			Timeout: rapid.Timeout,
		})
	}

	var profile fetch.ProfileSource
	if rapid.Key != "" {
		profile = fetch.NewLinkedInSource(fetch.RapidAPIOptions{
			Key:     rapid.Key,
			BaseURL: rapid.LinkedInBaseURL,
			Timeout: rapid.Timeout,
		})
	} else {
		logger.Warn("RAPIDAPI_KEY not set, profile enrichment disabled")
	}

	if cfg.Cache.Enabled && rc != nil {
		cache := fetch.NewRedisCache(rc, cfg.Cache.Prefix)
		cc := fetch.CachedConfig{TTL: cfg.Cache.TTL, Logger: logger}
		website = fetch.NewCachedWebsite(website, cache, cc)
		if profile != nil {
			profile = fetch.NewCachedProfile(profile, cache, cc)
		}
	}
	return website, profile
}

func newTransport(cfg config.AppConfig, rc redis.UniversalClient, logger *slog.Logger) (transport, error) {
	switch cfg.Queue.Driver {
	case config.DriverRedis:
		if rc == nil {
			return nil, fmt.Errorf("redis queue driver requires a redis client")
		}
		return queue.NewRedis(rc, queue.RedisConfig{
			Queue:        cfg.Queue.Name,
			BlockTimeout: cfg.Redis.BlockTimeout,
			HeartbeatTTL: cfg.Redis.HeartbeatTTL,
			Logger:       logger,
		}), nil
	case config.DriverAMQP:
		a, err := queue.DialAMQP(queue.AMQPConfig{
			URL:      cfg.AMQP.DSN(),
			Queue:    cfg.Queue.Name,
			Prefetch: cfg.AMQP.Prefetch,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported queue driver %q", cfg.Queue.Driver)
	}
}

// openStore connects to the result store using only the DB section, for the
// operator commands that need nothing else.
func openStore(ctx context.Context) (*db.DB, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	return db.Connect(ctx, cfg.Postgres.URL)
}
