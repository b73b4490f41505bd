package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leadgpt/emailgend/internal/config"
	"github.com/leadgpt/emailgend/internal/fetch"
	"github.com/leadgpt/emailgend/internal/llm"
	"github.com/leadgpt/emailgend/internal/queue"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		Queue:    config.QueueConfig{Driver: config.DriverAMQP, Name: "email_generation"},
		LLM:      config.LLMConfig{Provider: "openai", APIKey: "sk-test", Burst: 1},
		RapidAPI: config.RapidAPIConfig{Key: "rk", WebsiteMode: fetch.ModeScraper, Timeout: time.Second},
		Cache:    config.CacheConfig{TTL: time.Hour, Prefix: "test:"},
	}
}

func TestLLMConfig_Overrides(t *testing.T) {
	lc := llmConfig(config.LLMConfig{
		Provider:        "openai",
		SummaryModel:    "gpt-4o-mini",
		GenerationModel: "gpt-4.1",
		Temperature:     0.4,
		BaseURL:         "http://proxy",
	})

	assert.Equal(t, llm.ProviderOpenAI, lc.Provider)
	assert.Equal(t, "gpt-4o-mini", lc.GetModel(llm.TierStandard))
	assert.Equal(t, "gpt-4.1", lc.GetModel(llm.TierAdvanced))
	assert.InDelta(t, 0.4, lc.Temperature, 0.001)
	assert.Equal(t, "http://proxy", lc.BaseURL)
}

func TestLLMConfig_ProviderDefaults(t *testing.T) {
	lc := llmConfig(config.LLMConfig{Provider: "openai"})
	assert.Equal(t, "gpt-4o", lc.GetModel(llm.TierStandard))
	assert.Equal(t, "gpt-4o-2024-08-06", lc.GetModel(llm.TierAdvanced))

	lc = llmConfig(config.LLMConfig{Provider: "gemini"})
	assert.Equal(t, llm.ProviderGemini, lc.Provider)
}

func TestNewSources_Modes(t *testing.T) {
	logger := slog.Default()

	cfg := testConfig()
	website, profile := newSources(cfg, nil, logger)
	assert.IsType(t, &fetch.ScraperSource{}, website)
	assert.IsType(t, &fetch.LinkedInSource{}, profile)

	cfg.RapidAPI.WebsiteMode = fetch.ModeDirect
	website, _ = newSources(cfg, nil, logger)
	direct, ok := website.(*fetch.DirectSource)
	require.True(t, ok)
	assert.Nil(t, direct.Render)

	cfg.RapidAPI.BrowserFallback = true
	website, _ = newSources(cfg, nil, logger)
	assert.NotNil(t, website.(*fetch.DirectSource).Render)

	cfg.RapidAPI.WebsiteMode = fetch.ModeBrowser
	website, _ = newSources(cfg, nil, logger)
	assert.IsType(t, &fetch.BrowserSource{}, website)
}

func TestNewSources_NoKeyDisablesProfile(t *testing.T) {
	cfg := testConfig()
	cfg.RapidAPI.Key = ""
	cfg.RapidAPI.WebsiteMode = fetch.ModeDirect

	_, profile := newSources(cfg, nil, slog.Default())
	assert.Nil(t, profile)
}

func TestNewSources_CacheWrapsSources(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = true
	rc := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = rc.Close() })

	website, profile := newSources(cfg, rc, slog.Default())
	assert.IsType(t, &fetch.CachedWebsite{}, website)
	assert.IsType(t, &fetch.CachedProfile{}, profile)
}

func TestNeedsRedis(t *testing.T) {
	cfg := testConfig()
	assert.False(t, needsRedis(cfg))

	cfg.Cache.Enabled = true
	assert.True(t, needsRedis(cfg))

	cfg.Cache.Enabled = false
	cfg.Queue.Driver = config.DriverRedis
	assert.True(t, needsRedis(cfg))
}

func TestNewTransport_Redis(t *testing.T) {
	cfg := testConfig()
	cfg.Queue.Driver = config.DriverRedis

	_, err := newTransport(cfg, nil, slog.Default())
	require.Error(t, err)

	rc := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = rc.Close() })
	tr, err := newTransport(cfg, rc, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &queue.Redis{}, tr)
}

func TestNewTransport_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Queue.Driver = "kafka"

	_, err := newTransport(cfg, nil, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")
}

func TestReadPayload_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	body := `{"userId":"u1","campaignId":"c1","emailData":[{"company_id":"o1","people":[{"id":"p1"}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	raw, job, err := readPayload(path, nil)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
	assert.Equal(t, "u1", job.UserID)
	assert.Equal(t, "c1", job.CampaignID)
	require.Len(t, job.EmailData, 1)
}

func TestReadPayload_Stdin(t *testing.T) {
	raw, job, err := readPayload("-", strings.NewReader(`{"userId":"u2","emailData":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "u2", job.UserID)
	assert.NotEmpty(t, raw)
}

func TestReadPayload_Errors(t *testing.T) {
	_, _, err := readPayload(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read payload")

	_, _, err = readPayload("-", strings.NewReader("{nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid job")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"worker", "publish", "register", "migrate", "inspect"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
