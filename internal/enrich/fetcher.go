// Package enrich gathers the external data a target is summarized from.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/leadgpt/emailgend/internal/fetch"
	"github.com/leadgpt/emailgend/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultSourceTimeout bounds a single source retrieval.
const DefaultSourceTimeout = 45 * time.Second

// Result is the raw enrichment for one target. Either field may be empty.
type Result struct {
	WebsiteContent string
	ProfileData    json.RawMessage
}

// Empty reports whether neither source produced anything.
func (r Result) Empty() bool {
	return r.WebsiteContent == "" && len(r.ProfileData) == 0
}

// Options configures a Fetcher.
type Options struct {
	// Website and Profile may be nil to disable that source.
	Website fetch.WebsiteSource
	Profile fetch.ProfileSource
	// Timeout applies to each source independently.
	Timeout          time.Duration
	Truncator        *Truncator
	MaxWebsiteTokens int
	Logger           *slog.Logger
}

// Fetcher retrieves website and profile data for a target concurrently.
type Fetcher struct {
	website   fetch.WebsiteSource
	profile   fetch.ProfileSource
	timeout   time.Duration
	truncator *Truncator
	maxTokens int
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		website:   opts.Website,
		profile:   opts.Profile,
		timeout:   timeout,
		truncator: opts.Truncator,
		maxTokens: opts.MaxWebsiteTokens,
		logger:    logger,
	}
}

// Fetch retrieves whatever references the target carries. A failed source is
// logged and left empty; Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, target types.Target) Result {
	var (
		result Result
		g      errgroup.Group
	)
	logger := f.logger.With("target_id", target.ID)

	if target.WebsiteURL != "" && f.website != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			text, err := f.website.FetchWebsite(sctx, target.WebsiteURL)
			if err != nil {
				logFetchError(logger, "website", target.WebsiteURL, err)
				return nil
			}
			result.WebsiteContent = f.truncator.Truncate(text, f.maxTokens)
			return nil
		})
	}

	if target.LinkedInURL != "" && f.profile != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			data, err := f.profile.FetchProfile(sctx, target.LinkedInURL)
			if err != nil {
				logFetchError(logger, "profile", target.LinkedInURL, err)
				return nil
			}
			result.ProfileData = data
			return nil
		})
	}

	_ = g.Wait()

	logger.Debug("enrichment fetched",
		"website_chars", len(result.WebsiteContent),
		"profile_bytes", len(result.ProfileData))
	return result
}

func logFetchError(logger *slog.Logger, source, url string, err error) {
	attrs := []any{"source", source, "url", url, "error", err}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		attrs = append(attrs, "reason", fetchErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		attrs = append(attrs, "timeout", true)
	}
	logger.Warn("enrichment source failed", attrs...)
}
