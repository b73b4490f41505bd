package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// WebsiteSource retrieves readable text for a company website.
type WebsiteSource interface {
	FetchWebsite(ctx context.Context, url string) (string, error)
}

// ProfileSource retrieves structured profile data for a professional-profile URL.
// A nil result with a nil error means the profile exists but carried no data.
type ProfileSource interface {
	FetchProfile(ctx context.Context, url string) (json.RawMessage, error)
}

// Website source modes.
const (
	ModeScraper = "scraper"
	ModeDirect  = "direct"
	ModeBrowser = "browser"
)

// DirectSource fetches a page over plain HTTP and extracts its main text.
// When Render is set and the extracted text is too short, the page is
// rendered in a browser and extracted again.
type DirectSource struct {
	Options *Options
	Render  RenderFunc
	Logger  *slog.Logger
}

// FetchWebsite implements WebsiteSource.
func (s *DirectSource) FetchWebsite(ctx context.Context, url string) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result, err := URL(ctx, url, s.Options)
	if err != nil {
		return "", tagSource(err, ModeDirect)
	}

	text, err := ExtractMainText(result.HTML, DefaultTextSelectors())
	if err != nil {
		return "", &Error{URL: url, Source: ModeDirect, Message: "failed to extract text", Cause: err}
	}

	if s.Render == nil || !ShouldUseBrowser(text) {
		return text, nil
	}

	logger.Info("page text too short, falling back to browser", "url", url, "chars", len(text))
	rendered, err := s.Render(ctx, url)
	if err != nil {
		// Keep what plain HTTP gave us.
		logger.Warn("browser fallback failed", "url", url, "error", err)
		return text, nil
	}
	renderedText, err := ExtractMainText(rendered, DefaultTextSelectors())
	if err != nil || len(renderedText) <= len(text) {
		return text, nil
	}
	return renderedText, nil
}

// BrowserSource always renders the page before extracting its text.
type BrowserSource struct {
	Render RenderFunc
}

// FetchWebsite implements WebsiteSource.
func (s *BrowserSource) FetchWebsite(ctx context.Context, url string) (string, error) {
	if err := validateURL(url); err != nil {
		return "", tagSource(err, ModeBrowser)
	}

	html, err := s.Render(ctx, url)
	if err != nil {
		return "", &Error{URL: url, Source: ModeBrowser, Message: "render failed", Cause: err}
	}

	text, err := ExtractMainText(html, DefaultTextSelectors())
	if err != nil {
		return "", &Error{URL: url, Source: ModeBrowser, Message: "failed to extract text", Cause: err}
	}
	return text, nil
}

func tagSource(err error, source string) error {
	var fe *Error
	if errors.As(err, &fe) && fe.Source == "" {
		fe.Source = source
	}
	return err
}
