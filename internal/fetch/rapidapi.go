package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default RapidAPI endpoints.
const (
	DefaultScraperBaseURL  = "https://ai-content-scraper.p.rapidapi.com"
	DefaultLinkedInBaseURL = "https://linkedin-data-api.p.rapidapi.com"
)

// RapidAPIOptions configures the RapidAPI-backed sources.
type RapidAPIOptions struct {
	Key     string
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

type rapidAPI struct {
	key     string
	baseURL string
	host    string
	client  *http.Client
}

func newRapidAPI(opts RapidAPIOptions, defaultBase string) rapidAPI {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBase
	}
	host := ""
	if u, err := url.Parse(base); err == nil {
		host = u.Host
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return rapidAPI{key: opts.Key, baseURL: base, host: host, client: client}
}

func (r rapidAPI) do(req *http.Request, source, target string, out any) error {
	req.Header.Set("x-rapidapi-host", r.host)
	req.Header.Set("x-rapidapi-key", r.key)

	resp, err := r.client.Do(req)
	if err != nil {
		return &Error{URL: target, Source: source, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{URL: target, Source: source, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{URL: target, Source: source, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: target, Source: source, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// ScraperSource uses the RapidAPI AI content scraper to turn a website into text.
type ScraperSource struct {
	api rapidAPI
}

// NewScraperSource creates a ScraperSource.
func NewScraperSource(opts RapidAPIOptions) *ScraperSource {
	return &ScraperSource{api: newRapidAPI(opts, DefaultScraperBaseURL)}
}

// FetchWebsite implements WebsiteSource.
func (s *ScraperSource) FetchWebsite(ctx context.Context, target string) (string, error) {
	payload, err := json.Marshal(map[string]string{"url": target})
	if err != nil {
		return "", &Error{URL: target, Source: ModeScraper, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.api.baseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{URL: target, Source: ModeScraper, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Content string `json:"content"`
	}
	if err := s.api.do(req, ModeScraper, target, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// LinkedInSource looks up profile data through the RapidAPI LinkedIn data API.
type LinkedInSource struct {
	api rapidAPI
}

// NewLinkedInSource creates a LinkedInSource.
func NewLinkedInSource(opts RapidAPIOptions) *LinkedInSource {
	return &LinkedInSource{api: newRapidAPI(opts, DefaultLinkedInBaseURL)}
}

// FetchProfile implements ProfileSource.
func (s *LinkedInSource) FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error) {
	endpoint := s.api.baseURL + "/get-profile-data-by-url?url=" + url.QueryEscape(profileURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{URL: profileURL, Source: "linkedin", Message: "failed to create request", Cause: err}
	}

	var out struct {
		Response json.RawMessage `json:"response"`
	}
	if err := s.api.do(req, "linkedin", profileURL, &out); err != nil {
		return nil, err
	}
	if len(out.Response) == 0 || string(out.Response) == "null" {
		return nil, nil
	}
	return out.Response, nil
}
