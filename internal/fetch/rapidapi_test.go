package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScraperSource_FetchWebsite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, r.Host, r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://acme.example", body["url"])

		_, _ = w.Write([]byte(`{"content": "Acme builds anvils."}`))
	}))
	defer server.Close()

	src := NewScraperSource(RapidAPIOptions{Key: "secret", BaseURL: server.URL + "/"})
	text, err := src.FetchWebsite(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "Acme builds anvils.", text)
}

func TestScraperSource_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewScraperSource(RapidAPIOptions{Key: "k", BaseURL: server.URL})
	_, err := src.FetchWebsite(context.Background(), "https://acme.example")

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, ModeScraper, fetchErr.Source)
	assert.Equal(t, "https://acme.example", fetchErr.URL)
	assert.Contains(t, err.Error(), "429")
}

func TestLinkedInSource_FetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/get-profile-data-by-url", r.URL.Path)
		assert.Equal(t, "https://www.linkedin.com/in/jane", r.URL.Query().Get("url"))
		_, _ = w.Write([]byte(`{"success": true, "response": {"firstName": "Jane", "headline": "CTO"}}`))
	}))
	defer server.Close()

	src := NewLinkedInSource(RapidAPIOptions{Key: "k", BaseURL: server.URL})
	data, err := src.FetchProfile(context.Background(), "https://www.linkedin.com/in/jane")
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName": "Jane", "headline": "CTO"}`, string(data))
}

func TestLinkedInSource_NullResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response": null}`))
	}))
	defer server.Close()

	src := NewLinkedInSource(RapidAPIOptions{Key: "k", BaseURL: server.URL})
	data, err := src.FetchProfile(context.Background(), "https://www.linkedin.com/in/nobody")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLinkedInSource_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	src := NewLinkedInSource(RapidAPIOptions{Key: "k", BaseURL: server.URL})
	_, err := src.FetchProfile(context.Background(), "https://www.linkedin.com/in/jane")

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "decode")
}
