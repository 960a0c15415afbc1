package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{APIKey: "fc-test", BaseURL: srv.URL, Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"docs.google.com/forms/d/abc": "https://docs.google.com/forms/d/abc",
		"  https://forms.gle/xyz  ":   "https://forms.gle/xyz",
		"http://example.com/form":     "http://example.com/form",
		"HTTPS://EXAMPLE.COM":         "HTTPS://EXAMPLE.COM",
		"":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), in)
	}
}

func TestTitleFromHTML(t *testing.T) {
	assert.Equal(t, "Kuis IPA", TitleFromHTML(`<html><head><title> Kuis IPA </title></head></html>`))
	assert.Equal(t, "Ulangan", TitleFromHTML(`<head><meta property="og:title" content="Ulangan"><title>Other</title></head>`))
	assert.Equal(t, "", TitleFromHTML(""))
	assert.Equal(t, "", TitleFromHTML("<p>no title</p>"))
}

func TestFetch_NotConfigured(t *testing.T) {
	c := New(Options{}, zerolog.Nop())
	_, err := c.Fetch(context.Background(), "forms.gle/x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetch_Success(t *testing.T) {
	var got scrapeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"# Kuis\n","html":"<title>T</title>","metadata":{"title":"Kuis Sejarah"}}}`))
	})

	page, err := c.Fetch(context.Background(), "docs.google.com/forms/d/abc")
	require.NoError(t, err)

	assert.Equal(t, "https://docs.google.com/forms/d/abc", got.URL)
	assert.Equal(t, []string{"markdown", "html"}, got.Formats)
	assert.True(t, got.OnlyMainContent)
	assert.Equal(t, int64(3000), got.WaitFor)

	assert.Equal(t, "# Kuis\n", page.Markdown)
	assert.Equal(t, "Kuis Sejarah", page.Title)
	assert.Equal(t, "https://docs.google.com/forms/d/abc", page.URL)
}

func TestFetch_TitleFallbacks(t *testing.T) {
	body := `{"success":true,"data":{"markdown":"x","html":"<html><head><title>Dari HTML</title></head></html>"}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	page, err := c.Fetch(context.Background(), "https://forms.gle/a")
	require.NoError(t, err)
	assert.Equal(t, "Dari HTML", page.Title)

	body = `{"success":true,"markdown":"legacy"}`
	page, err = c.Fetch(context.Background(), "https://forms.gle/a")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, page.Title)
	assert.Equal(t, "legacy", page.Markdown)
}

func TestFetch_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"success":false,"error":"Insufficient credits"}`))
	})

	_, err := c.Fetch(context.Background(), "https://forms.gle/a")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	assert.Equal(t, "Insufficient credits", apiErr.Message)
}
