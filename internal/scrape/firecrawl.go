// Package scrape fetches rendered form pages through the Firecrawl scrape API.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultTitle is reported when neither the scrape metadata nor the page
// markup carries a title.
const DefaultTitle = "Google Form"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("scraper not configured")

// APIError is a non-2xx reply from the scrape API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scrape api: status %d: %s", e.Status, e.Message)
}

// Page is the rendered content of one URL.
type Page struct {
	URL      string
	Markdown string
	HTML     string
	Title    string
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// WaitFor is how long the renderer waits for client-side scripts.
	WaitFor time.Duration
}

// Client calls the Firecrawl scrape endpoint.
type Client struct {
	http    *resty.Client
	apiKey  string
	waitFor time.Duration
	log     zerolog.Logger
}

// New creates a Client. An empty APIKey yields a client whose Fetch always
// returns ErrNotConfigured.
func New(opts Options, log zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.firecrawl.dev"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.WaitFor <= 0 {
		opts.WaitFor = 3 * time.Second
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:    hc,
		apiKey:  strings.TrimSpace(opts.APIKey),
		waitFor: opts.WaitFor,
		log:     log.With().Str("component", "scraper").Logger(),
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int64    `json:"waitFor"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
	// Older API versions reply without the data envelope.
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Fetch renders rawURL and returns its markdown and HTML. rawURL is
// normalised with NormalizeURL first.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if c.apiKey == "" {
		return Page{}, ErrNotConfigured
	}

	target := NormalizeURL(rawURL)
	var out scrapeResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(scrapeRequest{
			URL:             target,
			Formats:         []string{"markdown", "html"},
			OnlyMainContent: true,
			WaitFor:         c.waitFor.Milliseconds(),
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/scrape")
	if err != nil {
		return Page{}, fmt.Errorf("scrape %s: %w", target, err)
	}

	if resp.IsError() {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		c.log.Warn().Int("status", resp.StatusCode()).Str("url", target).Str("error", msg).Msg("Scrape API error")
		return Page{}, &APIError{Status: resp.StatusCode(), Message: msg}
	}

	page := Page{
		URL:      target,
		Markdown: firstNonEmpty(out.Data.Markdown, out.Markdown),
		HTML:     firstNonEmpty(out.Data.HTML, out.HTML),
	}
	page.Title = firstNonEmpty(strings.TrimSpace(out.Data.Metadata.Title), TitleFromHTML(page.HTML), DefaultTitle)

	c.log.Debug().
		Str("url", target).
		Int("markdown_len", len(page.Markdown)).
		Msg("Scraped page")

	return page, nil
}

// NormalizeURL trims rawURL and prefixes https:// when it has no scheme.
func NormalizeURL(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	lower := strings.ToLower(u)
	if u != "" && !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}

// TitleFromHTML returns the document title from markup, preferring the
// og:title meta tag over <title>. It returns "" when neither is present.
func TitleFromHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
