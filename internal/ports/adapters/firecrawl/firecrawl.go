// Package firecrawl talks to the Firecrawl scrape API over plain HTTP.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mdnotes/internal/ports"
	"mdnotes/internal/types"
)

const requestTimeout = 90 * time.Second

type Adapter struct {
	key     string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string) *Adapter {
	return &Adapter{
		key:     apiKey,
		baseURL: normalizeBaseURL(baseURL),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor,omitempty"`
	Timeout         int      `json:"timeout,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string   `json:"markdown"`
		HTML     string   `json:"html"`
		Links    []string `json:"links"`
		Metadata struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			StatusCode  int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

func (a *Adapter) Scrape(ctx context.Context, pageURL string, opts ports.ScrapeOptions) (types.ScrapedPage, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{"markdown"}
	}
	if opts.IncludeLinks && !contains(formats, "links") {
		formats = append(formats, "links")
	}

	payload := scrapeRequest{
		URL:             pageURL,
		Formats:         formats,
		OnlyMainContent: opts.OnlyMainContent,
		WaitFor:         opts.WaitForMillis,
	}
	if opts.TimeoutSeconds > 0 {
		payload.Timeout = opts.TimeoutSeconds * 1000
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return types.ScrapedPage{}, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", a.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return types.ScrapedPage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return types.ScrapedPage{}, fmt.Errorf("firecrawl timeout after %s scraping %s", requestTimeout, pageURL)
		}
		return types.ScrapedPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return types.ScrapedPage{}, fmt.Errorf("firecrawl status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return types.ScrapedPage{}, fmt.Errorf("firecrawl status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.ScrapedPage{}, fmt.Errorf("decode firecrawl response: %w", err)
	}
	if !raw.Success {
		msg := raw.Error
		if msg == "" {
			msg = "unknown error"
		}
		return types.ScrapedPage{}, fmt.Errorf("firecrawl scrape failed for %s: %s", pageURL, msg)
	}
	if strings.TrimSpace(raw.Data.Markdown) == "" && strings.TrimSpace(raw.Data.HTML) == "" {
		return types.ScrapedPage{}, fmt.Errorf("firecrawl returned empty content for %s", pageURL)
	}

	return types.ScrapedPage{
		URL:         pageURL,
		Markdown:    raw.Data.Markdown,
		HTML:        raw.Data.HTML,
		Links:       raw.Data.Links,
		Title:       raw.Data.Metadata.Title,
		Description: raw.Data.Metadata.Description,
		StatusCode:  raw.Data.Metadata.StatusCode,
	}, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}

var _ ports.Scraper = (*Adapter)(nil)
