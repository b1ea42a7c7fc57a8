// Package urlutil validates and normalizes the URLs accepted by the ingest
// commands.
package urlutil

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Normalize trims the input, prepends https:// when no scheme is present
// and verifies the result parses to an absolute URL with a host.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("invalid url: empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: no domain found", raw)
	}
	return raw, nil
}

// FixArxivPDF appends the .pdf suffix arXiv omits from its /pdf/ links.
func FixArxivPDF(u string) string {
	if strings.Contains(u, "arxiv.org/pdf/") && !strings.HasSuffix(u, ".pdf") {
		return u + ".pdf"
	}
	return u
}

// SourceType classifies a PDF source as "file", "arxiv" or "url".
func SourceType(source string) string {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return "file"
	}
	if strings.Contains(strings.ToLower(source), "arxiv.org/pdf/") {
		return "arxiv"
	}
	return "url"
}

// IsRemotePDF reports whether the URL serves a PDF, checking the
// Content-Type of a HEAD request first and falling back to the path suffix
// when the request fails or the server lies about the type.
func IsRemotePDF(ctx context.Context, client *http.Client, u string) bool {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		ct := strings.ToLower(resp.Header.Get("Content-Type"))
		if strings.Contains(ct, "application/pdf") {
			return true
		}
	}
	parsed, perr := url.Parse(u)
	if perr != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}
