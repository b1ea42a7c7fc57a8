package firecrawl

import (
	"fmt"
	"net/url"
	"strings"
)

// Self-hosted Firecrawl deployments point FIRECRAWL_BASE_URL somewhere else.
// Because every request carries the API key in a header, the target is
// validated against an allowlist before any request is built.

const defaultBaseURL = "https://api.firecrawl.dev"

var defaultAllowedHosts = map[string]struct{}{
	"api.firecrawl.dev": {},
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL rejects anything other than a clean absolute https URL
// whose host is allowlisted. An empty allowedHosts falls back to the
// official API host.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid FIRECRAWL_BASE_URL: %w", err)
	}

	reject := func(reason string) error {
		return fmt.Errorf("invalid FIRECRAWL_BASE_URL %q: %s", baseURL, reason)
	}
	switch {
	case !u.IsAbs() || u.Host == "":
		return reject("absolute URL with host is required")
	case !strings.EqualFold(u.Scheme, "https"):
		return reject("https is required")
	case u.User != nil:
		return reject("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "":
		return reject("query and fragment are not allowed")
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := allowedHostSet(allowedHosts)[host]; !ok {
		return reject(fmt.Sprintf("host %q is not in FIRECRAWL_ALLOWED_HOSTS", host))
	}
	return nil
}

// allowedHostSet lowercases and strips scheme, slashes and port from each
// configured entry. Entries that normalize to nothing are ignored; an
// effectively empty list means the default host set.
func allowedHostSet(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "https://")
		v = strings.TrimPrefix(v, "http://")
		v = strings.Trim(v, "/")
		if i := strings.IndexByte(v, ':'); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out[v] = struct{}{}
		}
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
