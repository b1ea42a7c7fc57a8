// Package config loads settings from environment variables. The CLI loads
// .env beforehand via godotenv; everything here reads plain env vars with
// defaults and is passed explicitly into constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string
	FirecrawlAPIKey string

	DefaultModel   string
	AnthropicModel string

	LogLevel string
	LogFile  string

	MaxTranscriptLength int
	MaxPDFPages         int
	PromptsPath         string

	YtdlpPath  string
	MarkerPath string

	FirecrawlBaseURL      string
	FirecrawlAllowedHosts []string
}

// Load reads the full configuration from the environment.
func Load() Config {
	return Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		FirecrawlAPIKey: os.Getenv("FIRECRAWL_API_KEY"),

		DefaultModel:   getenvDefault("DEFAULT_MODEL", "gpt-4o-mini"),
		AnthropicModel: getenvDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),

		LogLevel: strings.ToUpper(getenvDefault("LOG_LEVEL", "INFO")),
		LogFile:  os.Getenv("LOG_FILE"),

		MaxTranscriptLength: getenvInt("MAX_TRANSCRIPT_LENGTH", 50000),
		MaxPDFPages:         getenvInt("MAX_PDF_PAGES", 0),
		PromptsPath:         getenvDefault("PROMPTS_PATH", "./prompts"),

		YtdlpPath:  getenvDefault("YTDLP_PATH", "yt-dlp"),
		MarkerPath: getenvDefault("MARKER_PATH", "marker"),

		FirecrawlBaseURL:      getenvDefault("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
		FirecrawlAllowedHosts: splitList(os.Getenv("FIRECRAWL_ALLOWED_HOSTS")),
	}
}

// Validate checks values every command depends on. Per-command requirements
// (a specific API key) are checked where the command wires its adapters.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if c.MaxTranscriptLength < 0 {
		return fmt.Errorf("MAX_TRANSCRIPT_LENGTH must be >= 0")
	}
	if c.MaxPDFPages < 0 {
		return fmt.Errorf("MAX_PDF_PAGES must be >= 0")
	}
	return nil
}

// HasSummarizer reports whether any LLM provider is configured.
func (c Config) HasSummarizer() bool {
	return c.OpenAIAPIKey != "" || c.AnthropicAPIKey != ""
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
