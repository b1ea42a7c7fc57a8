// Package pipeline wires adapters to the use cases, one entry point per
// command, and handles note rendering and output placement.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdnotes/internal/config"
	"mdnotes/internal/domain/summary"
	"mdnotes/internal/note"
	"mdnotes/internal/ports"
	"mdnotes/internal/ports/adapters/anthropicllm"
	"mdnotes/internal/ports/adapters/firecrawl"
	"mdnotes/internal/ports/adapters/httpdl"
	"mdnotes/internal/ports/adapters/marker"
	"mdnotes/internal/ports/adapters/openaillm"
	"mdnotes/internal/ports/adapters/pdfnative"
	"mdnotes/internal/ports/adapters/ytdlp"
	"mdnotes/internal/types"
	"mdnotes/internal/usecase"
)

// TranscriptConfig drives the transcript command.
type TranscriptConfig struct {
	URLOrID       string
	Languages     []string
	AutoGenerated bool
	Format        string // "text", "timed", "json" or "note"
	OutputPath    string

	Cfg  config.Config
	Logf func(format string, args ...any)
}

func (c TranscriptConfig) Validate() error {
	if strings.TrimSpace(c.URLOrID) == "" {
		return errors.New("video URL or ID is required")
	}
	switch c.Format {
	case "text", "timed", "json", "note":
	default:
		return fmt.Errorf("unknown format %q (valid: text, timed, json, note)", c.Format)
	}
	return c.Cfg.Validate()
}

func RunTranscript(ctx context.Context, cfg TranscriptConfig) error {
	logf := ensureLogf(cfg.Logf)
	uc := usecase.New(usecase.Deps{
		Source: ytdlp.New(cfg.Cfg.YtdlpPath),
		Logf:   logf,
	})

	res, err := uc.Transcript(ctx, usecase.TranscriptInput{
		URLOrID:       cfg.URLOrID,
		Languages:     cfg.Languages,
		AutoGenerated: cfg.AutoGenerated,
	})
	if err != nil {
		return err
	}

	var content string
	switch cfg.Format {
	case "text":
		content = res.Transcript.PlainText()
	case "timed":
		content = res.Transcript.TimedText()
	case "json":
		b, err := json.MarshalIndent(res.Transcript, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal transcript: %w", err)
		}
		content = string(b)
	case "note":
		content, err = transcriptNote(res)
		if err != nil {
			return err
		}
	}

	title := res.Info.Title
	if title == "" {
		title = "transcript"
	}
	return writeOutput(cfg.OutputPath, content, note.SuggestedFilename(title, "transcript", res.Info.VideoID), logf)
}

func transcriptNote(res usecase.TranscriptResult) (string, error) {
	info := res.Info
	title := info.Title
	if title == "" {
		title = "YouTube Transcript " + info.VideoID
	}
	fm := note.Frontmatter{
		Title:     title,
		Source:    "youtube",
		Channel:   info.Channel,
		URL:       "https://youtube.com/watch?v=" + info.VideoID,
		VideoID:   info.VideoID,
		Date:      time.Now().UTC().Format("2006-01-02"),
		Tags:      note.TagsFromTitle(info.Title),
		WordCount: len(strings.Fields(res.Transcript.PlainText())),
	}
	body := "# " + title + "\n\n" + res.Transcript.TimedText() + "\n"
	return note.Render(fm, body)
}

// PDFConfig drives the pdf command.
type PDFConfig struct {
	Source     string // local path or URL
	MaxPages   int
	Method     string // "auto", "native" or "marker"
	OutputPath string

	Cfg  config.Config
	Logf func(format string, args ...any)
}

func (c PDFConfig) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("pdf file or URL is required")
	}
	if c.MaxPages < 0 {
		return errors.New("max pages must be >= 0")
	}
	return c.Cfg.Validate()
}

func RunPDF(ctx context.Context, cfg PDFConfig) error {
	logf := ensureLogf(cfg.Logf)
	uc := usecase.New(usecase.Deps{
		PDFNative:  pdfnative.New(),
		PDFMarker:  marker.New(cfg.Cfg.MarkerPath),
		Downloader: httpdl.New(),
		Logf:       logf,
	})

	maxPages := cfg.MaxPages
	if maxPages == 0 {
		maxPages = cfg.Cfg.MaxPDFPages
	}
	res, err := uc.ConvertPDF(ctx, usecase.PDFInput{
		Source:   cfg.Source,
		MaxPages: maxPages,
		Method:   cfg.Method,
	})
	if err != nil {
		return err
	}
	logf("converted %d pages via %s (%d words)", res.Pages, res.Method, res.WordCount)

	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(res.Source), filepath.Ext(res.Source))
	}
	fm := note.Frontmatter{
		Title:     title,
		Source:    "pdf",
		Date:      res.ConvertedAt.Format("2006-01-02"),
		Tags:      note.TagsFromTitle(title),
		WordCount: res.WordCount,
		Pages:     res.Pages,
		Method:    res.Method,
	}
	if res.Author != "" {
		fm.Authors = []string{res.Author}
	}
	if res.SourceType != "file" {
		fm.URL = res.Source
	}
	content, err := note.Render(fm, res.Markdown)
	if err != nil {
		return err
	}
	return writeOutput(cfg.OutputPath, content, note.SuggestedFilename(title, "pdf", "document"), logf)
}

// ScrapeConfig drives the scrape command.
type ScrapeConfig struct {
	URL          string
	Format       string // "markdown", "html" or "note"
	IncludeLinks bool
	OutputPath   string

	Cfg  config.Config
	Logf func(format string, args ...any)
}

func (c ScrapeConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("url is required")
	}
	switch c.Format {
	case "markdown", "html", "note":
	default:
		return fmt.Errorf("unknown format %q (valid: markdown, html, note)", c.Format)
	}
	if c.Cfg.FirecrawlAPIKey == "" {
		return errors.New("FIRECRAWL_API_KEY is required (set it in .env)")
	}
	if err := firecrawl.ValidateBaseURL(c.Cfg.FirecrawlBaseURL, c.Cfg.FirecrawlAllowedHosts); err != nil {
		return err
	}
	return c.Cfg.Validate()
}

func RunScrape(ctx context.Context, cfg ScrapeConfig) error {
	logf := ensureLogf(cfg.Logf)
	uc := usecase.New(usecase.Deps{
		Scraper: firecrawl.New(cfg.Cfg.FirecrawlAPIKey, cfg.Cfg.FirecrawlBaseURL),
		Logf:    logf,
	})

	opts := ports.ScrapeOptions{
		OnlyMainContent: true,
		IncludeLinks:    cfg.IncludeLinks,
	}
	if cfg.Format == "html" {
		opts.Formats = []string{"markdown", "html"}
	}
	page, err := uc.Scrape(ctx, usecase.ScrapeInput{URL: cfg.URL, Opts: opts})
	if err != nil {
		return err
	}
	logf("scraped %s (%d words)", page.URL, page.WordCount)

	var content string
	switch cfg.Format {
	case "markdown":
		content = page.Markdown
	case "html":
		content = page.HTML
	case "note":
		content, err = scrapeNote(page)
		if err != nil {
			return err
		}
	}

	title := page.Title
	if title == "" {
		title = "scraped-page"
	}
	return writeOutput(cfg.OutputPath, content, note.SuggestedFilename(title, "web", "page"), logf)
}

func scrapeNote(page types.ScrapedPage) (string, error) {
	title := page.Title
	if title == "" {
		title = page.URL
	}
	fm := note.Frontmatter{
		Title:       title,
		Source:      "web",
		URL:         page.URL,
		Date:        page.ScrapedAt.Format("2006-01-02"),
		Tags:        note.TagsFromTitle(page.Title),
		Description: page.Description,
		WordCount:   page.WordCount,
	}
	body := page.Markdown
	if len(page.Links) > 0 {
		var b strings.Builder
		b.WriteString(body)
		b.WriteString("\n\n## Links\n\n")
		for _, l := range page.Links {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		body = b.String()
	}
	return note.Render(fm, body)
}

// SummarizeConfig drives the summarize command. Source is a YouTube URL/ID
// or a local text file.
type SummarizeConfig struct {
	Source     string
	Style      string
	Provider   string // "", "openai" or "anthropic"
	Languages  []string
	Format     string // "note" or "text"
	OutputPath string

	Cfg  config.Config
	Logf func(format string, args ...any)
}

func (c SummarizeConfig) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("source is required")
	}
	if _, err := summary.ParseStyle(c.Style); err != nil {
		return err
	}
	switch c.Format {
	case "note", "text":
	default:
		return fmt.Errorf("unknown format %q (valid: note, text)", c.Format)
	}
	switch c.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (valid: openai, anthropic)", c.Provider)
	}
	if !c.Cfg.HasSummarizer() {
		return errors.New("OPENAI_API_KEY or ANTHROPIC_API_KEY is required (set one in .env)")
	}
	return c.Cfg.Validate()
}

func RunSummarize(ctx context.Context, cfg SummarizeConfig) error {
	logf := ensureLogf(cfg.Logf)
	style, err := summary.ParseStyle(cfg.Style)
	if err != nil {
		return err
	}
	llm, err := newSummarizer(cfg.Cfg, cfg.Provider)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Deps{
		Source: ytdlp.New(cfg.Cfg.YtdlpPath),
		LLM:    llm,
		Logf:   logf,
	})

	text, title, sourceURL, err := resolveSummarySource(ctx, uc, cfg)
	if err != nil {
		return err
	}

	res, err := uc.Summarize(ctx, usecase.SummarizeInput{
		Text:       text,
		Style:      style,
		PromptsDir: cfg.Cfg.PromptsPath,
		MaxChars:   cfg.Cfg.MaxTranscriptLength,
	})
	if err != nil {
		return err
	}

	var content string
	if cfg.Format == "text" {
		content = res.Summary
	} else {
		fm := note.Frontmatter{
			Title:    "Summary: " + title,
			Source:   "summary",
			URL:      sourceURL,
			Date:     time.Now().UTC().Format("2006-01-02"),
			Tags:     note.TagsFromTitle(title),
			Style:    string(res.Style),
			Provider: res.Provider,
		}
		content, err = note.Render(fm, "# Summary: "+title+"\n\n"+res.Summary+"\n")
		if err != nil {
			return err
		}
	}
	return writeOutput(cfg.OutputPath, content, note.SuggestedFilename(title, "summary", "summary"), logf)
}

// resolveSummarySource reads a local text file directly; anything else is
// treated as a YouTube reference and goes through the transcript flow.
func resolveSummarySource(ctx context.Context, uc usecase.Usecase, cfg SummarizeConfig) (text, title, sourceURL string, err error) {
	if st, statErr := os.Stat(cfg.Source); statErr == nil && !st.IsDir() {
		b, readErr := os.ReadFile(cfg.Source)
		if readErr != nil {
			return "", "", "", fmt.Errorf("read source file: %w", readErr)
		}
		name := strings.TrimSuffix(filepath.Base(cfg.Source), filepath.Ext(cfg.Source))
		return string(b), name, "", nil
	}

	res, err := uc.Transcript(ctx, usecase.TranscriptInput{
		URLOrID:       cfg.Source,
		Languages:     cfg.Languages,
		AutoGenerated: true,
	})
	if err != nil {
		return "", "", "", err
	}
	title = res.Info.Title
	if title == "" {
		title = res.Info.VideoID
	}
	return res.Transcript.PlainText(), title, "https://youtube.com/watch?v=" + res.Info.VideoID, nil
}

// newSummarizer picks the provider: explicit choice first, then OpenAI when
// its key is set, then Anthropic.
func newSummarizer(cfg config.Config, provider string) (ports.Summarizer, error) {
	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for provider openai")
		}
		return openaillm.New(cfg.OpenAIAPIKey, cfg.DefaultModel), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required for provider anthropic")
		}
		return anthropicllm.New(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case "":
		if cfg.OpenAIAPIKey != "" {
			return openaillm.New(cfg.OpenAIAPIKey, cfg.DefaultModel), nil
		}
		if cfg.AnthropicAPIKey != "" {
			return anthropicllm.New(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
		}
		return nil, errors.New("no summarization provider configured")
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: openai, anthropic)", provider)
	}
}

// writeOutput prints to stdout when path is empty. A path ending in a
// separator or naming an existing directory gets the suggested filename
// appended; parent directories are created as needed.
func writeOutput(path, content, suggested string, logf func(format string, args ...any)) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		path = filepath.Join(path, suggested)
	} else if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, suggested)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logf("wrote %s", path)
	return nil
}

func ensureLogf(logf func(format string, args ...any)) func(format string, args ...any) {
	if logf == nil {
		return func(string, ...any) {}
	}
	return logf
}
