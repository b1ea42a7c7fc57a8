package ports

import (
	"context"
	"errors"

	"mdnotes/internal/types"
)

// Transcript error taxonomy. Adapters map their backend's failure output to
// these sentinels so callers can branch with errors.Is without knowing the
// backend.
var (
	// ErrNoTranscript means no transcript exists in the requested languages,
	// or the captions produced zero usable segments.
	ErrNoTranscript = errors.New("no transcript found")

	// ErrTranscriptsDisabled means the video owner disabled captions.
	ErrTranscriptsDisabled = errors.New("transcripts disabled")

	// ErrVideoUnavailable means the video is private, deleted or blocked.
	ErrVideoUnavailable = errors.New("video unavailable")
)

// TranscriptSource fetches captions and metadata for a video.
type TranscriptSource interface {
	// VideoID resolves a watch URL, short URL, embed URL or bare ID to the
	// 11-character video ID.
	VideoID(ctx context.Context, urlOrID string) (string, error)

	// Captions downloads the caption track and returns the raw WebVTT text.
	// languages is an ordered preference list; autoGenerated allows
	// auto-generated tracks when no manual one exists.
	Captions(ctx context.Context, videoID string, languages []string, autoGenerated bool) (string, error)

	// Info fetches basic video metadata. Implementations degrade to a
	// bare VideoInfo{VideoID: id} when metadata cannot be fetched.
	Info(ctx context.Context, videoID string) (types.VideoInfo, error)
}

// PDFResult is the output of one conversion backend.
type PDFResult struct {
	Markdown   string
	Method     string
	Pages      int
	TotalPages int
	Title      string
	Author     string
}

// PDFConverter turns a local PDF file into Markdown.
type PDFConverter interface {
	Convert(ctx context.Context, pdfPath string, maxPages int) (PDFResult, error)
}

// Downloader fetches a remote document to a local temp file and returns its
// path. The caller owns the file and removes it when done.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// ScrapeOptions tune a single scrape request.
type ScrapeOptions struct {
	Formats         []string // "markdown", "html", "links"; defaults to markdown
	OnlyMainContent bool
	IncludeLinks    bool
	WaitForMillis   int
	TimeoutSeconds  int
}

// Scraper fetches a web page as Markdown through a scraping backend.
type Scraper interface {
	Scrape(ctx context.Context, url string, opts ScrapeOptions) (types.ScrapedPage, error)
}

// Summarizer produces a summary from prepared system and user prompts.
type Summarizer interface {
	Summarize(ctx context.Context, system, prompt string) (string, error)

	// Name identifies the provider ("openai", "anthropic") for note
	// frontmatter and logs.
	Name() string
}
