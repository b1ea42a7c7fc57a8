// Package usecase orchestrates the ingest flows behind the CLI commands.
// Adapters are injected through Deps; each remote step runs under its own
// retry policy.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"mdnotes/internal/domain/summary"
	"mdnotes/internal/domain/vtt"
	"mdnotes/internal/ports"
	"mdnotes/internal/retry"
	"mdnotes/internal/types"
	"mdnotes/internal/urlutil"
)

type Deps struct {
	Source     ports.TranscriptSource
	PDFNative  ports.PDFConverter
	PDFMarker  ports.PDFConverter
	Downloader ports.Downloader
	Scraper    ports.Scraper
	LLM        ports.Summarizer

	// HTTPClient serves the remote-PDF content-type sniff; nil means a
	// short-timeout default.
	HTTPClient *http.Client

	Logf func(format string, args ...any)

	// Policies defaults to DefaultPolicies when zero.
	Policies Policies
}

// Policies carries the per-operation retry budgets. Tests shrink the backoff
// bounds to keep runs fast.
type Policies struct {
	Transcript    retry.Policy
	Download      retry.Policy
	NativeConvert retry.Policy
	MarkerConvert retry.Policy
	Scrape        retry.Policy
}

func DefaultPolicies() Policies {
	return Policies{
		Transcript: retry.Policy{
			Attempts: 3,
			Backoff:  retry.Backoff{Min: 2 * time.Second, Max: 10 * time.Second},
		},
		Download: retry.Policy{
			Attempts: 3,
			Backoff:  retry.Backoff{Min: 2 * time.Second, Max: 10 * time.Second},
		},
		NativeConvert: retry.Policy{
			Attempts: 2,
			Backoff:  retry.Backoff{Min: 2 * time.Second, Max: 5 * time.Second},
		},
		MarkerConvert: retry.Policy{
			Attempts: 2,
			Backoff:  retry.Backoff{Min: 5 * time.Second, Max: 15 * time.Second},
		},
		Scrape: retry.Policy{
			Attempts: 3,
			Backoff:  retry.Backoff{Min: 5 * time.Second, Max: 30 * time.Second},
		},
	}
}

type Usecase struct {
	d        Deps
	policies Policies
	logf     func(format string, args ...any)
}

func New(d Deps) Usecase {
	logf := d.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	p := d.Policies
	if p == (Policies{}) {
		p = DefaultPolicies()
	}
	return Usecase{d: d, policies: p, logf: logf}
}

// transcriptClassifier retries network-shaped caption failures but never the
// definitive outcomes (missing, disabled, unavailable).
func transcriptClassifier(err error) bool {
	if errors.Is(err, ports.ErrNoTranscript) ||
		errors.Is(err, ports.ErrTranscriptsDisabled) ||
		errors.Is(err, ports.ErrVideoUnavailable) {
		return false
	}
	return retry.RetryExitErrors(retry.Keywords(retry.HTTPPermanent, retry.HTTPTransient))(err)
}

type TranscriptInput struct {
	URLOrID       string
	Languages     []string
	AutoGenerated bool
}

type TranscriptResult struct {
	Transcript types.Transcript
	Info       types.VideoInfo
}

// Transcript resolves the video, fetches its captions with retry and parses
// them. Parsing runs once per fetched payload; only the fetch is retried.
func (u Usecase) Transcript(ctx context.Context, in TranscriptInput) (TranscriptResult, error) {
	videoID, err := u.d.Source.VideoID(ctx, in.URLOrID)
	if err != nil {
		return TranscriptResult{}, err
	}
	u.logf("fetching transcript for video %s", videoID)

	raw, err := retry.Do(ctx, u.policies.Transcript, transcriptClassifier, u.logf,
		func(ctx context.Context) (string, error) {
			return u.d.Source.Captions(ctx, videoID, in.Languages, in.AutoGenerated)
		})
	if err != nil {
		return TranscriptResult{}, err
	}

	tr := vtt.Parse(raw)
	if len(tr.Segments) == 0 {
		return TranscriptResult{}, fmt.Errorf("captions for %s contain no usable cues: %w", videoID, ports.ErrNoTranscript)
	}
	// The parser emits whatever the source contains; timing invariants are
	// enforced here so bad cues never reach notes or JSON output.
	for i, s := range tr.Segments {
		if err := s.Validate(); err != nil {
			return TranscriptResult{}, fmt.Errorf("captions for %s: segment %d: %w", videoID, i, err)
		}
	}

	info, err := u.d.Source.Info(ctx, videoID)
	if err != nil {
		info = types.VideoInfo{VideoID: videoID}
	}
	u.logf("parsed %d segments (%d chars) for video %s", len(tr.Segments), tr.Chars(), videoID)
	return TranscriptResult{Transcript: tr, Info: info}, nil
}

type PDFInput struct {
	Source   string // local path or URL
	MaxPages int
	Method   string // "auto", "native" or "marker"
}

// ConvertPDF turns a local or remote PDF into Markdown. The native converter
// is tried first; on failure the slower marker converter takes over, unless
// the caller pinned a specific method.
func (u Usecase) ConvertPDF(ctx context.Context, in PDFInput) (types.ConvertedPDF, error) {
	method := in.Method
	if method == "" {
		method = "auto"
	}
	switch method {
	case "auto", "native", "marker":
	default:
		return types.ConvertedPDF{}, fmt.Errorf("unknown conversion method %q (valid: auto, native, marker)", in.Method)
	}

	sourceType := urlutil.SourceType(in.Source)
	path := in.Source
	if sourceType != "file" {
		dlURL := urlutil.FixArxivPDF(in.Source)
		if !urlutil.IsRemotePDF(ctx, u.d.HTTPClient, dlURL) {
			return types.ConvertedPDF{}, fmt.Errorf("%s does not serve a PDF", in.Source)
		}
		u.logf("downloading %s", dlURL)
		var err error
		path, err = retry.Do(ctx, u.policies.Download,
			retry.Keywords(retry.HTTPPermanent, retry.HTTPTransient), u.logf,
			func(ctx context.Context) (string, error) {
				return u.d.Downloader.Download(ctx, dlURL)
			})
		if err != nil {
			return types.ConvertedPDF{}, fmt.Errorf("download pdf: %w", err)
		}
		defer os.Remove(path)
	} else if _, err := os.Stat(path); err != nil {
		return types.ConvertedPDF{}, fmt.Errorf("pdf file: %w", err)
	}

	fileClassifier := retry.Keywords(retry.FilePermanent, retry.FileTransient)

	var nativeErr error
	if method != "marker" {
		res, err := retry.Do(ctx, u.policies.NativeConvert, fileClassifier, u.logf,
			func(ctx context.Context) (ports.PDFResult, error) {
				return u.d.PDFNative.Convert(ctx, path, in.MaxPages)
			})
		if err == nil {
			return buildConvertedPDF(in.Source, sourceType, res), nil
		}
		nativeErr = err
		if method == "native" {
			return types.ConvertedPDF{}, fmt.Errorf("native conversion: %w", err)
		}
		u.logf("native conversion failed, falling back to marker: %v", err)
	}

	res, err := retry.Do(ctx, u.policies.MarkerConvert, retry.RetryExitErrors(fileClassifier), u.logf,
		func(ctx context.Context) (ports.PDFResult, error) {
			return u.d.PDFMarker.Convert(ctx, path, in.MaxPages)
		})
	if err != nil {
		if nativeErr != nil {
			return types.ConvertedPDF{}, fmt.Errorf("marker conversion: %w (native also failed: %v)", err, nativeErr)
		}
		return types.ConvertedPDF{}, fmt.Errorf("marker conversion: %w", err)
	}
	return buildConvertedPDF(in.Source, sourceType, res), nil
}

func buildConvertedPDF(source, sourceType string, res ports.PDFResult) types.ConvertedPDF {
	return types.ConvertedPDF{
		Source:      source,
		SourceType:  sourceType,
		Markdown:    res.Markdown,
		Method:      res.Method,
		Pages:       res.Pages,
		TotalPages:  res.TotalPages,
		Title:       res.Title,
		Author:      res.Author,
		WordCount:   len(strings.Fields(res.Markdown)),
		ConvertedAt: time.Now().UTC(),
	}
}

type ScrapeInput struct {
	URL  string
	Opts ports.ScrapeOptions
}

// Scrape fetches a web page as Markdown with retry on transient backend
// failures.
func (u Usecase) Scrape(ctx context.Context, in ScrapeInput) (types.ScrapedPage, error) {
	normalized, err := urlutil.Normalize(in.URL)
	if err != nil {
		return types.ScrapedPage{}, err
	}
	u.logf("scraping %s", normalized)

	page, err := retry.Do(ctx, u.policies.Scrape,
		retry.Keywords(retry.HTTPPermanent, retry.HTTPTransient), u.logf,
		func(ctx context.Context) (types.ScrapedPage, error) {
			return u.d.Scraper.Scrape(ctx, normalized, in.Opts)
		})
	if err != nil {
		return types.ScrapedPage{}, err
	}
	page.WordCount = len(strings.Fields(page.Markdown))
	page.ScrapedAt = time.Now().UTC()
	return page, nil
}

type SummarizeInput struct {
	Text       string
	Style      summary.Style
	PromptsDir string
	MaxChars   int
}

type SummaryResult struct {
	Summary   string
	Provider  string
	Style     summary.Style
	Truncated bool
}

// Summarize sends the text to the configured provider. Provider calls are
// not retried; the SDKs already handle transport-level retries and a failed
// completion is surfaced to the user directly.
func (u Usecase) Summarize(ctx context.Context, in SummarizeInput) (SummaryResult, error) {
	if u.d.LLM == nil {
		return SummaryResult{}, fmt.Errorf("no summarization provider configured")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return SummaryResult{}, fmt.Errorf("nothing to summarize")
	}

	truncated := in.MaxChars > 0 && len(text) > in.MaxChars
	text = summary.Truncate(text, in.MaxChars)
	if truncated {
		u.logf("input truncated to %d chars before summarization", in.MaxChars)
	}

	system := summary.SystemPrompt(in.Style, in.PromptsDir)
	prompt := summary.UserPrompt(text, in.Style)

	u.logf("summarizing %d chars with %s (style=%s)", len(text), u.d.LLM.Name(), in.Style)
	out, err := u.d.LLM.Summarize(ctx, system, prompt)
	if err != nil {
		return SummaryResult{}, err
	}
	return SummaryResult{
		Summary:   out,
		Provider:  u.d.LLM.Name(),
		Style:     in.Style,
		Truncated: truncated,
	}, nil
}
