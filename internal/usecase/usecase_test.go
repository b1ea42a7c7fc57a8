package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mdnotes/internal/domain/summary"
	"mdnotes/internal/ports"
	"mdnotes/internal/retry"
	"mdnotes/internal/types"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:04.000
Hello everyone

00:00:04.000 --> 00:00:07.500
welcome to the show
`

func fastPolicies() Policies {
	p := DefaultPolicies()
	tiny := retry.Backoff{Min: time.Millisecond, Max: 2 * time.Millisecond}
	p.Transcript.Backoff = tiny
	p.Download.Backoff = tiny
	p.NativeConvert.Backoff = tiny
	p.MarkerConvert.Backoff = tiny
	p.Scrape.Backoff = tiny
	return p
}

type fakeSource struct {
	captions     string
	captionsErrs []error // consumed one per call before captions succeeds
	calls        int
	info         types.VideoInfo
	infoErr      error
}

func (f *fakeSource) VideoID(_ context.Context, urlOrID string) (string, error) {
	if len(urlOrID) == 11 {
		return urlOrID, nil
	}
	return "", fmt.Errorf("unable to extract video ID from %q", urlOrID)
}

func (f *fakeSource) Captions(_ context.Context, _ string, _ []string, _ bool) (string, error) {
	f.calls++
	if len(f.captionsErrs) > 0 {
		err := f.captionsErrs[0]
		f.captionsErrs = f.captionsErrs[1:]
		return "", err
	}
	return f.captions, nil
}

func (f *fakeSource) Info(_ context.Context, videoID string) (types.VideoInfo, error) {
	if f.infoErr != nil {
		return types.VideoInfo{}, f.infoErr
	}
	if f.info.VideoID == "" {
		f.info.VideoID = videoID
	}
	return f.info, nil
}

type fakeConverter struct {
	res   ports.PDFResult
	errs  []error
	calls int
}

func (f *fakeConverter) Convert(_ context.Context, _ string, _ int) (ports.PDFResult, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return ports.PDFResult{}, err
	}
	return f.res, nil
}

type fakeDownloader struct {
	path  string
	errs  []error
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, _ string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.path, nil
}

type fakeScraper struct {
	page  types.ScrapedPage
	errs  []error
	calls int
}

func (f *fakeScraper) Scrape(_ context.Context, url string, _ ports.ScrapeOptions) (types.ScrapedPage, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return types.ScrapedPage{}, err
	}
	p := f.page
	p.URL = url
	return p, nil
}

type fakeLLM struct {
	out       string
	err       error
	gotSystem string
	gotPrompt string
}

func (f *fakeLLM) Summarize(_ context.Context, system, prompt string) (string, error) {
	f.gotSystem = system
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func TestTranscript_ParsesCaptions(t *testing.T) {
	t.Parallel()

	src := &fakeSource{captions: sampleVTT, info: types.VideoInfo{Title: "Show"}}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	res, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(res.Transcript.Segments) != 2 {
		t.Fatalf("segments: %d", len(res.Transcript.Segments))
	}
	if res.Transcript.Segments[0].Text != "Hello everyone" {
		t.Fatalf("first segment: %q", res.Transcript.Segments[0].Text)
	}
	if res.Info.Title != "Show" {
		t.Fatalf("info: %+v", res.Info)
	}
}

func TestTranscript_RetriesTransientFetch(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		captions:     sampleVTT,
		captionsErrs: []error{errors.New("network is unreachable"), errors.New("timeout talking to host")},
	}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	if _, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"}); err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", src.calls)
	}
}

func TestTranscript_SentinelNotRetried(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		captionsErrs: []error{fmt.Errorf("video x: %w", ports.ErrTranscriptsDisabled)},
	}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	_, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"})
	if !errors.Is(err, ports.ErrTranscriptsDisabled) {
		t.Fatalf("expected disabled sentinel, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("sentinel should not be retried, got %d calls", src.calls)
	}
}

func TestTranscript_EmptyCaptionsBecomeNoTranscript(t *testing.T) {
	t.Parallel()

	src := &fakeSource{captions: "WEBVTT\n\nnot a cue at all\n"}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	_, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"})
	if !errors.Is(err, ports.ErrNoTranscript) {
		t.Fatalf("expected no-transcript sentinel, got %v", err)
	}
}

func TestTranscript_RejectsZeroDurationCue(t *testing.T) {
	t.Parallel()

	src := &fakeSource{captions: "WEBVTT\n\n00:00:05.000 --> 00:00:05.000\nstuck caption\n"}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	_, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"})
	if err == nil || !strings.Contains(err.Error(), "duration must be positive") {
		t.Fatalf("expected duration validation error, got %v", err)
	}
}

func TestTranscript_InfoFailureDegrades(t *testing.T) {
	t.Parallel()

	src := &fakeSource{captions: sampleVTT, infoErr: errors.New("metadata backend down")}
	uc := New(Deps{Source: src, Policies: fastPolicies()})

	res, err := uc.Transcript(context.Background(), TranscriptInput{URLOrID: "dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if res.Info.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected bare info, got %+v", res.Info)
	}
}

func TestConvertPDF_NativeSucceeds(t *testing.T) {
	t.Parallel()

	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	native := &fakeConverter{res: ports.PDFResult{Markdown: "# Page 1\n\ntext here", Method: "native", Pages: 1, TotalPages: 1}}
	marker := &fakeConverter{}
	uc := New(Deps{PDFNative: native, PDFMarker: marker, Policies: fastPolicies()})

	res, err := uc.ConvertPDF(context.Background(), PDFInput{Source: pdfPath})
	if err != nil {
		t.Fatalf("ConvertPDF: %v", err)
	}
	if res.Method != "native" || res.SourceType != "file" {
		t.Fatalf("result: %+v", res)
	}
	if res.WordCount != 4 {
		t.Fatalf("word count: %d", res.WordCount)
	}
	if marker.calls != 0 {
		t.Fatalf("marker should not run when native succeeds")
	}
}

func TestConvertPDF_FallsBackToMarker(t *testing.T) {
	t.Parallel()

	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	// Permanent failure: native is not retried, marker takes over.
	native := &fakeConverter{errs: []error{errors.New("invalid pdf structure")}}
	marker := &fakeConverter{res: ports.PDFResult{Markdown: "converted", Method: "marker"}}
	uc := New(Deps{PDFNative: native, PDFMarker: marker, Policies: fastPolicies()})

	res, err := uc.ConvertPDF(context.Background(), PDFInput{Source: pdfPath})
	if err != nil {
		t.Fatalf("ConvertPDF: %v", err)
	}
	if res.Method != "marker" {
		t.Fatalf("method: %q", res.Method)
	}
	if native.calls != 1 {
		t.Fatalf("permanent native failure should not be retried, got %d calls", native.calls)
	}
}

func TestConvertPDF_NativeTransientRetried(t *testing.T) {
	t.Parallel()

	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	native := &fakeConverter{
		errs: []error{errors.New("temporary failure in extraction")},
		res:  ports.PDFResult{Markdown: "ok", Method: "native"},
	}
	uc := New(Deps{PDFNative: native, PDFMarker: &fakeConverter{}, Policies: fastPolicies()})

	res, err := uc.ConvertPDF(context.Background(), PDFInput{Source: pdfPath})
	if err != nil {
		t.Fatalf("ConvertPDF: %v", err)
	}
	if native.calls != 2 || res.Method != "native" {
		t.Fatalf("expected retried native success, calls=%d method=%q", native.calls, res.Method)
	}
}

func TestConvertPDF_MethodNativeDoesNotFallBack(t *testing.T) {
	t.Parallel()

	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	native := &fakeConverter{errs: []error{errors.New("not a pdf")}}
	marker := &fakeConverter{res: ports.PDFResult{Markdown: "x", Method: "marker"}}
	uc := New(Deps{PDFNative: native, PDFMarker: marker, Policies: fastPolicies()})

	_, err := uc.ConvertPDF(context.Background(), PDFInput{Source: pdfPath, Method: "native"})
	if err == nil {
		t.Fatalf("expected error when pinned method fails")
	}
	if marker.calls != 0 {
		t.Fatalf("marker must not run when method is pinned to native")
	}
}

// offlineTransport fails every request so the content-type sniff falls back
// to the URL path suffix.
type offlineTransport struct{}

func (offlineTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("no network in tests")
}

func TestConvertPDF_RemoteDownloadsWithRetry(t *testing.T) {
	t.Parallel()

	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	dl := &fakeDownloader{path: pdfPath, errs: []error{errors.New("connection error")}}
	native := &fakeConverter{res: ports.PDFResult{Markdown: "ok", Method: "native"}}
	uc := New(Deps{
		PDFNative:  native,
		PDFMarker:  &fakeConverter{},
		Downloader: dl,
		HTTPClient: &http.Client{Transport: offlineTransport{}},
		Policies:   fastPolicies(),
	})

	res, err := uc.ConvertPDF(context.Background(), PDFInput{Source: "https://arxiv.org/pdf/2301.00001"})
	if err != nil {
		t.Fatalf("ConvertPDF: %v", err)
	}
	if dl.calls != 2 {
		t.Fatalf("expected download retry, got %d calls", dl.calls)
	}
	if res.SourceType != "arxiv" {
		t.Fatalf("source type: %q", res.SourceType)
	}
}

func TestConvertPDF_RejectsNonPDFURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	dl := &fakeDownloader{}
	uc := New(Deps{
		PDFNative:  &fakeConverter{},
		PDFMarker:  &fakeConverter{},
		Downloader: dl,
		HTTPClient: srv.Client(),
		Policies:   fastPolicies(),
	})

	_, err := uc.ConvertPDF(context.Background(), PDFInput{Source: srv.URL + "/page"})
	if err == nil || !strings.Contains(err.Error(), "does not serve a PDF") {
		t.Fatalf("expected non-PDF rejection, got %v", err)
	}
	if dl.calls != 0 {
		t.Fatalf("download must not run for a non-PDF URL, got %d calls", dl.calls)
	}
}

func TestConvertPDF_RejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Policies: fastPolicies()})
	_, err := uc.ConvertPDF(context.Background(), PDFInput{Source: "doc.pdf", Method: "ocr"})
	if err == nil || !strings.Contains(err.Error(), "unknown conversion method") {
		t.Fatalf("expected method error, got %v", err)
	}
}

func TestScrape_NormalizesAndCounts(t *testing.T) {
	t.Parallel()

	sc := &fakeScraper{page: types.ScrapedPage{Markdown: "one two three"}}
	uc := New(Deps{Scraper: sc, Policies: fastPolicies()})

	page, err := uc.Scrape(context.Background(), ScrapeInput{URL: "example.com/article"})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if page.URL != "https://example.com/article" {
		t.Fatalf("url: %q", page.URL)
	}
	if page.WordCount != 3 {
		t.Fatalf("word count: %d", page.WordCount)
	}
	if page.ScrapedAt.IsZero() {
		t.Fatalf("expected scrape timestamp")
	}
}

func TestScrape_RateLimitRetried(t *testing.T) {
	t.Parallel()

	sc := &fakeScraper{
		page: types.ScrapedPage{Markdown: "content"},
		errs: []error{errors.New("429 rate limit exceeded")},
	}
	uc := New(Deps{Scraper: sc, Policies: fastPolicies()})

	if _, err := uc.Scrape(context.Background(), ScrapeInput{URL: "https://example.com"}); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if sc.calls != 2 {
		t.Fatalf("expected retry, got %d calls", sc.calls)
	}
}

func TestScrape_NotFoundFailsFast(t *testing.T) {
	t.Parallel()

	sc := &fakeScraper{errs: []error{errors.New("firecrawl status 404: not found")}}
	uc := New(Deps{Scraper: sc, Policies: fastPolicies()})

	if _, err := uc.Scrape(context.Background(), ScrapeInput{URL: "https://example.com"}); err == nil {
		t.Fatalf("expected error")
	}
	if sc.calls != 1 {
		t.Fatalf("permanent failure should not be retried, got %d calls", sc.calls)
	}
}

func TestSummarize_BuildsPrompts(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{out: "the summary"}
	uc := New(Deps{LLM: llm, Policies: fastPolicies()})

	res, err := uc.Summarize(context.Background(), SummarizeInput{
		Text:  "long transcript text",
		Style: summary.StyleBulletPoints,
	})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if res.Summary != "the summary" || res.Provider != "fake" {
		t.Fatalf("result: %+v", res)
	}
	if !strings.Contains(llm.gotPrompt, "long transcript text") {
		t.Fatalf("prompt missing content: %q", llm.gotPrompt)
	}
	if !strings.Contains(llm.gotSystem, "organizing information") {
		t.Fatalf("system prompt: %q", llm.gotSystem)
	}
}

func TestSummarize_TruncatesLongInput(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{out: "s"}
	uc := New(Deps{LLM: llm, Policies: fastPolicies()})

	res, err := uc.Summarize(context.Background(), SummarizeInput{
		Text:     strings.Repeat("a", 100),
		Style:    summary.StyleBrief,
		MaxChars: 10,
	})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncation flag")
	}
	if !strings.Contains(llm.gotPrompt, strings.Repeat("a", 10)+"\n") && !strings.HasSuffix(llm.gotPrompt, strings.Repeat("a", 10)) {
		t.Fatalf("prompt not truncated: %q", llm.gotPrompt)
	}
}

func TestSummarize_NoProvider(t *testing.T) {
	t.Parallel()

	uc := New(Deps{Policies: fastPolicies()})
	_, err := uc.Summarize(context.Background(), SummarizeInput{Text: "x", Style: summary.StyleBrief})
	if err == nil || !strings.Contains(err.Error(), "no summarization provider") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	t.Parallel()

	uc := New(Deps{LLM: &fakeLLM{out: "s"}, Policies: fastPolicies()})
	_, err := uc.Summarize(context.Background(), SummarizeInput{Text: "   ", Style: summary.StyleBrief})
	if err == nil || !strings.Contains(err.Error(), "nothing to summarize") {
		t.Fatalf("expected empty input error, got %v", err)
	}
}
