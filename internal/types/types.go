package types

import (
	"fmt"
	"strings"
	"time"
)

// TranscriptSegment is one caption cue with its timing. Segments are
// constructed once during parsing and never mutated afterwards.
type TranscriptSegment struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	Duration   float64  `json:"duration"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// EndTime returns Start + Duration in seconds.
func (s TranscriptSegment) EndTime() float64 {
	return s.Start + s.Duration
}

// Validate rejects segments that downstream consumers cannot use. The VTT
// parser itself emits whatever the source contains; callers decide whether
// to drop or fail on invalid timing.
func (s TranscriptSegment) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("segment text is empty")
	}
	if s.Start < 0 {
		return fmt.Errorf("start time cannot be negative: %v", s.Start)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive: %v", s.Duration)
	}
	if s.Confidence != nil && (*s.Confidence < 0 || *s.Confidence > 1) {
		return fmt.Errorf("confidence must be between 0.0 and 1.0: %v", *s.Confidence)
	}
	return nil
}

// Transcript is an ordered sequence of segments; insertion order is the
// chronological order of the source captions.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

// PlainText joins all segment texts with single spaces.
func (t Transcript) PlainText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// TimedText renders one "[MM:SS] text" line per segment, using floor
// division for minutes and seconds.
func (t Transcript) TimedText() string {
	lines := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		min := int(s.Start) / 60
		sec := int(s.Start) % 60
		lines = append(lines, fmt.Sprintf("[%02d:%02d] %s", min, sec, s.Text))
	}
	return strings.Join(lines, "\n")
}

// Chars is the total character count across segment texts.
func (t Transcript) Chars() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Text)
	}
	return n
}

// VideoInfo is the subset of yt-dlp's --dump-json output we care about.
type VideoInfo struct {
	VideoID  string
	Title    string
	Channel  string
	Duration float64
	Language string
}

// VideoMetadata is the note-facing view of a video, with fields the
// frontmatter builder consumes directly.
type VideoMetadata struct {
	VideoID     string
	Title       string
	Channel     string
	PublishDate string
	Description string
	URL         string
}

// ScrapedPage holds the result of one web scrape.
type ScrapedPage struct {
	URL         string
	Markdown    string
	HTML        string
	Links       []string
	Title       string
	Description string
	StatusCode  int
	WordCount   int
	ScrapedAt   time.Time
}

// ConvertedPDF holds the result of one PDF conversion.
type ConvertedPDF struct {
	Source      string
	SourceType  string // "file", "url" or "arxiv"
	Markdown    string
	Method      string // "native" or "marker"
	Pages       int
	TotalPages  int
	Title       string
	Author      string
	WordCount   int
	ConvertedAt time.Time
}
