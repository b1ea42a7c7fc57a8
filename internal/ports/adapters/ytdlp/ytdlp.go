// Package ytdlp shells out to yt-dlp for caption download and video
// metadata.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"mdnotes/internal/ports"
	"mdnotes/internal/types"
)

const (
	idTimeout       = 30 * time.Second
	infoTimeout     = 30 * time.Second
	captionsTimeout = 120 * time.Second
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

var (
	videoIDRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/.*[?&]v=([a-zA-Z0-9_-]{11})`),
	}
)

// VideoID resolves a URL or bare ID to the 11-character video ID. Known URL
// shapes are matched locally; anything else is handed to yt-dlp --get-id as
// a last resort.
func (a *Adapter) VideoID(ctx context.Context, urlOrID string) (string, error) {
	if videoIDRe.MatchString(urlOrID) {
		return urlOrID, nil
	}
	for _, re := range urlPatterns {
		if m := re.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}

	cctx, cancel := context.WithTimeout(ctx, idTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, a.bin, "--get-id", urlOrID).Output()
	if err == nil {
		id := strings.TrimSpace(string(out))
		if videoIDRe.MatchString(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("unable to extract video ID from %q", urlOrID)
}

// Captions downloads the subtitle track into a temp dir and returns the raw
// VTT text of the first subtitle file found.
func (a *Adapter) Captions(ctx context.Context, videoID string, languages []string, autoGenerated bool) (string, error) {
	tmp, err := os.MkdirTemp("", "mdnotes-subs-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	subsFlag := "--write-subs"
	if autoGenerated {
		subsFlag = "--write-auto-subs"
	}
	args := []string{
		"--skip-download",
		subsFlag,
		"--output", filepath.Join(tmp, "%(title)s.%(ext)s"),
	}
	if len(languages) > 0 {
		args = append(args, "--sub-lang", strings.Join(languages, ","))
	}
	args = append(args, "https://youtube.com/watch?v="+videoID)

	cctx, cancel := context.WithTimeout(ctx, captionsTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, a.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("yt-dlp timed out extracting captions for %s", videoID)
		}
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		if mapped := mapOutput(videoID, output); mapped != nil {
			return "", mapped
		}
		return "", fmt.Errorf("yt-dlp failed for %s: %w\n%s", videoID, err, strings.TrimSpace(output))
	}

	vttFiles, err := filepath.Glob(filepath.Join(tmp, "*.vtt"))
	if err != nil {
		return "", fmt.Errorf("glob subtitle files: %w", err)
	}
	if len(vttFiles) == 0 {
		return "", fmt.Errorf("no subtitle files downloaded for %s: %w", videoID, ports.ErrNoTranscript)
	}

	// yt-dlp writes the preferred language first.
	b, err := os.ReadFile(vttFiles[0])
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}
	return string(b), nil
}

// mapOutput translates well-known yt-dlp failure messages to the port's
// error taxonomy. Returns nil when the output matches nothing known.
func mapOutput(videoID, output string) error {
	switch {
	case strings.Contains(output, "Private video"),
		strings.Contains(output, "This video is unavailable"):
		return fmt.Errorf("video %s: %s: %w", videoID, firstLine(output), ports.ErrVideoUnavailable)
	case strings.Contains(output, "No automatic captions"),
		strings.Contains(output, "No subtitles"):
		return fmt.Errorf("video %s: %s: %w", videoID, firstLine(output), ports.ErrNoTranscript)
	case strings.Contains(output, "subtitles are disabled"):
		return fmt.Errorf("video %s: %s: %w", videoID, firstLine(output), ports.ErrTranscriptsDisabled)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// Info fetches video metadata via --dump-json. Any failure degrades to a
// bare VideoInfo so note generation still works with just the ID.
func (a *Adapter) Info(ctx context.Context, videoID string) (types.VideoInfo, error) {
	cctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, a.bin,
		"--dump-json",
		"--no-download",
		"https://youtube.com/watch?v="+videoID,
	).Output()
	if err != nil {
		return types.VideoInfo{VideoID: videoID}, nil
	}

	var raw struct {
		Title    string  `json:"title"`
		Uploader string  `json:"uploader"`
		Duration float64 `json:"duration"`
		Language string  `json:"language"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return types.VideoInfo{VideoID: videoID}, nil
	}
	return types.VideoInfo{
		VideoID:  videoID,
		Title:    raw.Title,
		Channel:  raw.Uploader,
		Duration: raw.Duration,
		Language: raw.Language,
	}, nil
}

var _ ports.TranscriptSource = (*Adapter)(nil)
