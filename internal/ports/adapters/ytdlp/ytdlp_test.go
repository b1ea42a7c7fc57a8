package ytdlp

import (
	"context"
	"errors"
	"testing"

	"mdnotes/internal/ports"
)

func TestVideoID_LocalResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"www watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"extra params", "https://youtube.com/something?list=x&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	a := New("yt-dlp-not-installed")
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := a.VideoID(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("VideoID(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("VideoID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestVideoID_RejectsJunk(t *testing.T) {
	t.Parallel()

	// Binary path is intentionally bogus so the subprocess fallback fails
	// fast instead of hitting the network.
	a := New("yt-dlp-not-installed")
	if _, err := a.VideoID(context.Background(), "short"); err == nil {
		t.Fatalf("expected error for unresolvable input")
	}
}

func TestMapOutput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		output string
		want   error
	}{
		{"private", "ERROR: Private video. Sign in if you've been granted access", ports.ErrVideoUnavailable},
		{"unavailable", "ERROR: This video is unavailable", ports.ErrVideoUnavailable},
		{"no auto captions", "ERROR: No automatic captions for en", ports.ErrNoTranscript},
		{"no subtitles", "WARNING: No subtitles for requested languages", ports.ErrNoTranscript},
		{"disabled", "ERROR: subtitles are disabled for this video", ports.ErrTranscriptsDisabled},
		{"unknown", "ERROR: something else entirely", nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := mapOutput("dQw4w9WgXcQ", tc.output)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
