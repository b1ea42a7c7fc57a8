// Package vtt parses the WebVTT dialect that yt-dlp writes for YouTube
// captions. It covers exactly what real downloader output requires, not the
// full W3C spec.
package vtt

import (
	"regexp"
	"strconv"
	"strings"

	"mdnotes/internal/types"
)

var (
	timestampRe = regexp.MustCompile(
		`^(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	// Inline markup such as <c>, <b>, <00:00:01.000> word timing tags.
	tagRe = regexp.MustCompile(`<[^>]+>`)
	// Positioning and styling annotations yt-dlp appends to cue text lines.
	styleRe = regexp.MustCompile(`align:\w+(?:\s+position:\d+%)?|position:\d+%|line:[\d.%-]+|size:\d+%`)
)

// Parse converts raw WebVTT content into an ordered transcript. Cues appear
// in the output in source order. Malformed timestamp lines and cues whose
// text is empty after stripping are skipped silently; an empty result means
// the input held no usable caption content and callers must escalate that
// themselves.
//
// The scan is a single line-oriented pass with no recursion, so arbitrarily
// long caption files are safe.
func Parse(content string) types.Transcript {
	lines := strings.Split(content, "\n")

	var segments []types.TranscriptSegment
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") {
			i++
			continue
		}

		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		m := timestampRe.FindStringSubmatch(line)
		if m == nil {
			// Malformed timestamp line: skip without emitting a cue.
			i++
			continue
		}

		start := toSeconds(m[1], m[2], m[3], m[4])
		end := toSeconds(m[5], m[6], m[7], m[8])

		i++
		var parts []string
		for i < len(lines) {
			raw := lines[i]
			if strings.TrimSpace(raw) == "" || strings.Contains(raw, "-->") {
				break
			}
			text := tagRe.ReplaceAllString(strings.TrimSpace(raw), "")
			text = styleRe.ReplaceAllString(text, "")
			text = strings.TrimSpace(text)
			if text != "" {
				parts = append(parts, text)
			}
			i++
		}

		if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
			segments = append(segments, types.TranscriptSegment{
				Text:     text,
				Start:    start,
				Duration: end - start,
			})
		}
	}

	return types.Transcript{Segments: segments}
}

func toSeconds(h, m, s, ms string) float64 {
	hi, _ := strconv.Atoi(h)
	mi, _ := strconv.Atoi(m)
	si, _ := strconv.Atoi(s)
	msi, _ := strconv.Atoi(ms)
	return float64(hi)*3600 + float64(mi)*60 + float64(si) + float64(msi)/1000
}
