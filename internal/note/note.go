// Package note assembles Markdown notes: YAML frontmatter, body, tags and
// filesystem-safe filenames.
package note

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML block prepended to every note. Empty fields are
// omitted from the rendered output.
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Source      string   `yaml:"source"`
	Channel     string   `yaml:"channel,omitempty"`
	URL         string   `yaml:"url,omitempty"`
	VideoID     string   `yaml:"video_id,omitempty"`
	Date        string   `yaml:"date,omitempty"`
	Authors     []string `yaml:"authors,omitempty"`
	Tags        []string `yaml:"tags,omitempty,flow"`
	Description string   `yaml:"description,omitempty"`
	WordCount   int      `yaml:"word_count,omitempty"`
	Pages       int      `yaml:"pages,omitempty"`
	Method      string   `yaml:"conversion_method,omitempty"`
	Style       string   `yaml:"summary_style,omitempty"`
	Provider    string   `yaml:"summary_provider,omitempty"`
}

// Render produces the complete note: frontmatter between "---" fences, a
// blank line, then the body.
func Render(fm Frontmatter, body string) (string, error) {
	b, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + string(b) + "---\n\n" + body, nil
}

var (
	unsafeCharRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	dashRunRe    = regexp.MustCompile(`-+`)
)

// SanitizeFilename replaces filesystem-unsafe characters with dashes,
// collapses dash runs and caps the length at 200 characters.
func SanitizeFilename(name string) string {
	s := unsafeCharRe.ReplaceAllString(name, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 200 {
		s = strings.TrimRight(s[:200], "-")
	}
	return s
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// TagsFromTitle derives up to five tags from the title words, skipping stop
// words and anything three characters or shorter.
func TagsFromTitle(title string) []string {
	var tags []string
	for _, w := range wordRe.FindAllString(strings.ToLower(title), -1) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tags = append(tags, w)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

// SuggestedFilename builds "<title>[-<qualifier>].md" from sanitized parts,
// falling back to the given identifier when the title sanitizes to nothing.
func SuggestedFilename(title, qualifier, fallback string) string {
	titlePart := SanitizeFilename(title)
	if len(titlePart) > 100 {
		titlePart = strings.TrimRight(titlePart[:100], "-")
	}
	qualPart := SanitizeFilename(qualifier)
	if len(qualPart) > 50 {
		qualPart = strings.TrimRight(qualPart[:50], "-")
	}

	switch {
	case titlePart != "" && qualPart != "":
		return titlePart + "-" + qualPart + ".md"
	case titlePart != "":
		return titlePart + ".md"
	default:
		return fallback + ".md"
	}
}
