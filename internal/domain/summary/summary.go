// Package summary holds the prompt construction for the summarization
// styles. Providers receive the finished system and user prompts, so the
// style logic stays independent of any SDK.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Style selects how the model condenses the input.
type Style string

const (
	StyleBrief            Style = "brief"
	StyleDetailed         Style = "detailed"
	StyleBulletPoints     Style = "bullet_points"
	StyleKeyTakeaways     Style = "key_takeaways"
	StyleChapterBreakdown Style = "chapter_breakdown"
	StyleQuestions        Style = "questions"
)

// Styles lists all valid style names for CLI flag help.
func Styles() []string {
	return []string{
		string(StyleBrief),
		string(StyleDetailed),
		string(StyleBulletPoints),
		string(StyleKeyTakeaways),
		string(StyleChapterBreakdown),
		string(StyleQuestions),
	}
}

// ParseStyle validates a style name from user input.
func ParseStyle(s string) (Style, error) {
	v := Style(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case StyleBrief, StyleDetailed, StyleBulletPoints,
		StyleKeyTakeaways, StyleChapterBreakdown, StyleQuestions:
		return v, nil
	}
	return "", fmt.Errorf("unknown summary style %q (valid: %s)", s, strings.Join(Styles(), ", "))
}

var systemPrompts = map[Style]string{
	StyleBrief: "You are an expert at creating concise summaries. " +
		"Provide a brief, clear summary that captures the main points " +
		"in 2-3 sentences.",
	StyleDetailed: "You are an expert at creating comprehensive summaries. " +
		"Provide a detailed summary that covers all major topics, " +
		"key arguments, and important details discussed in the content.",
	StyleBulletPoints: "You are an expert at organizing information. " +
		"Create a structured summary using bullet points that " +
		"organize the content into clear, actionable points.",
	StyleKeyTakeaways: "You are an expert at identifying key insights. " +
		"Extract and present the most important takeaways, lessons, " +
		"or insights from the content in a clear, numbered list.",
	StyleChapterBreakdown: "You are an expert at structuring content. " +
		"Break down the content into logical chapters or sections, " +
		"providing a title and summary for each major segment.",
}

const questionsFallbackPrompt = "You are an expert at reverse engineering question architecture from content. " +
	"Apply systematic question-oriented analysis to extract the implicit " +
	"question-answer structure from the provided content, following the " +
	"four-phase method: central question discovery, domain question extraction, " +
	"specific and atomic question decomposition, and synthesis chain evaluation."

// SystemPrompt returns the system prompt for a style. The questions style
// loads question_tree.md from promptsDir so the prompt can evolve without a
// rebuild; a missing file falls back to the built-in prompt.
func SystemPrompt(style Style, promptsDir string) string {
	if style == StyleQuestions {
		if promptsDir != "" {
			b, err := os.ReadFile(filepath.Join(promptsDir, "question_tree.md"))
			if err == nil {
				return string(b)
			}
		}
		return questionsFallbackPrompt
	}
	if p, ok := systemPrompts[style]; ok {
		return p
	}
	return systemPrompts[StyleBrief]
}

var styleInstructions = map[Style]string{
	StyleBrief:            "Create a brief summary (2-3 sentences):",
	StyleDetailed:         "Create a detailed summary covering all major points:",
	StyleBulletPoints:     "Create a bullet-point summary:",
	StyleKeyTakeaways:     "Extract the key takeaways as a numbered list:",
	StyleChapterBreakdown: "Break this down into chapters with titles and summaries:",
	StyleQuestions:        "Apply the reverse engineering question architecture methodology to analyze this content:",
}

// UserPrompt wraps the content with the style-specific instruction.
func UserPrompt(text string, style Style) string {
	instruction, ok := styleInstructions[style]
	if !ok {
		instruction = styleInstructions[StyleBrief]
	}
	return instruction + "\n\nTranscript:\n" + text
}

// Truncate cuts text to max bytes. Zero or negative max disables the limit.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max]
}
