// Package pdfnative extracts PDF text in-process. It is the fast path; the
// marker adapter covers documents this one cannot read.
package pdfnative

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"mdnotes/internal/ports"
)

type Converter struct{}

func New() *Converter { return &Converter{} }

// Convert reads up to maxPages pages (0 means all) and returns their plain
// text as Markdown with per-page headings.
func (c *Converter) Convert(ctx context.Context, pdfPath string, maxPages int) (ports.PDFResult, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return ports.PDFResult{}, fmt.Errorf("open pdf %s: %w", pdfPath, err)
	}
	defer f.Close()

	total := r.NumPage()
	limit := total
	if maxPages > 0 && maxPages < total {
		limit = maxPages
	}

	var sections []string
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return ports.PDFResult{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return ports.PDFResult{}, fmt.Errorf("extract text from page %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("# Page %d\n\n%s", i, text))
	}
	if len(sections) == 0 {
		return ports.PDFResult{}, fmt.Errorf("no extractable text in %s", pdfPath)
	}

	result := ports.PDFResult{
		Markdown:   strings.Join(sections, "\n\n---\n\n"),
		Method:     "native",
		Pages:      limit,
		TotalPages: total,
	}
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		result.Title = info.Key("Title").Text()
		result.Author = info.Key("Author").Text()
	}
	return result, nil
}

var _ ports.PDFConverter = (*Converter)(nil)
