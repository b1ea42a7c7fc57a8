// Package marker shells out to the marker CLI for high-fidelity PDF to
// Markdown conversion. It is slower than the native path and used as the
// fallback when native extraction fails.
package marker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mdnotes/internal/ports"
)

const convertTimeout = 5 * time.Minute

type Converter struct {
	bin string
}

func New(binPath string) *Converter {
	if binPath == "" {
		binPath = "marker"
	}
	return &Converter{bin: binPath}
}

// Convert copies the PDF into a scratch dir, runs marker over it and reads
// the produced Markdown. maxPages of 0 converts the whole document.
func (c *Converter) Convert(ctx context.Context, pdfPath string, maxPages int) (ports.PDFResult, error) {
	work, err := os.MkdirTemp("", "mdnotes-marker-")
	if err != nil {
		return ports.PDFResult{}, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(work)

	inDir := filepath.Join(work, "in")
	outDir := filepath.Join(work, "out")
	for _, d := range []string{inDir, outDir} {
		if err := os.Mkdir(d, 0o755); err != nil {
			return ports.PDFResult{}, fmt.Errorf("create %s: %w", d, err)
		}
	}
	input := filepath.Join(inDir, filepath.Base(pdfPath))
	if err := copyFile(pdfPath, input); err != nil {
		return ports.PDFResult{}, fmt.Errorf("stage pdf: %w", err)
	}

	args := []string{
		input,
		"--output_format", "markdown",
		"--output_dir", outDir,
		"--disable_multiprocessing",
	}
	if maxPages > 0 {
		args = append(args, "--page_range", fmt.Sprintf("0-%d", maxPages-1))
	}

	cctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, c.bin, args...).CombinedOutput()
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return ports.PDFResult{}, fmt.Errorf("marker timed out converting %s", pdfPath)
		}
		return ports.PDFResult{}, fmt.Errorf("marker failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}

	md, err := findMarkdown(outDir)
	if err != nil {
		return ports.PDFResult{}, err
	}
	b, err := os.ReadFile(md)
	if err != nil {
		return ports.PDFResult{}, fmt.Errorf("read marker output: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return ports.PDFResult{}, fmt.Errorf("marker produced empty output for %s", pdfPath)
	}
	return ports.PDFResult{
		Markdown: text,
		Method:   "marker",
		Pages:    maxPages,
	}, nil
}

var _ ports.PDFConverter = (*Converter)(nil)

// findMarkdown locates the single .md file marker writes, possibly nested in
// a per-document subdirectory.
func findMarkdown(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan marker output: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("marker produced no markdown in %s", dir)
	}
	return found, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
