// Package cli defines the mdnotes command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mdnotes/internal/config"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	cfg := config.Load()

	root := &cobra.Command{
		Use:           "mdnotes",
		Short:         "Turn videos, PDFs and web pages into Markdown notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.AddCommand(
		newTranscriptCmd(cfg),
		newPDFCmd(cfg),
		newScrapeCmd(cfg),
		newSummarizeCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogf builds the logf injected into the pipeline, backed by slog with
// the configured level and optional file sink. Output goes to stderr so
// stdout stays clean for piped note content.
func newLogf(cfg config.Config) (func(format string, args ...any), error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var sink io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sink = io.MultiWriter(os.Stderr, f)
	}

	logger := slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level}))
	return func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	}, nil
}
