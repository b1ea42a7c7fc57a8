package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdnotes/internal/config"
	"mdnotes/internal/pipeline"
)

func newScrapeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a web page into Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			includeLinks, _ := cmd.Flags().GetBool("include-links")

			logf, err := newLogf(cfg)
			if err != nil {
				return err
			}
			pc := pipeline.ScrapeConfig{
				URL:          args[0],
				Format:       format,
				IncludeLinks: includeLinks,
				OutputPath:   output,
				Cfg:          cfg,
				Logf:         logf,
			}
			if err := pc.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return pipeline.RunScrape(ctx, pc)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().String("format", "note", "Output format: markdown, html or note")
	cmd.Flags().Bool("include-links", false, "Append page links to the note")
	return cmd
}
