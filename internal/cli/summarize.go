package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mdnotes/internal/config"
	"mdnotes/internal/domain/summary"
	"mdnotes/internal/pipeline"
)

func newSummarizeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <url-or-id-or-file>",
		Short: "Summarize a video transcript or text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, _ := cmd.Flags().GetString("style")
			provider, _ := cmd.Flags().GetString("provider")
			languages, _ := cmd.Flags().GetStringSlice("languages")
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")

			logf, err := newLogf(cfg)
			if err != nil {
				return err
			}
			pc := pipeline.SummarizeConfig{
				Source:     args[0],
				Style:      style,
				Provider:   provider,
				Languages:  languages,
				Format:     format,
				OutputPath: output,
				Cfg:        cfg,
				Logf:       logf,
			}
			if err := pc.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return pipeline.RunSummarize(ctx, pc)
		},
	}

	cmd.Flags().String("style", "brief", "Summary style: "+strings.Join(summary.Styles(), ", "))
	cmd.Flags().String("provider", "", "LLM provider: openai or anthropic (default: auto)")
	cmd.Flags().StringSlice("languages", []string{"en"}, "Preferred caption languages for video sources")
	cmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().String("format", "note", "Output format: note or text")
	return cmd
}
