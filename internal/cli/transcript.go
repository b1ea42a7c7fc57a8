package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mdnotes/internal/config"
	"mdnotes/internal/pipeline"
)

const commandTimeout = 30 * time.Minute

func newTranscriptCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript <url-or-id>",
		Short: "Extract a YouTube transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			languages, _ := cmd.Flags().GetStringSlice("languages")
			noAuto, _ := cmd.Flags().GetBool("no-auto-generated")

			logf, err := newLogf(cfg)
			if err != nil {
				return err
			}
			pc := pipeline.TranscriptConfig{
				URLOrID:       args[0],
				Languages:     languages,
				AutoGenerated: !noAuto,
				Format:        format,
				OutputPath:    output,
				Cfg:           cfg,
				Logf:          logf,
			}
			if err := pc.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return pipeline.RunTranscript(ctx, pc)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().String("format", "text", "Output format: text, timed, json or note")
	cmd.Flags().StringSlice("languages", []string{"en"}, "Preferred caption languages, in order")
	cmd.Flags().Bool("no-auto-generated", false, "Only accept manually created captions")
	return cmd
}
