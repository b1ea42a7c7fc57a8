package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdnotes/internal/config"
	"mdnotes/internal/pipeline"
)

func newPDFCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <file-or-url>",
		Short: "Convert a PDF to a Markdown note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			maxPages, _ := cmd.Flags().GetInt("max-pages")
			method, _ := cmd.Flags().GetString("method")

			logf, err := newLogf(cfg)
			if err != nil {
				return err
			}
			pc := pipeline.PDFConfig{
				Source:     args[0],
				MaxPages:   maxPages,
				Method:     method,
				OutputPath: output,
				Cfg:        cfg,
				Logf:       logf,
			}
			if err := pc.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return pipeline.RunPDF(ctx, pc)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	cmd.Flags().Int("max-pages", 0, "Maximum pages to convert (0 = all)")
	cmd.Flags().String("method", "auto", "Conversion method: auto, native or marker")
	return cmd
}
