package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/config"
	"github.com/sells-group/poi-sync/internal/pipeline"
)

var diagnoseCategory string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Write the manual-review report without touching the store",
	Long: `Builds the category's canonical set and writes the list of entries that
still need manual coordinates (JSON, plus XLSX and an S3 copy when configured).
The location store is never contacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runDiagnose(cmd.Context(), cfg, diagnoseCategory, cmd.OutOrStdout())
		return err
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseCategory, "category", "", "category to diagnose (required)")
	_ = diagnoseCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(ctx context.Context, c *config.Config, category string, out io.Writer) (*pipeline.Result, error) {
	log := zap.L().With(zap.String("command", "diagnose"), zap.String("category", category))

	cat, err := c.Category(category)
	if err != nil {
		return nil, err
	}
	p, err := newPipeline(c)
	if err != nil {
		return nil, err
	}
	res := p.Build(ctx, cat.Tag, cat.Files)
	logBuild(log, res)

	paths, err := writeDiagnostics(ctx, c, category, res.Diagnostics)
	if err != nil {
		return res, err
	}

	fmt.Fprintf(out, "Records:     %d\n", len(res.Records))
	fmt.Fprintf(out, "Fallbacks:   %d\n", res.Fallbacks)
	fmt.Fprintf(out, "Diagnostics: %d\n", res.Diagnostics.Len())
	for _, item := range res.Diagnostics.Items() {
		fmt.Fprintf(out, "  - %s (%s): %s\n", item.Name, item.Reason, item.Address)
	}
	for _, path := range paths {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return res, nil
}
