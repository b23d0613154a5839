package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/poi-sync/internal/model"
)

var (
	replaceCategory string
	replaceFile     string
	replaceDryRun   bool
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Delete a category from the store and recreate it from one file",
	Long: `Deletes every record of the category, then creates the canonical set in
batches of sync.batch_size. A failed batch is reported and later batches still
run. Uses the category's configured file unless --file is given; a category
with several progress files (merge mode) must name its authoritative file
with --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		opts := syncOptions{
			Category: replaceCategory,
			DryRun:   replaceDryRun,
			Mode:     model.ModeReplace,
		}
		if replaceFile != "" {
			opts.Files = []string{replaceFile}
		}
		_, err := runSync(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	replaceCmd.Flags().StringVar(&replaceCategory, "category", "", "category to replace (required)")
	replaceCmd.Flags().StringVar(&replaceFile, "file", "", "authoritative input file (default: the category's configured file)")
	replaceCmd.Flags().BoolVar(&replaceDryRun, "dry-run", false, "replace against an empty in-memory store instead of the configured one")
	_ = replaceCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(replaceCmd)
}
