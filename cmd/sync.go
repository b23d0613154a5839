package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/config"
	"github.com/sells-group/poi-sync/internal/model"
)

type syncOptions struct {
	Category string
	DryRun   bool

	// Mode and Files override the category's configuration when set.
	Mode  model.Mode
	Files []string
}

var (
	syncCategory string
	syncDryRun   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Build a category's canonical set and reconcile it with the store",
	Long: `Loads the category's files in configured order, resolves duplicates
(first file wins), fills missing coordinates from the region table, writes the
manual-review report and then writes every record to the location store.

Categories in merge mode are reconciled record by record: existing titles are
updated in place, new titles are created. Categories in replace mode are
deleted and recreated in batches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		_, err := runSync(cmd.Context(), cfg, syncOptions{
			Category: syncCategory,
			DryRun:   syncDryRun,
		}, cmd.OutOrStdout())
		return err
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncCategory, "category", "", "category to synchronize (required)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "reconcile against an empty in-memory store instead of the configured one")
	_ = syncCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(syncCmd)
}

// runSync builds the canonical set, writes diagnostics and synchronizes
// one category. The summary is printed even when the run fails.
func runSync(ctx context.Context, c *config.Config, opts syncOptions, out io.Writer) (model.SyncSummary, error) {
	log := zap.L().With(zap.String("command", "sync"), zap.String("category", opts.Category))

	cat, err := c.Category(opts.Category)
	if err != nil {
		return model.SyncSummary{}, err
	}
	mode := model.Mode(cat.Mode)
	if opts.Mode != "" {
		mode = opts.Mode
	}
	files := cat.Files
	if len(opts.Files) > 0 {
		files = opts.Files
	}
	if mode == model.ModeReplace && len(files) != 1 {
		return model.SyncSummary{}, eris.Errorf("sync: replace of %q needs exactly one authoritative file, %d configured (pass --file)", opts.Category, len(files))
	}

	p, err := newPipeline(c)
	if err != nil {
		return model.SyncSummary{}, err
	}
	res := p.Build(ctx, cat.Tag, files)
	logBuild(log, res)

	if _, err := writeDiagnostics(ctx, c, opts.Category, res.Diagnostics); err != nil {
		// The review report never blocks synchronization.
		log.Error("write diagnostics failed", zap.Error(err))
	}

	st, err := openStore(ctx, c, opts.DryRun)
	if err != nil {
		return model.SyncSummary{}, eris.Wrap(err, "sync: open store")
	}
	defer st.Close() //nolint:errcheck

	syncer := newSynchronizer(c, st, newProgress(len(res.Records), opts.Category))

	log.Info("starting sync",
		zap.String("mode", string(mode)),
		zap.Strings("files", files),
		zap.Bool("dry_run", opts.DryRun),
	)

	var sum model.SyncSummary
	var runErr error
	switch mode {
	case model.ModeReplace:
		sum, runErr = syncer.Replace(ctx, cat.Tag, res.Records, cat.Boilerplate)
	default:
		sum, runErr = syncer.Sync(ctx, cat.Tag, res.Records, cat.Boilerplate)
	}
	sum.Fallbacks = res.Fallbacks
	sum.Diagnostics = res.Diagnostics.Len()

	printSummary(out, sum, c.Diagnostics.Path, opts.DryRun)
	logSummary(log, sum)
	if runErr != nil {
		return sum, eris.Wrapf(runErr, "sync %s", opts.Category)
	}
	return sum, nil
}

func printSummary(w io.Writer, s model.SyncSummary, diagnosticsPath string, dryRun bool) {
	if w == nil {
		w = os.Stdout
	}
	title := fmt.Sprintf("%s (%s)", s.Category, s.Mode)
	if dryRun {
		title += " [dry run]"
	}
	fmt.Fprintf(w, "Category:    %s\n", title)
	fmt.Fprintf(w, "Processed:   %d\n", s.Processed)
	fmt.Fprintf(w, "Inserted:    %d\n", s.Inserted)
	fmt.Fprintf(w, "Updated:     %d\n", s.Updated)
	if s.Mode == model.ModeReplace {
		fmt.Fprintf(w, "Deleted:     %d\n", s.Deleted)
	}
	fmt.Fprintf(w, "Errored:     %d\n", s.Errored)
	fmt.Fprintf(w, "Fallbacks:   %d\n", s.Fallbacks)
	fmt.Fprintf(w, "Diagnostics: %d (%s)\n", s.Diagnostics, diagnosticsPath)
	if len(s.Failed) > 0 {
		fmt.Fprintln(w, "Failed:")
		for _, f := range s.Failed {
			fmt.Fprintf(w, "  - %s [%s, %s]: %s\n", f.Title, f.Operation, f.ErrorType, f.Error)
		}
	}
}

func logSummary(log *zap.Logger, s model.SyncSummary) {
	log.Info("run summary",
		zap.String("mode", string(s.Mode)),
		zap.Int("processed", s.Processed),
		zap.Int("inserted", s.Inserted),
		zap.Int("updated", s.Updated),
		zap.Int("deleted", s.Deleted),
		zap.Int("errored", s.Errored),
		zap.Int("fallbacks", s.Fallbacks),
		zap.Int("diagnostics", s.Diagnostics),
		zap.Bool("balanced", s.Balanced()),
	)
}
