package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/config"
	"github.com/sells-group/poi-sync/internal/diagnostics"
	"github.com/sells-group/poi-sync/internal/geo"
	"github.com/sells-group/poi-sync/internal/identity"
	"github.com/sells-group/poi-sync/internal/pipeline"
	"github.com/sells-group/poi-sync/internal/reconcile"
	"github.com/sells-group/poi-sync/internal/resilience"
	"github.com/sells-group/poi-sync/internal/store"
	"github.com/sells-group/poi-sync/pkg/notion"
)

// newPipeline wires identity, bounds and the region table from c.
func newPipeline(c *config.Config) (*pipeline.Pipeline, error) {
	key, err := identity.KeyFuncFor(c.Identity.Normalize)
	if err != nil {
		return nil, eris.Wrap(err, "identity")
	}
	engine, err := geo.EngineFor(c.Geo.RulesFile)
	if err != nil {
		return nil, eris.Wrap(err, "region table")
	}
	b := c.Geo.Bounds
	return pipeline.New(
		pipeline.WithKeyFunc(key),
		pipeline.WithBounds(geo.NewBounds(b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)),
		pipeline.WithEngine(engine),
	), nil
}

// openStore returns the configured LocationStore, or an empty in-memory
// one for dry runs.
func openStore(ctx context.Context, c *config.Config, dryRun bool) (store.LocationStore, error) {
	if dryRun {
		return store.NewMemory(), nil
	}
	switch c.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, c.Store.DatabaseURL)
	case "sqlite":
		s, err := store.NewSQLite(c.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		return s, nil
	case "notion":
		client := notion.NewClient(c.Notion.Token, notion.WithRateLimit(c.Notion.RateLimit))
		return store.NewNotion(client, c.Notion.DatabaseID, store.DefaultNotionSchema()), nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
}

// newSynchronizer applies the sync section of c to a Synchronizer over st.
func newSynchronizer(c *config.Config, st store.LocationStore, progress reconcile.ProgressFunc) *reconcile.Synchronizer {
	cbCfg := c.Sync.Circuit.Policy()
	cbCfg.OnStateChange = resilience.StateLogger(c.Store.Driver)

	return reconcile.New(st,
		reconcile.WithPacer(reconcile.NewPacer(c.Sync.WriteDelay())),
		reconcile.WithRetry(c.Sync.Retry.Policy()),
		reconcile.WithBreaker(resilience.NewCircuitBreaker(cbCfg)),
		reconcile.WithBatchSize(c.Sync.BatchSize),
		reconcile.WithProgress(progress),
	)
}

// newProgress returns a progress bar callback when stderr is a terminal.
func newProgress(total int, description string) reconcile.ProgressFunc {
	if total == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, _ int) {
		_ = bar.Set(done)
	}
}

// writeDiagnostics writes the manual-review outputs configured in c and
// returns the paths written. Archive failures are logged, not returned.
func writeDiagnostics(ctx context.Context, c *config.Config, category string, rep *diagnostics.Reporter) ([]string, error) {
	log := zap.L().With(zap.String("component", "diagnostics"), zap.String("category", category))

	paths := []string{c.Diagnostics.Path}
	if err := rep.WriteJSON(c.Diagnostics.Path); err != nil {
		return nil, err
	}
	if c.Diagnostics.XLSXPath != "" {
		if err := rep.WriteXLSX(c.Diagnostics.XLSXPath); err != nil {
			return paths, err
		}
		paths = append(paths, c.Diagnostics.XLSXPath)
	}
	log.Info("diagnostics written", zap.Int("entries", rep.Len()), zap.Strings("paths", paths))

	s3 := c.Diagnostics.S3
	if s3.Endpoint == "" {
		return paths, nil
	}
	archiver, err := diagnostics.NewS3Archiver(diagnostics.S3Options{
		Endpoint:  s3.Endpoint,
		Bucket:    s3.Bucket,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		UseSSL:    s3.UseSSL,
		Prefix:    s3.Prefix,
	})
	if err != nil {
		log.Warn("diagnostics archive disabled", zap.Error(err))
		return paths, nil
	}
	for _, p := range paths {
		key, err := archiver.Archive(ctx, category, p)
		if err != nil {
			log.Warn("archive diagnostics failed", zap.String("path", p), zap.Error(err))
			continue
		}
		log.Info("diagnostics archived", zap.String("object", key))
	}
	return paths, nil
}

// logBuild reports the side products of a pipeline build.
func logBuild(log *zap.Logger, res *pipeline.Result) {
	for _, s := range res.Skipped {
		log.Warn("source file skipped", zap.String("file", s.File), zap.Error(s.Error))
	}
	for _, d := range res.Duplicates {
		log.Debug("duplicate discarded",
			zap.String("name", d.Name),
			zap.String("kept_from", d.KeptFrom),
			zap.String("discarded_from", d.Discarded),
		)
	}
	log.Info("canonical set built",
		zap.Int("records", len(res.Records)),
		zap.Int("duplicates", len(res.Duplicates)),
		zap.Int("fallbacks", res.Fallbacks),
		zap.Int("diagnostics", res.Diagnostics.Len()),
	)
}
