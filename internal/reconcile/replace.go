package reconcile

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/model"
	"github.com/sells-group/poi-sync/internal/resilience"
	"github.com/sells-group/poi-sync/internal/store"
)

// Replace deletes every record of category and recreates it from records
// in fixed-size batches. A failed batch counts its records as errored and
// later batches still run. A failed delete aborts the run before any
// create, since creating over surviving records would duplicate them.
func (s *Synchronizer) Replace(ctx context.Context, category string, records []model.CanonicalRecord, boilerplate string) (model.SyncSummary, error) {
	sum := model.SyncSummary{Category: category, Mode: model.ModeReplace, Processed: len(records)}
	log := s.log.With(zap.String("category", category), zap.String("mode", string(model.ModeReplace)))

	deleted, err := call(ctx, s, OpDelete, category, func(ctx context.Context) (int, error) {
		return write(ctx, s.pacer, func(ctx context.Context) (int, error) {
			return s.store.DeleteWhere(ctx, category)
		})
	})
	if err != nil {
		s.abandon(&sum, records, OpDelete, err)
		if resilience.ClassifyError(err) == resilience.ErrorTypeTransient {
			log.Error("remote store unreachable", zap.Error(err))
			return sum, eris.Wrap(ErrStoreUnreachable, err.Error())
		}
		return sum, eris.Wrapf(err, "reconcile: delete category %q", category)
	}
	sum.Deleted = deleted
	log.Info("category cleared", zap.Int("deleted", deleted))

	batcher, canBatch := s.store.(store.BatchCreator)
	done := 0
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batch := records[start:end]

		if err := ctx.Err(); err != nil {
			s.abandon(&sum, records[start:], OpCreate, err)
			return sum, eris.Wrap(err, "reconcile: replace interrupted")
		}

		if canBatch {
			s.createBatch(ctx, batcher, &sum, batch, boilerplate, log)
		} else {
			for _, rec := range batch {
				s.createOne(ctx, &sum, rec, boilerplate, log)
			}
		}
		done += len(batch)
		s.progress(done, len(records))
	}

	log.Info("replace complete",
		zap.Int("processed", sum.Processed),
		zap.Int("deleted", sum.Deleted),
		zap.Int("inserted", sum.Inserted),
		zap.Int("errored", sum.Errored),
	)
	return sum, nil
}

// createBatch inserts batch without duplicating records a lost reply left
// behind: retries resend only the titles still missing, and an uncertain
// failure is checked title by title before anything is counted errored.
func (s *Synchronizer) createBatch(ctx context.Context, bc store.BatchCreator, sum *model.SyncSummary, batch []model.CanonicalRecord, boilerplate string, log *zap.Logger) {
	pending := make([]model.RemoteRecord, len(batch))
	for i, rec := range batch {
		pending[i] = model.NewRemoteRecord(rec, boilerplate)
	}

	attempt := 0
	_, err := call(ctx, s, OpCreateBatch, batch[0].Name, func(ctx context.Context) ([]model.RemoteRecord, error) {
		attempt++
		if attempt > 1 {
			rest, err := s.missing(ctx, pending)
			if err != nil {
				return nil, err
			}
			pending = rest
			if len(pending) == 0 {
				return nil, nil
			}
		}
		return write(ctx, s.pacer, func(ctx context.Context) ([]model.RemoteRecord, error) {
			return bc.CreateBatch(ctx, pending)
		})
	})
	if err == nil {
		sum.Inserted += len(batch)
		return
	}

	if uncertain(ctx, err) {
		if rest, verr := s.missing(ctx, pending); verr == nil {
			pending = rest
		}
	}
	failed := withTitles(batch, pending)
	sum.Inserted += len(batch) - len(failed)
	if len(failed) == 0 {
		log.Info("batch confirmed after failure", zap.String("first", batch[0].Name), zap.Error(err))
		return
	}
	s.abandon(sum, failed, OpCreateBatch, err)
	log.Warn("batch failed",
		zap.String("first", batch[0].Name),
		zap.Int("size", len(batch)),
		zap.Int("failed", len(failed)),
		zap.Error(err),
	)
}

// withTitles returns the records of batch whose name is a title in recs.
func withTitles(batch []model.CanonicalRecord, recs []model.RemoteRecord) []model.CanonicalRecord {
	titles := make(map[string]bool, len(recs))
	for _, r := range recs {
		titles[r.Title] = true
	}
	var out []model.CanonicalRecord
	for _, rec := range batch {
		if titles[rec.Name] {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Synchronizer) createOne(ctx context.Context, sum *model.SyncSummary, rec model.CanonicalRecord, boilerplate string, log *zap.Logger) {
	if err := s.create(ctx, rec, boilerplate); err != nil {
		s.fail(sum, rec.Name, OpCreate, err)
		log.Warn("record failed",
			zap.String("title", rec.Name),
			zap.String("operation", OpCreate),
			zap.Error(err),
		)
		return
	}
	sum.Inserted++
}
