// Package reconcile writes a canonical record set into the remote store,
// either record by record (merge) or by replacing a whole category.
package reconcile

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/model"
	"github.com/sells-group/poi-sync/internal/resilience"
	"github.com/sells-group/poi-sync/internal/store"
)

// ErrStoreUnreachable fails a run whose very first remote call could not
// reach the store.
var ErrStoreUnreachable = eris.New("reconcile: remote store unreachable")

// Operation names used in logs and failed-record reports.
const (
	OpFind        = "find"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpCreateBatch = "create_batch"
)

// ProgressFunc is called after each record is settled.
type ProgressFunc func(done, total int)

// Synchronizer reconciles canonical records against a LocationStore. It is
// the store's only writer and performs every call sequentially.
type Synchronizer struct {
	store      store.LocationStore
	pacer      *Pacer
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
	batchSize  int
	onProgress ProgressFunc
	log        *zap.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithPacer sets the pacer spacing writes.
func WithPacer(p *Pacer) Option {
	return func(s *Synchronizer) { s.pacer = p }
}

// WithRetry sets the retry policy for remote calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(s *Synchronizer) { s.retry = cfg }
}

// WithBreaker guards remote calls with cb.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(s *Synchronizer) { s.breaker = cb }
}

// WithBatchSize sets the replace batch size.
func WithBatchSize(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Synchronizer) { s.onProgress = fn }
}

// New returns a Synchronizer over st.
func New(st store.LocationStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:     st,
		pacer:     NewPacer(0),
		retry:     resilience.DefaultRetryConfig(),
		batchSize: 50,
		log:       zap.L().With(zap.String("component", "reconcile")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync reconciles records in order: an existing record with the same title
// gets its location and description updated, anything else is created.
// A failed record is counted as errored and the run moves on, so the
// summary always balances. The returned error is non-nil only when the
// store is unreachable on the first call or ctx ends the run early.
func (s *Synchronizer) Sync(ctx context.Context, category string, records []model.CanonicalRecord, boilerplate string) (model.SyncSummary, error) {
	sum := model.SyncSummary{Category: category, Mode: model.ModeMerge, Processed: len(records)}
	log := s.log.With(zap.String("category", category), zap.String("mode", string(model.ModeMerge)))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			s.abandon(&sum, records[i:], OpFind, err)
			return sum, eris.Wrap(err, "reconcile: sync interrupted")
		}

		op, err := s.syncOne(ctx, rec, boilerplate)
		switch {
		case err == nil && op == OpCreate:
			sum.Inserted++
		case err == nil:
			sum.Updated++
		case i == 0 && op == OpFind && resilience.ClassifyError(err) == resilience.ErrorTypeTransient:
			s.abandon(&sum, records, OpFind, err)
			log.Error("remote store unreachable", zap.Error(err))
			return sum, eris.Wrap(ErrStoreUnreachable, err.Error())
		default:
			s.fail(&sum, rec.Name, op, err)
			log.Warn("record failed",
				zap.String("title", rec.Name),
				zap.String("key", rec.Key),
				zap.String("operation", op),
				zap.Error(err),
			)
		}
		s.progress(i+1, len(records))
	}

	log.Info("sync complete",
		zap.Int("processed", sum.Processed),
		zap.Int("inserted", sum.Inserted),
		zap.Int("updated", sum.Updated),
		zap.Int("errored", sum.Errored),
	)
	return sum, nil
}

// syncOne returns the operation it ended on and that operation's error.
func (s *Synchronizer) syncOne(ctx context.Context, rec model.CanonicalRecord, boilerplate string) (string, error) {
	existing, err := call(ctx, s, OpFind, rec.Name, func(ctx context.Context) (*model.RemoteRecord, error) {
		return s.store.FindByTitle(ctx, rec.Name)
	})
	if err != nil {
		return OpFind, err
	}

	if existing == nil {
		return OpCreate, s.create(ctx, rec, boilerplate)
	}

	patch := model.NewRecordPatch(rec, boilerplate)
	_, err = call(ctx, s, OpUpdate, rec.Name, func(ctx context.Context) (model.RemoteRecord, error) {
		return write(ctx, s.pacer, func(ctx context.Context) (model.RemoteRecord, error) {
			return s.store.Update(ctx, existing.ID, patch)
		})
	})
	return OpUpdate, err
}

// create inserts rec at most once. A create that failed in transit may
// still have been committed, so every retry looks the title up first and a
// final uncertain failure is checked the same way.
func (s *Synchronizer) create(ctx context.Context, rec model.CanonicalRecord, boilerplate string) error {
	attempt := 0
	_, err := call(ctx, s, OpCreate, rec.Name, func(ctx context.Context) (model.RemoteRecord, error) {
		attempt++
		if attempt > 1 {
			found, err := s.store.FindByTitle(ctx, rec.Name)
			if err != nil {
				return model.RemoteRecord{}, err
			}
			if found != nil {
				return *found, nil
			}
		}
		return write(ctx, s.pacer, func(ctx context.Context) (model.RemoteRecord, error) {
			return s.store.Create(ctx, model.NewRemoteRecord(rec, boilerplate))
		})
	})
	if err == nil || !uncertain(ctx, err) {
		return err
	}

	found, ferr := s.store.FindByTitle(ctx, rec.Name)
	if ferr == nil && found != nil {
		s.log.Info("create confirmed after failure", zap.String("title", rec.Name), zap.Error(err))
		return nil
	}
	return err
}

// uncertain reports whether a write that failed with err may have reached
// the store anyway.
func uncertain(ctx context.Context, err error) bool {
	return ctx.Err() == nil &&
		!eris.Is(err, resilience.ErrCircuitOpen) &&
		resilience.ClassifyError(err) == resilience.ErrorTypeTransient
}

// missing returns the records of recs whose title is not in the store.
func (s *Synchronizer) missing(ctx context.Context, recs []model.RemoteRecord) ([]model.RemoteRecord, error) {
	var out []model.RemoteRecord
	for _, r := range recs {
		found, err := s.store.FindByTitle(ctx, r.Title)
		if err != nil {
			return nil, err
		}
		if found == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func call[T any](ctx context.Context, s *Synchronizer, op, title string, fn func(context.Context) (T, error)) (T, error) {
	cfg := s.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(op, title)
	}
	return resilience.Call(ctx, s.breaker, cfg, fn)
}

func (s *Synchronizer) fail(sum *model.SyncSummary, title, op string, err error) {
	sum.Errored++
	sum.Failed = append(sum.Failed, model.FailedRecord{
		Title:     title,
		Operation: op,
		Error:     err.Error(),
		ErrorType: resilience.ClassifyError(err),
	})
}

// abandon counts every record in rest as errored with cause.
func (s *Synchronizer) abandon(sum *model.SyncSummary, rest []model.CanonicalRecord, op string, cause error) {
	for _, rec := range rest {
		s.fail(sum, rec.Name, op, cause)
	}
}

func (s *Synchronizer) progress(done, total int) {
	if s.onProgress != nil {
		s.onProgress(done, total)
	}
}
