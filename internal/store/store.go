// Package store defines the remote location store and its backends.
//
// The pipeline is the only writer of the categories it manages. Backends
// make no attempt at optimistic concurrency: the last write wins.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/model"
)

var (
	// ErrNotFound is returned by Update when the id does not exist.
	ErrNotFound = eris.New("store: record not found")
	// ErrMultipleMatches is returned by FindByTitle when more than one
	// record carries the title.
	ErrMultipleMatches = eris.New("store: multiple records match title")
)

// LocationStore is the remote store the synchronizer reconciles against.
type LocationStore interface {
	// FindByTitle returns the record with the exact title, or nil when
	// there is none.
	FindByTitle(ctx context.Context, title string) (*model.RemoteRecord, error)
	// Create inserts rec and returns it with its assigned id.
	Create(ctx context.Context, rec model.RemoteRecord) (model.RemoteRecord, error)
	// Update changes only the patched fields of the record with id.
	Update(ctx context.Context, id string, patch model.RecordPatch) (model.RemoteRecord, error)
	// DeleteWhere removes every record of category and returns the count.
	DeleteWhere(ctx context.Context, category string) (int, error)
	Close() error
}

// BatchCreator is implemented by backends that can insert many records in
// one round trip. A batch either lands completely or not at all.
type BatchCreator interface {
	CreateBatch(ctx context.Context, recs []model.RemoteRecord) ([]model.RemoteRecord, error)
}

// Migrator is implemented by backends that own their schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Lister is implemented by backends that can enumerate a category. It backs
// the dry-run report and tests.
type Lister interface {
	List(ctx context.Context, category string) ([]model.RemoteRecord, error)
}

func pickOne(matches []model.RemoteRecord, title string) (*model.RemoteRecord, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		rec := matches[0]
		return &rec, nil
	default:
		return nil, eris.Wrapf(ErrMultipleMatches, "title %q", title)
	}
}
