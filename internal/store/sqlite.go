package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/poi-sync/internal/model"
)

// SQLiteStore implements LocationStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id                   TEXT PRIMARY KEY,
	title                TEXT NOT NULL,
	category             TEXT NOT NULL,
	detailed_description TEXT NOT NULL DEFAULT '',
	location_string      TEXT NOT NULL DEFAULT '',
	links                TEXT,
	images               TEXT,
	audio                TEXT,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_locations_title ON locations(title);
CREATE INDEX IF NOT EXISTS idx_locations_category ON locations(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindByTitle(ctx context.Context, title string) (*model.RemoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectLocation+` WHERE title = ? ORDER BY created_at, rowid LIMIT 2`, title)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find %q", title)
	}
	defer rows.Close()

	var matches []model.RemoteRecord
	for rows.Next() {
		var rec model.RemoteRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %q", title)
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: find %q", title)
	}
	return pickOne(matches, title)
}

const sqliteInsert = `INSERT INTO locations (id, title, category, detailed_description, location_string, links, images, audio, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, ex execer, rec model.RemoteRecord, now time.Time) error {
	_, err := ex.ExecContext(ctx, sqliteInsert,
		rec.ID, rec.Title, rec.Category, rec.DetailedDescription, rec.LocationString,
		rec.Links, rec.Images, rec.Audio, now, now,
	)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, rec model.RemoteRecord) (model.RemoteRecord, error) {
	rec.ID = uuid.NewString()
	if err := insertRecord(ctx, s.db, rec, time.Now().UTC()); err != nil {
		return model.RemoteRecord{}, eris.Wrapf(err, "sqlite: create %q", rec.Title)
	}
	return rec, nil
}

// CreateBatch inserts recs inside one transaction.
func (s *SQLiteStore) CreateBatch(ctx context.Context, recs []model.RemoteRecord) ([]model.RemoteRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	out := make([]model.RemoteRecord, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.NewString()
		if err := insertRecord(ctx, tx, rec, now); err != nil {
			return nil, eris.Wrapf(err, "sqlite: batch create %q", rec.Title)
		}
		out = append(out, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit batch")
	}
	return out, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch model.RecordPatch) (model.RemoteRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET detailed_description = ?, location_string = ?, updated_at = ? WHERE id = ?`,
		patch.DetailedDescription, patch.LocationString, time.Now().UTC(), id,
	)
	if err != nil {
		return model.RemoteRecord{}, eris.Wrapf(err, "sqlite: update %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return model.RemoteRecord{}, err
	}

	var rec model.RemoteRecord
	if err := scanRecord(s.db.QueryRowContext(ctx, selectLocation+` WHERE id = ?`, id), &rec); err != nil {
		return model.RemoteRecord{}, eris.Wrapf(err, "sqlite: reload %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) DeleteWhere(ctx context.Context, category string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE category = ?`, category)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete category %q", category)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

// List returns the records of category ordered by title.
func (s *SQLiteStore) List(ctx context.Context, category string) ([]model.RemoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectLocation+` WHERE category = ? ORDER BY title`, category)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %q", category)
	}
	defer rows.Close()

	var out []model.RemoteRecord
	for rows.Next() {
		var rec model.RemoteRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list rows")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: update %s", id)
	}
	return nil
}
