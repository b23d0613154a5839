package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/db"
	"github.com/sells-group/poi-sync/internal/model"
)

// PostgresStore implements LocationStore on a Postgres table.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to databaseURL. The connection is pinged once so an
// unreachable database fails before the first record.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(classifyPg(err), "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id                   TEXT PRIMARY KEY,
	title                TEXT NOT NULL,
	category             TEXT NOT NULL,
	detailed_description TEXT NOT NULL DEFAULT '',
	location_string      TEXT NOT NULL DEFAULT '',
	links                TEXT,
	images               TEXT,
	audio                TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_locations_title ON locations(title);
CREATE INDEX IF NOT EXISTS idx_locations_category ON locations(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) FindByTitle(ctx context.Context, title string) (*model.RemoteRecord, error) {
	rows, err := s.pool.Query(ctx, selectLocation+` WHERE title = $1 ORDER BY created_at LIMIT 2`, title)
	if err != nil {
		return nil, eris.Wrapf(classifyPg(err), "postgres: find %q", title)
	}
	defer rows.Close()

	var matches []model.RemoteRecord
	for rows.Next() {
		var rec model.RemoteRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %q", title)
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(classifyPg(err), "postgres: find %q", title)
	}
	return pickOne(matches, title)
}

func (s *PostgresStore) Create(ctx context.Context, rec model.RemoteRecord) (model.RemoteRecord, error) {
	rec.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO locations (id, title, category, detailed_description, location_string, links, images, audio) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Title, rec.Category, rec.DetailedDescription, rec.LocationString, rec.Links, rec.Images, rec.Audio,
	)
	if err != nil {
		return model.RemoteRecord{}, eris.Wrapf(classifyPg(err), "postgres: create %q", rec.Title)
	}
	return rec, nil
}

// CreateBatch writes recs with a single COPY, so the batch lands whole or
// not at all.
func (s *PostgresStore) CreateBatch(ctx context.Context, recs []model.RemoteRecord) ([]model.RemoteRecord, error) {
	out := make([]model.RemoteRecord, len(recs))
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rec.ID = uuid.NewString()
		out[i] = rec
		rows[i] = []any{rec.ID, rec.Title, rec.Category, rec.DetailedDescription, rec.LocationString, rec.Links, rec.Images, rec.Audio}
	}
	if _, err := db.CopyFrom(ctx, s.pool, locationTable, locationColumns, rows); err != nil {
		return nil, eris.Wrapf(classifyPg(err), "postgres: create batch of %d", len(recs))
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch model.RecordPatch) (model.RemoteRecord, error) {
	var rec model.RemoteRecord
	row := s.pool.QueryRow(ctx,
		`UPDATE locations SET detailed_description = $1, location_string = $2, updated_at = now() WHERE id = $3 RETURNING id, title, category, detailed_description, location_string, links, images, audio`,
		patch.DetailedDescription, patch.LocationString, id,
	)
	if err := scanRecord(row, &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RemoteRecord{}, eris.Wrapf(ErrNotFound, "postgres: update %s", id)
		}
		return model.RemoteRecord{}, eris.Wrapf(classifyPg(err), "postgres: update %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) DeleteWhere(ctx context.Context, category string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM locations WHERE category = $1`, category)
	if err != nil {
		return 0, eris.Wrapf(classifyPg(err), "postgres: delete category %q", category)
	}
	return int(tag.RowsAffected()), nil
}

// List returns the records of category ordered by title.
func (s *PostgresStore) List(ctx context.Context, category string) ([]model.RemoteRecord, error) {
	rows, err := s.pool.Query(ctx, selectLocation+` WHERE category = $1 ORDER BY title`, category)
	if err != nil {
		return nil, eris.Wrapf(classifyPg(err), "postgres: list %q", category)
	}
	defer rows.Close()

	var out []model.RemoteRecord
	for rows.Next() {
		var rec model.RemoteRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: scan")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list rows")
}
