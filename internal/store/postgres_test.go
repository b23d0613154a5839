package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poi-sync/internal/model"
	"github.com/sells-group/poi-sync/internal/resilience"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func locationRows(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return mock.NewRows(locationColumns)
}

func TestPostgresStore_FindByTitle_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, title, category, detailed_description, location_string, links, images, audio FROM locations WHERE title = \$1`).
		WithArgs("UBS Centro").
		WillReturnRows(locationRows(mock))

	rec, err := s.FindByTitle(context.Background(), "UBS Centro")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByTitle_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM locations WHERE title = \$1`).
		WithArgs("UBS Centro").
		WillReturnRows(locationRows(mock).
			AddRow("id-1", "UBS Centro", "saude", "Endereço: Rua Amador Bueno", "-23.933600,-46.328300", nil, strPtr("img.jpg"), nil))

	rec, err := s.FindByTitle(context.Background(), "UBS Centro")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, "-23.933600,-46.328300", rec.LocationString)
	require.NotNil(t, rec.Images)
	assert.Equal(t, "img.jpg", *rec.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByTitle_Multiple(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM locations WHERE title = \$1`).
		WithArgs("UBS Centro").
		WillReturnRows(locationRows(mock).
			AddRow("id-1", "UBS Centro", "saude", "", "", nil, nil, nil).
			AddRow("id-2", "UBS Centro", "saude", "", "", nil, nil, nil))

	rec, err := s.FindByTitle(context.Background(), "UBS Centro")
	assert.ErrorIs(t, err, ErrMultipleMatches)
	assert.Nil(t, rec)
}

func TestPostgresStore_FindByTitle_ConnectionLost(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM locations WHERE title = \$1`).
		WithArgs("UBS Centro").
		WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"})

	_, err := s.FindByTitle(context.Background(), "UBS Centro")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := model.NewRemoteRecord(model.CanonicalRecord{
		Name:      "UBS Centro",
		Address:   "Rua Amador Bueno, 333",
		Category:  "saude",
		Latitude:  -23.9336,
		Longitude: -46.3283,
	}, "")

	mock.ExpectExec(`INSERT INTO locations`).
		WithArgs(pgxmock.AnyArg(), "UBS Centro", "saude", "Endereço: Rua Amador Bueno, 333", "-23.933600,-46.328300", (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_Rejected(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO locations`).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value in column"})

	_, err := s.Create(context.Background(), ubsCentro())
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), `postgres: create "UBS Centro"`)
}

func TestPostgresStore_Update(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`UPDATE locations SET detailed_description = \$1, location_string = \$2`).
		WithArgs("Endereço: Rua Nova", "-23.960800,-46.333600", "id-1").
		WillReturnRows(locationRows(mock).
			AddRow("id-1", "UBS Centro", "saude", "Endereço: Rua Nova", "-23.960800,-46.333600", nil, strPtr("img.jpg"), nil))

	rec, err := s.Update(context.Background(), "id-1", model.RecordPatch{
		DetailedDescription: "Endereço: Rua Nova",
		LocationString:      "-23.960800,-46.333600",
	})
	require.NoError(t, err)
	assert.Equal(t, "-23.960800,-46.333600", rec.LocationString)
	require.NotNil(t, rec.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`UPDATE locations`).
		WithArgs("d", "l", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.Update(context.Background(), "missing", model.RecordPatch{DetailedDescription: "d", LocationString: "l"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_DeleteWhere(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM locations WHERE category = \$1`).
		WithArgs("saude").
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := s.DeleteWhere(context.Background(), "saude")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"locations"}, locationColumns).WillReturnResult(2)

	a, b := ubsCentro(), ubsCentro()
	b.Title = "UBS Embaré"
	out, err := s.CreateBatch(context.Background(), []model.RemoteRecord{a, b})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEmpty(t, out[0].ID)
	assert.NotEqual(t, out[0].ID, out[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateBatch_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"locations"}, locationColumns).WillReturnError(assert.AnError)

	out, err := s.CreateBatch(context.Background(), []model.RemoteRecord{ubsCentro()})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "create batch of 1")
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS locations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
