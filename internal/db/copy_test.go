package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locationColumns = []string{"id", "title", "category"}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "locations", locationColumns, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"locations"}, locationColumns).WillReturnResult(2)

	rows := [][]any{{"a", "UBS Centro", "saude"}, {"b", "UBS Vila Mathias", "saude"}}
	n, err := CopyFrom(context.Background(), mock, "locations", locationColumns, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"poi", "locations"}, locationColumns).WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "poi.locations", locationColumns, [][]any{{"a", "UBS Centro", "saude"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_ShortWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"locations"}, locationColumns).WillReturnResult(1)

	rows := [][]any{{"a", "x", "saude"}, {"b", "y", "saude"}}
	_, err = CopyFrom(context.Background(), mock, "locations", locationColumns, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrote 1 of 2 rows")
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"locations"}, locationColumns).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "locations", locationColumns, [][]any{{"a", "x", "saude"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO locations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"locations"}, Identifier("locations"))
	assert.Equal(t, pgx.Identifier{"poi", "locations"}, Identifier("poi.locations"))
}
