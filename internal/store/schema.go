package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sells-group/poi-sync/internal/model"
	"github.com/sells-group/poi-sync/internal/resilience"
)

// locationTable is the table the SQL backends keep locations in.
const locationTable = "locations"

// locationColumns is the column order shared by every SELECT and COPY.
var locationColumns = []string{
	"id", "title", "category", "detailed_description", "location_string", "links", "images", "audio",
}

const selectLocation = `SELECT id, title, category, detailed_description, location_string, links, images, audio FROM locations`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, rec *model.RemoteRecord) error {
	return row.Scan(&rec.ID, &rec.Title, &rec.Category, &rec.DetailedDescription,
		&rec.LocationString, &rec.Links, &rec.Images, &rec.Audio)
}

// transientPgCodes are SQLSTATEs worth retrying: serialization failures,
// deadlocks, connection loss and server shutdown.
var transientPgCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"53300": true,
	"57P01": true,
	"57P03": true,
	"08000": true,
	"08003": true,
	"08006": true,
}

// classifyPg marks retryable Postgres errors as transient.
func classifyPg(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && transientPgCodes[pgErr.Code] {
		return resilience.NewTransientError(err, 0)
	}
	if pgconn.SafeToRetry(err) {
		return resilience.NewTransientError(err, 0)
	}
	return err
}
