package dataset

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lake-route/internal/ndwi"
)

// SQLiteStore keeps imported samples in a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens a SQLite database at the given path and configures WAL mode.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, path: dsn}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ndwi_samples (
	seq     INTEGER PRIMARY KEY,
	lng     REAL NOT NULL,
	lat     REAL NOT NULL,
	ndwi    REAL NOT NULL,
	quality INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_imports (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	points      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	imported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ndwi_samples_quality ON ndwi_samples(quality);
`

// Migrate creates the sample and import tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Name implements ndwi.Source.
func (s *SQLiteStore) Name() string { return "sqlite:" + s.path }

// ReplaceSamples swaps the stored samples for res in one transaction and
// records the import.
func (s *SQLiteStore) ReplaceSamples(ctx context.Context, source string, res ndwi.ParseResult) (Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM ndwi_samples`); err != nil {
		return Import{}, eris.Wrap(err, "sqlite: clear samples")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ndwi_samples (seq, lng, lat, ndwi, quality) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, smp := range res.Samples {
		if _, err := stmt.ExecContext(ctx, i, smp.Longitude, smp.Latitude, smp.NDWI, smp.Quality); err != nil {
			return Import{}, eris.Wrapf(err, "sqlite: insert sample %d", i)
		}
	}

	imp := Import{
		ID:         uuid.New().String(),
		Source:     source,
		Points:     len(res.Samples),
		Skipped:    res.Skipped,
		ImportedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_imports (id, source, points, skipped, imported_at) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Points, imp.Skipped, imp.ImportedAt,
	); err != nil {
		return Import{}, eris.Wrap(err, "sqlite: record import")
	}

	if err := tx.Commit(); err != nil {
		return Import{}, eris.Wrap(err, "sqlite: commit")
	}
	return imp, nil
}

// LastImport returns the most recent import, or nil when nothing was imported.
func (s *SQLiteStore) LastImport(ctx context.Context) (*Import, error) {
	var imp Import
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, points, skipped, imported_at FROM dataset_imports ORDER BY imported_at DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Points, &imp.Skipped, &imp.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last import")
	}
	return &imp, nil
}

// Samples implements ndwi.Source. Rows come back in import order.
func (s *SQLiteStore) Samples(ctx context.Context) (ndwi.ParseResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lng, lat, ndwi FROM ndwi_samples ORDER BY seq`)
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "sqlite: query samples")
	}
	defer rows.Close() //nolint:errcheck

	var res ndwi.ParseResult
	for rows.Next() {
		var lng, lat, v float64
		if err := rows.Scan(&lng, &lat, &v); err != nil {
			return ndwi.ParseResult{}, eris.Wrap(err, "sqlite: scan sample")
		}
		res.Add(lng, lat, v)
	}
	if err := rows.Err(); err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "sqlite: iterate samples")
	}
	return res, nil
}
