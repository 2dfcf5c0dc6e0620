package dataset

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/lake-route/internal/db"
	"github.com/sells-group/lake-route/internal/ndwi"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var sampleColumns = []string{"seq", "ndwi", "quality", "geom"}

// PostgresStore keeps imported samples in a PostGIS table.
type PostgresStore struct {
	pool   db.Pool
	closer func()
}

// NewPostgresStore creates a PostgresStore over pool. The caller keeps
// ownership of the pool.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Name implements ndwi.Source.
func (s *PostgresStore) Name() string { return "postgres:" + Table }

// Close releases the pool when the store opened it.
func (s *PostgresStore) Close() error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, s.pool, migrationFS, "migrations")
}

// ReplaceSamples swaps the stored samples for res and records the import in
// the same transaction.
func (s *PostgresStore) ReplaceSamples(ctx context.Context, source string, res ndwi.ParseResult) (Import, error) {
	rows := make([][]any, 0, len(res.Samples))
	for i, smp := range res.Samples {
		wkb, err := encodePoint(smp.Longitude, smp.Latitude)
		if err != nil {
			return Import{}, err
		}
		rows = append(rows, []any{int64(i), smp.NDWI, int16(smp.Quality), wkb})
	}

	imp := Import{
		ID:         uuid.New().String(),
		Source:     source,
		Points:     len(res.Samples),
		Skipped:    res.Skipped,
		ImportedAt: time.Now().UTC(),
	}
	record := func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO dataset_imports (id, source, points, skipped, imported_at) VALUES ($1, $2, $3, $4, $5)`,
			imp.ID, imp.Source, imp.Points, imp.Skipped, imp.ImportedAt,
		)
		return eris.Wrap(err, "postgres: record import")
	}
	if _, err := db.ReplaceAll(ctx, s.pool, Table, sampleColumns, rows, record); err != nil {
		return Import{}, eris.Wrap(err, "postgres: replace samples")
	}
	return imp, nil
}

// LastImport returns the most recent import, or nil when nothing was imported.
func (s *PostgresStore) LastImport(ctx context.Context) (*Import, error) {
	var imp Import
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, source, points, skipped, imported_at FROM dataset_imports ORDER BY imported_at DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Points, &imp.Skipped, &imp.ImportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: last import")
	}
	return &imp, nil
}

// Samples implements ndwi.Source. Rows come back in import order.
func (s *PostgresStore) Samples(ctx context.Context) (ndwi.ParseResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT ndwi, ST_AsEWKB(geom) FROM ndwi_samples ORDER BY seq`)
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "postgres: query samples")
	}
	defer rows.Close()

	var res ndwi.ParseResult
	for rows.Next() {
		var (
			v   float64
			wkb []byte
		)
		if err := rows.Scan(&v, &wkb); err != nil {
			return ndwi.ParseResult{}, eris.Wrap(err, "postgres: scan sample")
		}
		lng, lat, ok := decodePoint(wkb)
		if !ok {
			res.Skipped++
			continue
		}
		res.Add(lng, lat, v)
	}
	if err := rows.Err(); err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "postgres: iterate samples")
	}
	return res, nil
}

// encodePoint converts a coordinate to EWKB with SRID 4326.
func encodePoint(lng, lat float64) ([]byte, error) {
	pt := geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
	data, err := ewkb.Marshal(pt, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode point")
	}
	return data, nil
}

func decodePoint(data []byte) (float64, float64, bool) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return 0, 0, false
	}
	pt, ok := g.(*geom.Point)
	if !ok || pt.Empty() {
		return 0, 0, false
	}
	return pt.X(), pt.Y(), true
}
