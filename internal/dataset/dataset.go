// Package dataset resolves where NDWI samples come from: GeoJSON and
// shapefile exports on disk or behind a URL, or a sample table previously
// imported into SQLite or Postgres.
package dataset

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lake-route/internal/config"
	"github.com/sells-group/lake-route/internal/db"
	"github.com/sells-group/lake-route/internal/fetcher"
	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/resilience"
)

// Table is the sample table used by both stores.
const Table = "ndwi_samples"

// Source is an ndwi.Source that may hold resources until closed.
type Source interface {
	ndwi.Source
	Close() error
}

// Store persists imported datasets and serves them back as a Source.
type Store interface {
	Source
	Migrate(ctx context.Context) error
	ReplaceSamples(ctx context.Context, source string, res ndwi.ParseResult) (Import, error)
	LastImport(ctx context.Context) (*Import, error)
}

// Import records one dataset import into a store.
type Import struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Points     int       `json:"points"`
	Skipped    int       `json:"skipped"`
	ImportedAt time.Time `json:"imported_at"`
}

// FromConfig opens the source named by cfg.Dataset.Source.
func FromConfig(ctx context.Context, cfg *config.Config) (Source, error) {
	ds := cfg.Dataset
	switch ds.Source {
	case "":
		return nil, eris.New("dataset: no source configured")
	case "sqlite":
		return OpenStore(ctx, ds.Source, ds)
	case "postgres":
		st, err := OpenStore(ctx, ds.Source, ds)
		if err != nil {
			return nil, err
		}
		return Guard(st, newBreaker(st.Name(), cfg.Fetch)), nil
	}

	if fetcher.IsRemote(ds.Source) {
		f := fetcher.New(fetcher.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})
		src := NewRemote(ds.Source, ds.NDWIField, ds.TempDir, f)
		return Guard(src, newBreaker(src.Name(), cfg.Fetch)), nil
	}
	return FileSource(ds.Source, ds.NDWIField, ds.TempDir), nil
}

func newBreaker(name string, fc config.FetchConfig) *resilience.Breaker {
	return resilience.New(resilience.Config{
		Name:             name,
		FailureThreshold: fc.BreakerFailures,
		ResetTimeout:     time.Duration(fc.BreakerResetSecs) * time.Second,
	})
}

// OpenStore opens the named store ("sqlite" or "postgres") and migrates it.
func OpenStore(ctx context.Context, kind string, ds config.DatasetConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch kind {
	case "sqlite":
		st, err = OpenSQLite(ctx, ds.SQLitePath)
	case "postgres":
		st, err = OpenPostgres(ctx, ds.DatabaseURL)
	default:
		return nil, eris.Errorf("dataset: unknown store %q", kind)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// OpenPostgres connects to databaseURL and returns a PostgresStore that owns
// the pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open postgres")
	}
	st := NewPostgresStore(pool)
	st.closer = pool.Close
	return st, nil
}

// FileSource picks a reader for path by its extension: .zip archives, .shp
// shapefiles, and GeoJSON for anything else.
func FileSource(path, field, tempDir string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return &Archive{Path: path, Field: field, TempDir: tempDir}
	case ".shp":
		return &Shapefile{Path: path, Field: field}
	default:
		return &GeoJSONFile{Path: path, Field: field}
	}
}
