package dataset

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/fetcher"
	"github.com/sells-group/lake-route/internal/ndwi"
)

// GeoJSONFile reads a GeoJSON FeatureCollection from disk.
type GeoJSONFile struct {
	Path  string
	Field string
}

// Name implements ndwi.Source.
func (g *GeoJSONFile) Name() string { return g.Path }

// Samples implements ndwi.Source.
func (g *GeoJSONFile) Samples(_ context.Context) (ndwi.ParseResult, error) {
	f, err := os.Open(g.Path)
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "dataset: open geojson")
	}
	defer f.Close() //nolint:errcheck

	return ndwi.ParseFeatureCollection(f, g.Field)
}

// Close implements Source.
func (g *GeoJSONFile) Close() error { return nil }

// Shapefile reads point shapes and a numeric NDWI attribute from a .shp file
// and its .dbf sidecar.
type Shapefile struct {
	Path  string
	Field string
}

// Name implements ndwi.Source.
func (s *Shapefile) Name() string { return s.Path }

// Samples implements ndwi.Source.
func (s *Shapefile) Samples(_ context.Context) (ndwi.ParseResult, error) {
	reader, err := shp.Open(s.Path)
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrapf(err, "dataset: open shapefile %s", s.Path)
	}
	defer func() { _ = reader.Close() }()

	field := s.Field
	if field == "" {
		field = ndwi.DefaultField
	}
	idx := fieldIndex(reader, field)
	if idx < 0 {
		return ndwi.ParseResult{}, eris.Errorf("dataset: shapefile %s has no %q attribute", s.Path, field)
	}

	var res ndwi.ParseResult
	for reader.Next() {
		n, shape := reader.Shape()
		x, y, ok := pointXY(shape)
		if !ok {
			res.Skipped++
			continue
		}

		raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			zap.L().Debug("dataset: skipping shapefile record without NDWI value",
				zap.Int("record", n), zap.String("value", raw))
			res.Skipped++
			continue
		}
		res.Add(x, y, v)
	}
	return res, nil
}

// Close implements Source.
func (s *Shapefile) Close() error { return nil }

func pointXY(shape shp.Shape) (float64, float64, bool) {
	switch p := shape.(type) {
	case *shp.Point:
		return p.X, p.Y, true
	case *shp.PointZ:
		return p.X, p.Y, true
	case *shp.PointM:
		return p.X, p.Y, true
	default:
		return 0, 0, false
	}
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// Archive extracts a .zip into a scratch directory and reads the first
// GeoJSON or shapefile it contains.
type Archive struct {
	Path    string
	Field   string
	TempDir string
}

// Name implements ndwi.Source.
func (a *Archive) Name() string { return a.Path }

// Samples implements ndwi.Source.
func (a *Archive) Samples(ctx context.Context) (ndwi.ParseResult, error) {
	if a.TempDir != "" {
		if err := os.MkdirAll(a.TempDir, 0o755); err != nil {
			return ndwi.ParseResult{}, eris.Wrap(err, "dataset: create temp dir")
		}
	}
	dir, err := os.MkdirTemp(a.TempDir, "ndwi-zip-*")
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "dataset: create extract dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	files, err := fetcher.ExtractZIP(a.Path, dir)
	if err != nil {
		return ndwi.ParseResult{}, eris.Wrap(err, "dataset: extract archive")
	}

	if p, ok := fetcher.FindByExt(files, ".geojson", ".json"); ok {
		return (&GeoJSONFile{Path: p, Field: a.Field}).Samples(ctx)
	}
	if p, ok := fetcher.FindByExt(files, ".shp"); ok {
		return (&Shapefile{Path: p, Field: a.Field}).Samples(ctx)
	}
	return ndwi.ParseResult{}, eris.Errorf("dataset: no .geojson or .shp file in %s", a.Path)
}

// Close implements Source.
func (a *Archive) Close() error { return nil }

func writeTo(path string, body io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "dataset: create file")
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, eris.Wrap(err, "dataset: write file")
	}
	return n, nil
}
