package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/config"
	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/route"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const shoreGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"NDWI": 0.6}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.001, 0]}, "properties": {"NDWI": 0.05}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.002, 0]}, "properties": {"NDWI": 0.4}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.001, 0.0005]}, "properties": {"NDWI": 0.7}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.003, 0]}, "properties": {}}
  ]
}`

func shoreIndex() *ndwi.Index {
	return ndwi.NewIndex([]ndwi.Sample{
		ndwi.NewSample(0, 0, 0.6),
		ndwi.NewSample(0.001, 0, 0.05),
		ndwi.NewSample(0.002, 0, 0.4),
		ndwi.NewSample(0.001, 0.0005, 0.7),
	})
}

func shoreEvaluator() *route.Evaluator {
	return route.NewEvaluator(shoreIndex(), route.DefaultOptions())
}

// useTestConfig points the global config at a GeoJSON dataset in a temp dir
// and restores the previous config when the test ends.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "shore.geojson")
	require.NoError(t, os.WriteFile(path, []byte(shoreGeoJSON), 0o644))

	prev := cfg
	cfg = &config.Config{
		Dataset: config.DatasetConfig{
			Source:     path,
			NDWIField:  "NDWI",
			SQLitePath: filepath.Join(dir, "lake-route.db"),
			TempDir:    dir,
		},
		Route:  route.DefaultOptions(),
		Server: config.ServerConfig{Port: 8080, RequestTimeoutSecs: 10},
		Batch:  config.BatchConfig{Concurrency: 2},
	}
	t.Cleanup(func() { cfg = prev })
	return dir
}

func withContext(cmd *cobra.Command) *cobra.Command {
	cmd.SetContext(context.Background())
	return cmd
}
