package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lake-route/internal/fetcher"
)

func testFetcher() *fetcher.Multi {
	return fetcher.New(fetcher.Options{UserAgent: "test", Timeout: 5 * time.Second, MaxRetries: 1})
}

func TestRemote_RevalidatesWithETag(t *testing.T) {
	var full, notModified atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"lake-v1"` {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full.Add(1)
		w.Header().Set("ETag", `"lake-v1"`)
		w.Write([]byte(lakeGeoJSON))
	}))
	defer srv.Close()

	cache := t.TempDir()
	src := NewRemote(srv.URL+"/exports/lake.geojson", "", cache, testFetcher())
	assert.Equal(t, srv.URL+"/exports/lake.geojson", src.Name())

	for range 2 {
		res, err := src.Samples(context.Background())
		require.NoError(t, err)
		assert.Len(t, res.Samples, 3)
	}
	assert.Equal(t, int32(1), full.Load())
	assert.Equal(t, int32(1), notModified.Load())

	local, err := src.cachePath()
	require.NoError(t, err)
	assert.Equal(t, ".geojson", filepath.Ext(local))
	etag, err := os.ReadFile(local + ".etag")
	require.NoError(t, err)
	assert.Equal(t, `"lake-v1"`, string(etag))
}

func TestRemote_ZipArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := zipFiles(t, dir, writeFile(t, dir, "lake.geojson", lakeGeoJSON))
	data, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	res, err := NewRemote(srv.URL+"/lake.zip", "", t.TempDir(), testFetcher()).Samples(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Samples, 3)
}

func TestRemote_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL+"/missing.geojson", "", t.TempDir(), testFetcher()).Samples(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset: download")
}

func TestRemote_CachePathWithoutExtension(t *testing.T) {
	r := NewRemote("https://example.com/api/ndwi?lake=7", "", "/cache", nil)
	p, err := r.cachePath()
	require.NoError(t, err)
	assert.Equal(t, "/cache", filepath.Dir(p))
	assert.Equal(t, ".geojson", filepath.Ext(p))

	other, err := NewRemote("https://example.com/api/ndwi?lake=8", "", "/cache", nil).cachePath()
	require.NoError(t, err)
	assert.NotEqual(t, p, other)
}
