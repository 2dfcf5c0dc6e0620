package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/ndwi.geojson", true},
		{"http://example.com/ndwi.zip", true},
		{"ftp://ftp.example.com/ndwi.shp", true},
		{"ndwi.geojson", false},
		{"/data/ndwi.geojson", false},
		{"s3://bucket/ndwi.geojson", false},
		{"https://", false},
		{"sqlite", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRemote(tt.in), tt.in)
	}
}

func TestMulti_DispatchesOnScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("over http"))
	}))
	defer srv.Close()
	ftpSrv := newFakeFTPServer(t, map[string]string{"/ndwi.txt": "over ftp"})

	m := New(Options{UserAgent: "test-agent", Timeout: 5 * time.Second, MaxRetries: 1})

	cases := []struct{ url, want string }{
		{url: srv.URL + "/ndwi.txt", want: "over http"},
		{url: fmt.Sprintf("ftp://%s/ndwi.txt", ftpSrv.addr()), want: "over ftp"},
	}
	for _, tc := range cases {
		body, err := m.Download(context.Background(), tc.url)
		require.NoError(t, err, tc.url)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.NoError(t, body.Close())
		assert.Equal(t, tc.want, string(data))
	}
}

func TestMulti_DownloadToFileDispatchesOnScheme(t *testing.T) {
	ftpSrv := newFakeFTPServer(t, map[string]string{"/lakes/ndwi.geojson": `{"type":"FeatureCollection"}`})
	m := New(Options{Timeout: 5 * time.Second})

	path := filepath.Join(t.TempDir(), "ndwi.geojson")
	n, err := m.DownloadToFile(context.Background(), fmt.Sprintf("ftp://%s/lakes/ndwi.geojson", ftpSrv.addr()), path)
	require.NoError(t, err)
	assert.Equal(t, int64(28), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"FeatureCollection"}`, string(data))
}

func TestMulti_UnsupportedScheme(t *testing.T) {
	m := New(Options{})

	_, err := m.Download(context.Background(), "s3://bucket/key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")

	_, err = m.DownloadToFile(context.Background(), "file:///tmp/x", "/tmp/y")
	assert.Error(t, err)
}
