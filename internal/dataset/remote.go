package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lake-route/internal/fetcher"
	"github.com/sells-group/lake-route/internal/ndwi"
)

// Remote downloads a dataset into a cache directory and reads it as a file.
// HTTP downloads are revalidated with the ETag from the previous fetch.
type Remote struct {
	URL      string
	Field    string
	CacheDir string

	fetch *fetcher.Multi
}

// NewRemote creates a Remote source that downloads rawURL with f.
func NewRemote(rawURL, field, cacheDir string, f *fetcher.Multi) *Remote {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "lake-route")
	}
	return &Remote{URL: rawURL, Field: field, CacheDir: cacheDir, fetch: f}
}

// Name implements ndwi.Source.
func (r *Remote) Name() string { return r.URL }

// Close implements Source.
func (r *Remote) Close() error { return nil }

// Samples implements ndwi.Source.
func (r *Remote) Samples(ctx context.Context) (ndwi.ParseResult, error) {
	local, err := r.download(ctx)
	if err != nil {
		return ndwi.ParseResult{}, err
	}
	return FileSource(local, r.Field, r.CacheDir).Samples(ctx)
}

// cachePath names the local copy after a hash of the URL, keeping the
// extension so FileSource can pick a reader.
func (r *Remote) cachePath() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", eris.Wrap(err, "dataset: parse url")
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		ext = ".geojson"
	}
	sum := sha256.Sum256([]byte(r.URL))
	return filepath.Join(r.CacheDir, hex.EncodeToString(sum[:8])+ext), nil
}

func (r *Remote) download(ctx context.Context) (string, error) {
	log := zap.L().With(zap.String("component", "dataset.remote"), zap.String("url", r.URL))

	if err := os.MkdirAll(r.CacheDir, 0o755); err != nil {
		return "", eris.Wrap(err, "dataset: create cache dir")
	}
	local, err := r.cachePath()
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(r.URL, "http") {
		n, err := r.fetch.DownloadToFile(ctx, r.URL, local)
		if err != nil {
			return "", eris.Wrap(err, "dataset: download")
		}
		log.Info("dataset downloaded", zap.Int64("bytes", n))
		return local, nil
	}

	etagPath := local + ".etag"
	var etag string
	if _, err := os.Stat(local); err == nil {
		if b, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newETag, changed, err := r.fetch.HTTP.DownloadIfChanged(ctx, r.URL, etag)
	if err != nil {
		return "", eris.Wrap(err, "dataset: download")
	}
	if !changed {
		log.Info("dataset unchanged, using cached copy", zap.String("etag", etag))
		return local, nil
	}
	defer body.Close() //nolint:errcheck

	tmp := local + ".part"
	n, err := writeTo(tmp, body)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp, local); err != nil {
		return "", eris.Wrap(err, "dataset: move download into cache")
	}
	if newETag != "" {
		if err := os.WriteFile(etagPath, []byte(newETag), 0o644); err != nil {
			log.Warn("failed to record etag", zap.Error(err))
		}
	} else {
		_ = os.Remove(etagPath)
	}

	log.Info("dataset downloaded", zap.Int64("bytes", n), zap.String("etag", newETag))
	return local, nil
}
