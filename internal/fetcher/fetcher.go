// Package fetcher downloads remote NDWI datasets over HTTP(S) and FTP.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options configures the fetchers built by New.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// Multi dispatches downloads on the URL scheme.
type Multi struct {
	HTTP *HTTPFetcher
	FTP  *FTPFetcher
}

var _ Fetcher = (*Multi)(nil)

// New creates a Multi with HTTP and FTP fetchers sharing opts.
func New(opts Options) *Multi {
	return &Multi{
		HTTP: NewHTTPFetcher(HTTPOptions{
			UserAgent:  opts.UserAgent,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
		}),
		FTP: NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
	}
}

func (m *Multi) pick(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}
	switch u.Scheme {
	case "http", "https":
		return m.HTTP, nil
	case "ftp":
		return m.FTP, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

// Download fetches rawURL with the fetcher for its scheme.
func (m *Multi) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	f, err := m.pick(rawURL)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, rawURL)
}

// DownloadToFile fetches rawURL into path with the fetcher for its scheme.
func (m *Multi) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	body, err := m.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	return writeFile(body, path)
}

// IsRemote reports whether s is a URL one of the fetchers can serve.
func IsRemote(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return u.Host != ""
	}
	return false
}

// writeFile copies body into a new file at path.
func writeFile(body io.Reader, path string) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
