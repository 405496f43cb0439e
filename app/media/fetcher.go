package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher downloads a remote media asset once and returns the local relative
// path it was stored under.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher stores assets under dir at a deterministic path derived from
// the asset URL with its scheme stripped, creating parent directories as
// needed.
type HTTPFetcher struct {
	httpClient *http.Client
	dir        string
	userAgent  string
}

func NewHTTPFetcher(timeout time.Duration, dir, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		dir:        dir,
		userAgent:  userAgent,
	}
}

// StripScheme derives the local relative path for an asset URL.
func StripScheme(url string) string {
	url = strings.TrimPrefix(url, "https://")
	return strings.TrimPrefix(url, "http://")
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	relative := path.Clean(StripScheme(url))
	if relative == "." || strings.HasPrefix(relative, "..") {
		return "", fmt.Errorf("refusing to store media for url %q", url)
	}

	target := filepath.Join(f.dir, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media request returned status %d", resp.StatusCode)
	}

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return relative, nil
}
