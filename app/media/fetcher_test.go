package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStripScheme(t *testing.T) {
	tests := map[string]string{
		"https://example.org/m/pic.png": "example.org/m/pic.png",
		"http://example.org/m/pic.png":  "example.org/m/pic.png",
		"example.org/m/pic.png":         "example.org/m/pic.png",
	}
	for input, expected := range tests {
		if got := StripScheme(input); got != expected {
			t.Errorf("StripScheme(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestHTTPFetcherStoresAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	fetcher := NewHTTPFetcher(5*time.Second, dir, "FeedJunction/test")

	local, err := fetcher.Fetch(context.Background(), server.URL+"/m/pic.png")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.HasSuffix(local, "/m/pic.png") {
		t.Errorf("Local path should be derived from the URL, got %q", local)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(local)))
	if err != nil {
		t.Fatalf("Expected asset file to exist, got: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("Expected downloaded bytes, got %q", data)
	}
}

func TestHTTPFetcherNonSuccessfulStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, t.TempDir(), "FeedJunction/test")

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/m/pic.png"); err == nil {
		t.Fatal("Expected an error for a non-200 response")
	}
}

func TestHTTPFetcherRejectsTraversal(t *testing.T) {
	fetcher := NewHTTPFetcher(5*time.Second, t.TempDir(), "FeedJunction/test")

	if _, err := fetcher.Fetch(context.Background(), "https://../../etc/passwd"); err == nil {
		t.Fatal("Expected an error for a path escaping the media directory")
	}
}
