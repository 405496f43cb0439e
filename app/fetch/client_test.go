package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetReturnsBodyOnSuccess(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "FeedJunction/test")
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if body != "<rss></rss>" {
		t.Errorf("Expected response body, got %q", body)
	}
	if gotUserAgent != "FeedJunction/test" {
		t.Errorf("Expected configured user agent, got %q", gotUserAgent)
	}
}

func TestGetNonSuccessfulStatusIsNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "FeedJunction/test")
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected an error for a 404 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", statusErr.Code)
	}
	if requests != 1 {
		t.Errorf("Non-200 responses must not be retried, got %d requests", requests)
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			// Drop the connection without a response
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
				}
			}
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "FeedJunction/test")
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected retries to recover, got: %v", err)
	}
	if body != "ok" {
		t.Errorf("Expected body after retry, got %q", body)
	}
	if requests != 3 {
		t.Errorf("Expected 3 attempts, got %d", requests)
	}
}
