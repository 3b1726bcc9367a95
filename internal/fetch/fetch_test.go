package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "test-agent", MaxAttempts: 1, PerRequestTimeout: 5 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if !IsHTMLContentType(resp.ContentType) {
		t.Fatalf("expected html content type, got %q", resp.ContentType)
	}
	if string(resp.Body) != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body: %q", resp.Body)
	}
}

func TestGet_RetriesTransientServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, PerRequestTimeout: 5 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if string(resp.Body) != "recovered" {
		t.Fatalf("unexpected body: %q", resp.Body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGet_NonRetryableStatusReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, PerRequestTimeout: 5 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected recorded status 404, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "missing" {
		t.Fatalf("expected body to survive the status error, got %q", resp.Body)
	}
}

func TestGet_RejectsNonHTTPScheme(t *testing.T) {
	c := &Client{MaxAttempts: 1}
	if _, err := c.Get(context.Background(), "ftp://example.com/file"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

func TestGet_RedirectCap(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, RedirectMaxHops: 3, PerRequestTimeout: 5 * time.Second}
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected redirect loop to fail")
	}
}

func TestIsHTMLContentType(t *testing.T) {
	cases := map[string]bool{
		"text/html":                true,
		"text/html; charset=utf-8": true,
		"  TEXT/HTML ":             true,
		"application/xhtml+xml":    true,
		"application/json":         false,
		"text/plain":               false,
		"":                         false,
		"image/png":                false,
		"application/octet-stream": false,
	}
	for ct, want := range cases {
		if got := IsHTMLContentType(ct); got != want {
			t.Fatalf("IsHTMLContentType(%q) = %v, want %v", ct, got, want)
		}
	}
}
