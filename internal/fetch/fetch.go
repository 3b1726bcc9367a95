package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps http.Client with a user agent, bounded retry on transient
// errors, and a redirect cap. It serves both the fetch stage and the
// standalone URL tools, which need the status code and body even for
// non-2xx responses.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means
	// default (5).
	RedirectMaxHops int
}

// Response is the outcome of one GET, populated as far as the exchange got.
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// ErrHTTPStatus marks responses outside the 2xx range. The Response is
// still returned alongside it so callers can record status and body.
var ErrHTTPStatus = errors.New("http status")

// Get issues a GET with context and user agent, retrying transient errors
// (5xx, 429, deadline) with linear backoff.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var resp Response
	var lastErr error
	for i := 0; i < attempts; i++ {
		var err error
		resp, err = c.tryOnce(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isTransient(err, resp.StatusCode) || i == attempts-1 {
			return resp, err
		}
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	return resp, lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Response{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.getHTTPClient()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	r, err := httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	resp := Response{
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		StatusCode:  r.StatusCode,
	}
	if err != nil {
		return resp, fmt.Errorf("read body: %w", err)
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return resp, fmt.Errorf("%w: %d", ErrHTTPStatus, r.StatusCode)
	}
	return resp, nil
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating the caller's
		// client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isTransient(err error, status int) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrHTTPStatus) {
		return status >= 500 || status == http.StatusTooManyRequests
	}
	return false
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsHTMLContentType reports whether a Content-Type header names an HTML
// document the pipeline should keep.
func IsHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
