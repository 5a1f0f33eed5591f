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

	"golang.org/x/net/html/charset"
)

// DefaultTimeout bounds each request when the caller does not override it.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read. Oversized
// pages are truncated, not rejected.
const DefaultMaxBodyBytes = 5 << 20

const acceptHeader = "text/html,application/xhtml+xml;q=0.9,application/json;q=0.8,text/calendar;q=0.8,*/*;q=0.5"

// Result is one retrieved document. A non-2xx Status is reported here rather
// than as an error; only transport-level failures (DNS, timeout, bad scheme)
// surface as errors from Fetch.
type Result struct {
	// FinalURL is the URL after redirects, which downstream extractors use
	// as the canonical-URL fallback.
	FinalURL    string
	Status      int
	ContentType string
	Body        []byte
}

// Client wraps http.Client with the headers, timeout, and redirect policy the
// extraction pipeline needs. The zero value is usable.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes truncates bodies beyond this size. Zero means default.
	MaxBodyBytes int64
}

// Fetch retrieves rawURL, following redirects and classifying the response by
// content type. Calendar bodies are returned byte-for-byte so ICS parsing is
// not subject to text decoding; HTML bodies are decoded to UTF-8 using the
// declared charset.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Result{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", acceptHeader)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	req = req.WithContext(tctx)

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	res := Result{
		FinalURL:    rawURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		res.FinalURL = resp.Request.URL.String()
	}

	maxBytes := c.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	limited := io.LimitReader(resp.Body, maxBytes)

	if IsCalendar(res.ContentType) {
		// Keep calendar payloads binary-safe.
		b, err := io.ReadAll(limited)
		if err != nil {
			return Result{}, fmt.Errorf("read body: %w", err)
		}
		res.Body = b
		return res, nil
	}

	reader, err := charset.NewReader(limited, res.ContentType)
	if err != nil {
		// Undeclared or unknown charset: fall back to the raw bytes.
		reader = limited
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return Result{}, fmt.Errorf("read body: %w", err)
	}
	res.Body = b
	return res, nil
}

// IsCalendar reports whether ct names an iCalendar payload.
func IsCalendar(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/calendar")
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
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

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
