package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	apperrors "sjsage522/machineryworker/pkg/errors"

	"golang.org/x/net/html/charset"
)

// FetchOptions controls a single document fetch
type FetchOptions struct {
	UserAgent       string
	Timeout         time.Duration
	FollowRedirects bool
	// Site is only used to label returned errors
	Site string
}

// errNoRedirect stops the client at the first redirect response
var errNoRedirect = errors.New("redirects disabled")

// newClient builds a client for one fetch. Clients are cheap and this keeps
// per-site timeout and redirect policy independent of each other.
func newClient(opts FetchOptions) *http.Client {
	client := &http.Client{
		Timeout: opts.Timeout,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return errNoRedirect
		}
	}
	return client
}

// FetchDocument sends one GET request with a descriptive client identifier,
// converts the response body to UTF-8 (if needed), and returns it as an io.Reader.
// It never retries; every failure comes back as a *errors.ScrapeError.
func FetchDocument(ctx context.Context, url string, opts FetchOptions) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetwork(opts.Site, "failed to create request", err)
	}

	// Set browser-like headers
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,es;q=0.8,en-US;q=0.7,en;q=0.6")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := newClient(opts).Do(req)
	if err != nil {
		return nil, apperrors.NewNetwork(opts.Site, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, apperrors.NewRateLimit(opts.Site, retryAfter)
	}

	// Check for other error status codes
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewHTTPStatus(opts.Site, resp.StatusCode)
	}

	// Read the entire response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetwork(opts.Site, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if strings.EqualFold(name, "utf-8") {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperrors.NewParsing(opts.Site, "failed to read converted UTF-8 body", err)
	}

	return &buf, nil
}

// parseRetryAfter understands the delay-seconds form of Retry-After
func parseRetryAfter(value string) time.Duration {
	var seconds int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &seconds); err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
