package scraper

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"sjsage522/machineryworker/helpers"
	apperrors "sjsage522/machineryworker/pkg/errors"
	"sjsage522/machineryworker/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher returns a queryable document for a URL or a fetch failure
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url string) (*goquery.Document, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches documents over HTTP for one site. When a cache is set,
// a rate-limited answer blocks further requests to the site for BlockTime.
type HTTPFetcher struct {
	Options   helpers.FetchOptions
	CacheSvc  cache.CacheService
	CacheKey  string
	BlockTime time.Duration
}

// NewHTTPFetcher creates a fetcher for site with the given fetch options
func NewHTTPFetcher(site string, opts helpers.FetchOptions, cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	opts.Site = site
	return &HTTPFetcher{
		Options:   opts,
		CacheSvc:  cacheSvc,
		CacheKey:  cache.RateLimitKey(site),
		BlockTime: blockTime,
	}
}

// Fetch performs exactly one request; nothing is retried
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	// Check if the site is rate limited
	if f.CacheSvc != nil {
		if _, err := f.CacheSvc.Get(f.CacheKey); err == nil {
			return nil, apperrors.NewRateLimit(f.Options.Site, f.BlockTime)
		}
	}

	body, err := helpers.FetchDocument(ctx, url, f.Options)
	if err != nil {
		if f.CacheSvc != nil && apperrors.TypeOf(err) == apperrors.ErrorTypeRateLimit && f.BlockTime > 0 {
			seconds := strconv.Itoa(int(f.BlockTime / time.Second))
			if cacheErr := f.CacheSvc.Set(f.CacheKey, []byte(seconds), f.BlockTime); cacheErr != nil {
				err = fmt.Errorf("%w (rate limit not cached: %v)", err, cacheErr)
			}
		}
		return nil, err
	}

	return createDocument(f.Options.Site, body)
}

// createDocument creates a goquery document from a reader
func createDocument(site string, reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.NewParsing(site, "failed to parse HTML", err)
	}
	return doc, nil
}
