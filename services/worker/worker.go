package worker

import (
	"context"
	"fmt"
	"time"

	"sjsage522/machineryworker/helpers"
	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Worker fans job URLs out to the site adapters and collects the records
type Worker struct {
	adapters    []scraper.Adapter
	logger      helpers.LoggerInterface
	concurrency int
	limiters    map[string]*rate.Limiter
}

// NewWorker creates a new worker. At most concurrency URLs are scraped at
// once and each site gets ratePerSecond requests with the given burst; a
// zero rate disables the per-site limit.
func NewWorker(
	adapters []scraper.Adapter,
	logger helpers.LoggerInterface,
	concurrency int,
	ratePerSecond float64,
	burst int,
) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if burst < 1 {
		burst = 1
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	limiters := make(map[string]*rate.Limiter, len(adapters))
	for _, a := range adapters {
		limiters[a.SiteName()] = rate.NewLimiter(limit, burst)
	}

	return &Worker{
		adapters:    adapters,
		logger:      logger,
		concurrency: concurrency,
		limiters:    limiters,
	}
}

type workItem struct {
	adapter scraper.Adapter
	url     string
}

// ScrapeAll scrapes every URL of every known site. Records come back in
// adapter order, then URL order, whatever order the work finishes in.
// Sites without URLs are skipped and sites without an adapter are ignored.
func (w *Worker) ScrapeAll(ctx context.Context, jobs map[string][]string) []scraper.ListingRecord {
	start := time.Now()
	w.warnUnknownSites(jobs)

	var items []workItem
	for _, a := range w.adapters {
		urls := jobs[a.SiteName()]
		if len(urls) == 0 {
			w.logger.LogInfo("No URLs for %s, skipping", a.SiteName())
			continue
		}
		for _, u := range urls {
			items = append(items, workItem{adapter: a, url: u})
		}
	}

	// Each item owns its slot, so no locking is needed
	slots := make([][]scraper.ListingRecord, len(items))

	// A plain group: one failing URL must not cancel the others
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, item := range items {
		g.Go(func() error {
			slots[i] = w.scrapeOne(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	var records []scraper.ListingRecord
	for _, slot := range slots {
		records = append(records, slot...)
	}

	w.logSummary(records, time.Since(start))
	return records
}

// scrapeOne runs a single adapter call; a panic becomes an Error record
func (w *Worker) scrapeOne(ctx context.Context, item workItem) (records []scraper.ListingRecord) {
	site := item.adapter.SiteName()

	defer func() {
		if r := recover(); r != nil {
			w.logger.LogError(site, fmt.Errorf("panic scraping %s: %v", item.url, r))
			records = []scraper.ListingRecord{fallbackRecord(item.adapter, site, item.url)}
		}
	}()

	if limiter := w.limiters[site]; limiter != nil {
		// A cancelled wait still goes through Scrape, whose fetch then fails fast
		if err := limiter.Wait(ctx); err != nil {
			logger.ForWorker().Debug().Err(err).Str("site", site).Msg("Rate limiter wait aborted")
		}
	}

	records = item.adapter.Scrape(ctx, item.url)
	for i := range records {
		if records[i].SourceSite == "" {
			records[i].SourceSite = site
		}
		switch records[i].Status {
		case scraper.StatusError, scraper.StatusUnknown:
			w.logger.LogError(site, fmt.Errorf("%s: %s", item.url, records[i].Status))
		}
	}
	return records
}

// fallbackRecord builds the Error record for a URL whose adapter panicked.
// Adapters that implement scraper.URLFallback still get their URL fields;
// the rest, or a fallback that panics too, yield a bare Error record.
func fallbackRecord(adapter scraper.Adapter, site, url string) (record scraper.ListingRecord) {
	record = scraper.ListingRecord{SourceSite: site, Status: scraper.StatusError}

	fb, ok := adapter.(scraper.URLFallback)
	if !ok {
		return record
	}

	defer func() {
		if r := recover(); r != nil {
			record = scraper.ListingRecord{SourceSite: site, Status: scraper.StatusError}
		}
	}()

	record = fb.FromURL(url, scraper.StatusError)
	record.Status = scraper.StatusError
	if record.SourceSite == "" {
		record.SourceSite = site
	}
	return record
}

func (w *Worker) warnUnknownSites(jobs map[string][]string) {
	for site, urls := range jobs {
		if _, ok := w.limiters[site]; !ok {
			logger.ForWorker().Warn().
				Str("site", site).
				Int("urls", len(urls)).
				Msg("No adapter registered for site, ignoring its URLs")
		}
	}
}

func (w *Worker) logSummary(records []scraper.ListingRecord, elapsed time.Duration) {
	counts := make(map[scraper.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}

	event := logger.ForWorker().Info().
		Int("records", len(records)).
		Dur("elapsed", elapsed)
	for status, n := range counts {
		event = event.Int(string(status), n)
	}
	event.Msg("Scrape run finished")
}
