package exporter

import (
	"context"
	"errors"

	"sjsage522/machineryworker/internal/scraper"
)

// Exporter persists the records of one scrape run
type Exporter interface {
	Export(ctx context.Context, records []scraper.ListingRecord) error
}

// MultiExporter sends the same records to every exporter. All exporters run
// even when one fails; the failures are joined.
type MultiExporter []Exporter

// Export implements Exporter
func (m MultiExporter) Export(ctx context.Context, records []scraper.ListingRecord) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Export(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// groupBySite groups records by source website, keeping record order within a site
func groupBySite(records []scraper.ListingRecord) map[string][]scraper.ListingRecord {
	groups := make(map[string][]scraper.ListingRecord)
	for _, r := range records {
		groups[r.SourceSite] = append(groups[r.SourceSite], r)
	}
	return groups
}
