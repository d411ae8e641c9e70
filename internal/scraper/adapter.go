package scraper

import (
	"context"
	"fmt"

	"sjsage522/machineryworker/logger"
	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// SiteAdapter scrapes listing pages of one site. Everything site specific
// comes from its SiteConfig.
type SiteAdapter struct {
	config  SiteConfig
	fetcher Fetcher
	photos  PhotoResolver
	log     *logger.Logger

	title    Resolver
	year     Resolver
	hours    Resolver
	location Resolver
	price    Resolver
	contract Resolver
}

var (
	_ Adapter     = (*SiteAdapter)(nil)
	_ URLFallback = (*SiteAdapter)(nil)
)

// NewSiteAdapter creates an adapter for cfg that loads pages through fetcher
func NewSiteAdapter(cfg SiteConfig, fetcher Fetcher) *SiteAdapter {
	a := &SiteAdapter{
		config:  cfg,
		fetcher: fetcher,
		photos:  PhotoResolver{BaseURL: cfg.BaseURL, Selectors: cfg.Photo},
		log:     logger.ForSite(cfg.Name),
	}

	a.title = Resolver{FirstText(cfg.Title...)}
	a.year = Resolver{
		LabeledDigits(cfg.Year...),
		a.titleGroup(groupYear),
		URLMatch(cfg.YearURL),
	}
	a.hours = Resolver{
		LabeledDigits(cfg.Hours...),
		a.known(func(k KnownListing) string { return k.WorkedHours }),
	}
	a.location = Resolver{
		FirstText(cfg.Location...),
		func(_ *goquery.Document, pageURL string) string {
			return cfg.URLGrammar.Location(pageURL)
		},
	}
	a.price = Resolver{
		FirstText(cfg.Price...),
		Attr(`meta[itemprop="price"]`, "content"),
		a.known(func(k KnownListing) string { return k.Price }),
	}
	a.contract = Resolver{Labeled(cfg.Contract...)}

	return a
}

// SiteName returns the configured site name
func (a *SiteAdapter) SiteName() string {
	return a.config.Name
}

// Scrape returns exactly one record for url
func (a *SiteAdapter) Scrape(ctx context.Context, url string) (records []ListingRecord) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().
				Str("url", url).
				Str("panic", fmt.Sprint(r)).
				Msg("Recovered while extracting listing")
			records = []ListingRecord{a.FromURL(url, StatusUnknown)}
		}
	}()

	doc, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		status := StatusError
		if apperrors.TypeOf(err) == apperrors.ErrorTypeParsing {
			status = StatusUnknown
		}
		a.log.Warn().
			Err(err).
			Str("url", url).
			Str("status", string(status)).
			Msg("Falling back to URL extraction")
		return []ListingRecord{a.FromURL(url, status)}
	}

	status := ClassifyStatus(doc, a.config.StatusRules)
	if status.IsTerminal() {
		a.log.Info().
			Str("url", url).
			Str("status", string(status)).
			Msg("Listing is no longer active")
		record := a.FromURL(url, status)
		record.PhotoURL = a.photos.Similar(doc)
		return []ListingRecord{record}
	}

	return []ListingRecord{a.extractActive(doc, url)}
}

// FromURL builds a record from the URL grammar alone
func (a *SiteAdapter) FromURL(url string, status Status) ListingRecord {
	record := a.config.URLGrammar.Extract(a.config.Name, url)
	record.Status = status
	return record
}

func (a *SiteAdapter) extractActive(doc *goquery.Document, url string) ListingRecord {
	record := ListingRecord{
		SourceSite: a.config.Name,
		Status:     StatusActive,
	}

	if title := a.title.Resolve(doc, url); title != "" {
		record.Model, record.Make = SplitTitle(title)
		if groups := namedGroups(a.config.TitleGrammar, title); len(groups) > 0 {
			if groups[groupMake] != "" {
				record.Make = groups[groupMake]
			}
			if groups[groupModel] != "" {
				record.Model = groups[groupModel]
			}
		}
	} else {
		a.missing(url, "title")
		fallback := a.config.URLGrammar.Extract(a.config.Name, url)
		record.Model, record.Make = fallback.Model, fallback.Make
	}

	record.Year = a.year.Resolve(doc, url)
	record.WorkedHours = a.hours.Resolve(doc, url)
	record.City = a.location.Resolve(doc, url)
	record.Price = a.price.Resolve(doc, url)
	record.ContractType = ClassifyContract(a.contract.Resolve(doc, url), a.config.ContractKeys)

	// Similar-items photos belong to other listings and are only used once a listing has ended
	record.PhotoURL = a.photos.Resolve(doc)
	if record.PhotoURL == "" {
		if entry, ok := a.knownListing(url); ok {
			record.PhotoURL = a.photos.absolute(entry.PhotoURL)
		}
	}

	fields := []struct{ name, value string }{
		{"year", record.Year},
		{"hours", record.WorkedHours},
		{"city", record.City},
		{"price", record.Price},
		{"photo", record.PhotoURL},
	}
	for _, f := range fields {
		if f.value == "" {
			a.missing(url, f.name)
		}
	}

	return record
}

// titleGroup reads a named group of the title grammar from the page title
func (a *SiteAdapter) titleGroup(name string) Strategy {
	return func(doc *goquery.Document, pageURL string) string {
		if a.config.TitleGrammar == nil {
			return ""
		}
		return namedGroups(a.config.TitleGrammar, a.title.Resolve(doc, pageURL))[name]
	}
}

// known reads a field from the seeded known-listing catalog
func (a *SiteAdapter) known(field func(KnownListing) string) Strategy {
	return func(_ *goquery.Document, pageURL string) string {
		if entry, ok := a.knownListing(pageURL); ok {
			return field(entry)
		}
		return ""
	}
}

func (a *SiteAdapter) knownListing(url string) (KnownListing, bool) {
	if len(a.config.KnownListings) == 0 || a.config.ListingID == nil {
		return KnownListing{}, false
	}
	match := a.config.ListingID.FindStringSubmatch(url)
	if len(match) < 2 {
		return KnownListing{}, false
	}
	entry, ok := a.config.KnownListings[match[1]]
	return entry, ok
}

func (a *SiteAdapter) missing(url, field string) {
	a.log.Info().
		Str("url", url).
		Str("field", field).
		Msg("Element not found")
}
