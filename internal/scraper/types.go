package scraper

import (
	"context"
	"regexp"
)

// Status is the lifecycle state of a listing
type Status string

const (
	StatusActive    Status = "Active"
	StatusFinalized Status = "Finalized"
	StatusSold      Status = "Sold"
	StatusExpired   Status = "Expired"
	StatusInactive  Status = "Inactive"
	// StatusUnknown marks a page that was fetched but could not be parsed
	StatusUnknown Status = "Unknown"
	// StatusError marks a page that could not be fetched
	StatusError Status = "Error"
)

// IsTerminal reports whether the listing is no longer live
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinalized, StatusSold, StatusExpired, StatusInactive:
		return true
	}
	return false
}

// ContractType tells whether a listing is offered for sale or for rent
type ContractType string

const (
	ContractSale ContractType = "Sale"
	ContractRent ContractType = "Rent"
)

// ListingRecord represents one scraped machinery listing
type ListingRecord struct {
	Model        string       `json:"model,omitempty"`
	ContractType ContractType `json:"contractType,omitempty"`
	Make         string       `json:"make,omitempty"`
	Year         string       `json:"year,omitempty"`
	WorkedHours  string       `json:"workedHours,omitempty"`
	City         string       `json:"city,omitempty"`
	Price        string       `json:"price,omitempty"`
	PhotoURL     string       `json:"photoUrl,omitempty"`
	SourceSite   string       `json:"sourceWebsite"`
	Status       Status       `json:"status"`
}

// Adapter is the per-site scrape contract
type Adapter interface {
	// Scrape turns one listing URL into records. It never fails: problems are
	// reported through the record status.
	Scrape(ctx context.Context, url string) []ListingRecord

	// SiteName returns the stable identifier used to route URL batches
	SiteName() string
}

// URLFallback is implemented by adapters that can build a record from the URL alone
type URLFallback interface {
	FromURL(url string, status Status) ListingRecord
}

// LabeledSelector finds elements matching Selector whose text contains one of Labels.
// An empty Labels list accepts any matching element.
type LabeledSelector struct {
	Selector string
	Labels   []string
}

// StatusRule maps a termination marker to a status. A rule either lists
// phrases searched in the page text or a selector whose presence terminates.
type StatusRule struct {
	Phrases  []string
	Selector string
	Status   Status
}

// ContractKeyword maps a substring of a contract label to a contract type
type ContractKeyword struct {
	Keyword string
	Type    ContractType
}

// KnownListing holds canonical values for a listing whose page is known to be incomplete
type KnownListing struct {
	PhotoURL    string
	Price       string
	WorkedHours string
}

// PhotoSelectors lists the image locations tried in order
type PhotoSelectors struct {
	// Primary image locations; src is preferred over the lazy-load attributes
	Primary []string
	// Gallery or content regions holding any listing image
	Gallery []string
	// Secondary locations used when a candidate was rejected as a placeholder
	Secondary []string
	// Similar/related items sections scavenged for terminal listings
	Similar []string
	// Sentinels are placeholder values that must never be stored
	Sentinels []string
}

// SiteConfig declares everything that differs between supported sites
type SiteConfig struct {
	Name    string
	BaseURL string

	StatusRules []StatusRule

	Title        []string
	TitleGrammar *regexp.Regexp
	Year         []LabeledSelector
	YearURL      *regexp.Regexp
	Hours        []LabeledSelector
	Location     []string
	Price        []string
	Contract     []LabeledSelector
	ContractKeys []ContractKeyword

	Photo PhotoSelectors

	URLGrammar URLGrammar

	// ListingID extracts the listing identifier used to look up KnownListings
	ListingID     *regexp.Regexp
	KnownListings map[string]KnownListing
}
