package scraper

import (
	"regexp"
	"time"

	"sjsage522/machineryworker/config"
	"sjsage522/machineryworker/helpers"
	"sjsage522/machineryworker/logger"
	"sjsage522/machineryworker/services/cache"
)

// defaultBlockTime is used when the configuration leaves the block window unset
const defaultBlockTime = 5 * time.Minute

// Site names used to route job URLs
const (
	SiteAgrofy                  = "Agrofy"
	SiteMercadoMaquinas         = "MercadoMaquinas"
	SiteTratoresEColheitadeiras = "TratoresEColheitadeiras"
)

// CreateAdapters creates one adapter per supported site, in a fixed order
func CreateAdapters(cfg *config.Config, cacheSvc cache.CacheService) []Adapter {
	opts := helpers.FetchOptions{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.FetchTimeout,
		FollowRedirects: cfg.FollowRedirects,
	}

	block := cfg.RateLimitBlock
	if block <= 0 {
		block = defaultBlockTime
	}

	configurations := SiteConfigs()
	adapters := make([]Adapter, 0, len(configurations))
	for _, siteCfg := range configurations {
		fetcher := NewHTTPFetcher(siteCfg.Name, opts, cacheSvc, block)
		adapters = append(adapters, NewSiteAdapter(siteCfg, fetcher))
	}

	log := logger.ForWorker()
	for i, adapter := range adapters {
		log.Debug().Int("index", i).Str("site", adapter.SiteName()).Msg("Adapter created")
	}
	log.Info().Int("count", len(adapters)).Msg("Created site adapters")

	return adapters
}

// SiteConfigs returns the configurations of every supported site
func SiteConfigs() []SiteConfig {
	return []SiteConfig{
		AgrofyConfig(),
		TratoresEColheitadeirasConfig(),
		MercadoMaquinasConfig(),
	}
}

// AgrofyConfig describes agrofy.com.br listing pages
func AgrofyConfig() SiteConfig {
	return SiteConfig{
		Name:    SiteAgrofy,
		BaseURL: "https://www.agrofy.com.br",
		StatusRules: []StatusRule{
			{Phrases: []string{"A publicação está finalizada"}, Status: StatusFinalized},
			{Selector: ".expired-notice, .sold-notice, .unavailable-notice", Status: StatusFinalized},
		},
		Title: []string{"h1.title", "h1.product-title", ".product-name"},
		Year: []LabeledSelector{
			{Selector: ".specs-item", Labels: []string{"Año", "Ano"}},
			{Selector: ".product-year"},
			{Selector: ".product-detail", Labels: []string{"Ano"}},
		},
		YearURL: YearToken,
		Hours: []LabeledSelector{
			{Selector: ".specs-item", Labels: []string{"Horas"}},
			{Selector: ".product-hours"},
			{Selector: ".product-detail", Labels: []string{"Horas"}},
		},
		Location: []string{".location", ".product-location", ".seller-location"},
		Price:    []string{".price-value", ".product-price", ".price"},
		Photo: PhotoSelectors{
			Primary: []string{".product-image img", ".main-image img", ".carousel-item img", ".gallery-image img"},
			Gallery: []string{".product-content img", ".product-gallery img"},
			Similar: []string{".similar-products img", ".related-products img"},
		},
		URLGrammar: URLGrammar{
			Pattern:     regexp.MustCompile(`/trator-(?P<make>[a-zA-Z]+(?:-[a-zA-Z]+)?)-(?P<model>[a-zA-Z0-9-]+?)(?:\.html|$)`),
			ModelPrefix: "Trator",
			ModelGroups: []string{groupMake, groupModel},
			YearPattern: YearToken,
		},
		ListingID: regexp.MustCompile(`-(\d+)(?:\.html)?$`),
	}
}

// MercadoMaquinasConfig describes mercadomaquinas.com.br listing pages
func MercadoMaquinasConfig() SiteConfig {
	return SiteConfig{
		Name:    SiteMercadoMaquinas,
		BaseURL: "https://www.mercadomaquinas.com.br",
		StatusRules: []StatusRule{
			{Phrases: []string{"Anúncio desativado"}, Status: StatusInactive},
			{Phrases: []string{"já foi vendido"}, Status: StatusSold},
			{Selector: ".expired-notice, .sold-notice, .unavailable-notice", Status: StatusExpired},
		},
		Title:        []string{"h1.ad-title", ".product-title"},
		TitleGrammar: regexp.MustCompile(`([A-Za-z\s]+)\s+(?P<make>[A-Za-z]+)\s+(?P<model>[A-Za-z0-9-]+)\s+(?P<year>\d{4})`),
		Year: []LabeledSelector{
			{Selector: ".ad-info-item", Labels: []string{"Ano"}},
			{Selector: ".product-year"},
		},
		Hours: []LabeledSelector{
			{Selector: ".ad-info-item", Labels: []string{"Horas"}},
			{Selector: ".product-hours"},
		},
		Location: []string{".ad-location", ".product-location"},
		Price:    []string{".ad-price", ".product-price"},
		Photo: PhotoSelectors{
			Primary: []string{".ad-image img", ".main-image img", ".carousel-item img", ".gallery-image img"},
			Gallery: []string{".ad-gallery img", ".product-gallery img"},
			Similar: []string{".similar-ads img", ".related-ads img"},
		},
		URLGrammar: URLGrammar{
			Pattern: regexp.MustCompile(
				`/(\d+)-(?P<type>[a-zA-Z-]+)-(?P<make>[a-zA-Z]+)-(?P<model>[a-zA-Z0-9-]+)-(?P<year>\d{4})-(?P<city>[a-zA-Z-]+)-(?P<state>[a-zA-Z]{2})$`),
			ModelGroups:     []string{groupType, groupMake, groupModel},
			YearPattern:     YearToken,
			LocationPattern: regexp.MustCompile(`\d{4}-(?P<city>[a-zA-Z-]+)-(?P<state>[a-zA-Z]{2})$`),
		},
		ListingID: regexp.MustCompile(`/anuncio/(\d+)-`),
	}
}

// TratoresEColheitadeirasConfig describes tratoresecolheitadeiras.com.br listing pages
func TratoresEColheitadeirasConfig() SiteConfig {
	return SiteConfig{
		Name:    SiteTratoresEColheitadeiras,
		BaseURL: "https://www.tratoresecolheitadeiras.com.br",
		StatusRules: []StatusRule{
			{Phrases: []string{"Esse veículo já foi vendido"}, Status: StatusSold},
			{Selector: ".expired-notice, .sold-notice, .unavailable-notice", Status: StatusInactive},
		},
		Title: []string{"h1.title-vehicle", ".vehicle-title"},
		Year: []LabeledSelector{
			{Selector: ".vehicle-info-item", Labels: []string{"Ano"}},
			{Selector: ".vehicle-year"},
		},
		YearURL: regexp.MustCompile(`/(20\d{2})(?:/|$)`),
		Hours: []LabeledSelector{
			{Selector: ".vehicle-info-item", Labels: []string{"Horas"}},
			{Selector: ".vehicle-hours"},
		},
		Price: []string{".vehicle-price", ".price"},
		Contract: []LabeledSelector{
			{Selector: ".vehicle-info-item", Labels: []string{"Tipo de anúncio"}},
		},
		ContractKeys: []ContractKeyword{
			{Keyword: "venda", Type: ContractSale},
			{Keyword: "aluguel", Type: ContractRent},
			{Keyword: "locação", Type: ContractRent},
		},
		Photo: PhotoSelectors{
			Primary:   []string{".vehicle-image img", ".main-image img", ".carousel-item img", ".gallery-image img"},
			Gallery:   []string{".vehicle-gallery img", ".vehicle-photos img"},
			Secondary: []string{"img[src*=veiculos]"},
			Similar:   []string{".similar-vehicles img", ".related-vehicles img"},
			Sentinels: []string{"{6}"},
		},
		URLGrammar: URLGrammar{
			Pattern: regexp.MustCompile(
				`/veiculo/(?P<city>[a-zA-Z-]+)/(?P<state>[a-zA-Z]{2})/(?P<type>[a-zA-Z-]+)/(?P<make>[^/]+)/(?P<model>[^/]+)(?:/(?P<year>20\d{2}))?`),
			ModelGroups:     []string{groupModel},
			YearPattern:     regexp.MustCompile(`/(20\d{2})(?:/|$)`),
			LocationPattern: regexp.MustCompile(`/(?P<city>[a-zA-Z-]+)/(?P<state>[a-zA-Z]{2})/`),
		},
		ListingID: regexp.MustCompile(`/(\d+)$`),
	}
}
