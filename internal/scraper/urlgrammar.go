package scraper

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Group names understood by URLGrammar patterns
const (
	groupType  = "type"
	groupMake  = "make"
	groupModel = "model"
	groupYear  = "year"
	groupCity  = "city"
	groupState = "state"
)

// YearToken matches a standalone 4-digit year starting with 20
var YearToken = regexp.MustCompile(`(?:^|[^0-9])(20\d{2})(?:[^0-9]|$)`)

// URLGrammar recovers listing fields from the URL alone.
//
// Pattern uses named groups (type, make, model, year, city, state). The model
// is ModelPrefix followed by the ModelGroups values. YearPattern and
// LocationPattern are applied to the whole URL when Pattern did not capture
// those fields.
type URLGrammar struct {
	Pattern         *regexp.Regexp
	ModelPrefix     string
	ModelGroups     []string
	YearPattern     *regexp.Regexp
	LocationPattern *regexp.Regexp
}

// Extract never fails. Fields it cannot find stay empty; the contract type is always Sale.
func (g URLGrammar) Extract(site, rawURL string) ListingRecord {
	record := ListingRecord{
		SourceSite:   site,
		ContractType: ContractSale,
	}

	groups := namedGroups(g.Pattern, rawURL)
	if len(groups) > 0 {
		if brand := words(groups[groupMake]); brand != "" {
			record.Make = strings.ToUpper(brand)
		}
		record.Model = g.model(groups)
		record.Year = groups[groupYear]
		record.City = formatLocation(groups[groupCity], groups[groupState])
	}

	if record.Year == "" {
		record.Year = URLMatch(g.YearPattern)(nil, rawURL)
	}
	if record.City == "" {
		record.City = g.Location(rawURL)
	}

	return record
}

// Location applies LocationPattern to the URL and formats "City, ST"
func (g URLGrammar) Location(rawURL string) string {
	groups := namedGroups(g.LocationPattern, rawURL)
	return formatLocation(groups[groupCity], groups[groupState])
}

func (g URLGrammar) model(groups map[string]string) string {
	parts := make([]string, 0, len(g.ModelGroups)+1)
	if g.ModelPrefix != "" {
		parts = append(parts, g.ModelPrefix)
	}
	found := false
	for _, name := range g.ModelGroups {
		if value := words(groups[name]); value != "" {
			parts = append(parts, value)
			found = true
		}
	}
	if !found {
		return ""
	}
	return strings.Join(parts, " ")
}

// namedGroups returns the non-empty named captures of the first match
func namedGroups(pattern *regexp.Regexp, s string) map[string]string {
	if pattern == nil {
		return nil
	}
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) && match[i] != "" {
			groups[name] = match[i]
		}
	}
	return groups
}

// words turns a hyphenated URL token into space-separated words
func words(token string) string {
	return strings.Join(strings.FieldsFunc(token, func(r rune) bool {
		return r == '-' || r == '_' || r == '+'
	}), " ")
}

// formatLocation renders "City Name, ST"; a missing city yields ""
func formatLocation(city, state string) string {
	city = words(city)
	if city == "" {
		return ""
	}
	// Casers keep state, so each call gets its own
	city = cases.Title(language.BrazilianPortuguese).String(city)
	if state == "" {
		return city
	}
	return city + ", " + strings.ToUpper(state)
}
