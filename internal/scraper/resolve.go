package scraper

import (
	"regexp"
	"strings"

	"sjsage522/machineryworker/helpers"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts one value from a document. An empty result means "not found".
type Strategy func(doc *goquery.Document, pageURL string) string

// Resolver is an ordered chain of strategies for a single field
type Resolver []Strategy

// Resolve applies the strategies in order and returns the first non-empty result
func (r Resolver) Resolve(doc *goquery.Document, pageURL string) string {
	for _, strategy := range r {
		if strategy == nil {
			continue
		}
		if result := strings.TrimSpace(strategy(doc, pageURL)); result != "" {
			return result
		}
	}
	return ""
}

// FirstText returns the text of the first element matched by the earliest selector that matches
func FirstText(selectors ...string) Strategy {
	return func(doc *goquery.Document, _ string) string {
		if doc == nil {
			return ""
		}
		for _, selector := range selectors {
			var text string
			doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text = helpers.CollapseSpaces(s.Text())
				return text == ""
			})
			if text != "" {
				return text
			}
		}
		return ""
	}
}

// Attr returns the first non-empty attribute, in attrs order, of the first element matching selector
func Attr(selector string, attrs ...string) Strategy {
	return func(doc *goquery.Document, _ string) string {
		if doc == nil {
			return ""
		}
		sel := doc.Find(selector).First()
		for _, attr := range attrs {
			if value, exists := sel.Attr(attr); exists && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
		return ""
	}
}

// Labeled returns the text of the first element whose text contains one of the row labels.
// Labels match case-insensitively.
func Labeled(rows ...LabeledSelector) Strategy {
	return labeled(rows, func(s string) string { return s })
}

// LabeledDigits is Labeled keeping only the digits, skipping rows without any
func LabeledDigits(rows ...LabeledSelector) Strategy {
	return labeled(rows, helpers.DigitsOnly)
}

func labeled(rows []LabeledSelector, transform func(string) string) Strategy {
	return func(doc *goquery.Document, _ string) string {
		if doc == nil {
			return ""
		}
		for _, row := range rows {
			var value string
			doc.Find(row.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := helpers.CollapseSpaces(s.Text())
				if !containsAnyFold(text, row.Labels) {
					return true
				}
				value = transform(text)
				return value == ""
			})
			if value != "" {
				return value
			}
		}
		return ""
	}
}

// URLMatch returns the first capturing group of pattern applied to the page URL,
// or the whole match when the pattern has no groups
func URLMatch(pattern *regexp.Regexp) Strategy {
	return func(_ *goquery.Document, pageURL string) string {
		if pattern == nil {
			return ""
		}
		match := pattern.FindStringSubmatch(pageURL)
		switch {
		case len(match) > 1:
			return match[1]
		case len(match) == 1:
			return match[0]
		}
		return ""
	}
}

// containsAnyFold reports whether text contains any label, ignoring case.
// An empty label list accepts everything.
func containsAnyFold(text string, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, label := range labels {
		if strings.Contains(lower, strings.ToLower(label)) {
			return true
		}
	}
	return false
}

// ClassifyContract maps a contract label to a contract type by substring match,
// defaulting to Sale
func ClassifyContract(text string, keys []ContractKeyword) ContractType {
	lower := strings.ToLower(text)
	for _, key := range keys {
		if key.Keyword != "" && strings.Contains(lower, strings.ToLower(key.Keyword)) {
			return key.Type
		}
	}
	return ContractSale
}

// SplitTitle applies the title heuristic: the full title is the model,
// the first word is the make
func SplitTitle(title string) (model, brand string) {
	model = helpers.CollapseSpaces(title)
	return model, helpers.FirstToken(model)
}
