package scraper

import (
	"strings"

	"sjsage522/machineryworker/helpers"

	"github.com/PuerkitoBio/goquery"
)

// ClassifyStatus maps a document to a lifecycle status. Phrase rules are
// checked before selector rules; within each kind the configured order holds
// and the first match wins. Without any match the listing is Active.
func ClassifyStatus(doc *goquery.Document, rules []StatusRule) Status {
	if doc == nil {
		return StatusActive
	}

	text := visibleText(doc)
	for _, rule := range rules {
		if len(rule.Phrases) == 0 {
			continue
		}
		for _, phrase := range rule.Phrases {
			if phrase = helpers.CollapseSpaces(phrase); phrase != "" && strings.Contains(text, phrase) {
				return rule.Status
			}
		}
	}

	for _, rule := range rules {
		if rule.Selector == "" {
			continue
		}
		if doc.Find(rule.Selector).Length() > 0 {
			return rule.Status
		}
	}

	return StatusActive
}

// visibleText returns the whitespace-normalised text of the page body without
// script and style contents. The document itself is left untouched.
func visibleText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	clone := root.Clone()
	clone.Find("script, style, noscript, template").Remove()
	return helpers.CollapseSpaces(clone.Text())
}
