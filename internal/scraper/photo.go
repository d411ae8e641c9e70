package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	backgroundImageRegex = regexp.MustCompile(`background-image:\s*url\((?:['"]?)(.*?)(?:['"]?)\)`)
	templateArtifact     = regexp.MustCompile(`^\{\d*\}$|\{\{.*\}\}`)
)

// imageAttrs are read in order; src wins over the lazy-load attributes
var imageAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// PhotoResolver finds the main listing photo and makes it absolute
type PhotoResolver struct {
	BaseURL   string
	Selectors PhotoSelectors
}

// Resolve runs the photo strategies in order. The result is an absolute
// http(s) URL or "".
func (p PhotoResolver) Resolve(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	strategies := []func(*goquery.Document) string{
		p.primaryImage,
		openGraphImage,
		p.galleryImage,
		backgroundImage,
	}

	rejected := false
	for _, strategy := range strategies {
		candidate := strings.TrimSpace(strategy(doc))
		if candidate == "" {
			continue
		}
		if p.isPlaceholder(candidate) {
			rejected = true
			break
		}
		if resolved := p.absolute(candidate); resolved != "" {
			return resolved
		}
	}

	if rejected {
		return p.firstImage(doc, p.Selectors.Secondary)
	}
	return ""
}

// Similar scavenges a photo from the similar/related items sections
func (p PhotoResolver) Similar(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return p.firstImage(doc, p.Selectors.Similar)
}

func (p PhotoResolver) primaryImage(doc *goquery.Document) string {
	for _, selector := range p.Selectors.Primary {
		if src := imageSource(doc.Find(selector).First()); src != "" {
			return src
		}
	}
	return ""
}

func (p PhotoResolver) galleryImage(doc *goquery.Document) string {
	for _, selector := range p.Selectors.Gallery {
		if src, _ := doc.Find(selector).First().Attr("src"); strings.TrimSpace(src) != "" {
			return src
		}
	}
	return ""
}

// firstImage returns the first acceptable absolute image under any selector
func (p PhotoResolver) firstImage(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := imageSource(s)
			if src == "" || p.isPlaceholder(src) {
				return true
			}
			found = p.absolute(src)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func (p PhotoResolver) isPlaceholder(candidate string) bool {
	for _, sentinel := range p.Selectors.Sentinels {
		if candidate == sentinel {
			return true
		}
	}
	return templateArtifact.MatchString(candidate)
}

func (p PhotoResolver) absolute(candidate string) string {
	resolved := ResolveURL(p.BaseURL, candidate)
	if !strings.HasPrefix(resolved, "http://") && !strings.HasPrefix(resolved, "https://") {
		return ""
	}
	return resolved
}

func openGraphImage(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return content
}

func backgroundImage(doc *goquery.Document) string {
	style, _ := doc.Find(`[style*="background-image"]`).First().Attr("style")
	return ExtractURLFromStyle(style)
}

func imageSource(s *goquery.Selection) string {
	for _, attr := range imageAttrs {
		if value, exists := s.Attr(attr); exists && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// ExtractURLFromStyle pulls the url(...) target out of an inline background-image declaration
func ExtractURLFromStyle(style string) string {
	if match := backgroundImageRegex.FindStringSubmatch(style); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// ResolveURL joins href with baseURL. Absolute URLs are returned unchanged,
// protocol-relative ones get https, and anything that cannot be resolved
// against a valid absolute base comes back as "".
func ResolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(ref).String()
}
