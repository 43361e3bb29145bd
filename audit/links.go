package audit

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// A page whose internal share of links drops below this ratio gets a
// suggestion to link to more of its own pages.
const minInternalLinkRatio = 0.3

// Pages carrying more links than this dilute every individual link.
const maxRecommendedLinks = 100

// AnalyzeInternalLinks walks every anchor in content, classifies it as
// internal or external against baseURL, and rates its anchor text as
// descriptive or generic. No network requests are made, so BrokenLinks
// is always empty. An empty baseURL falls back to the configured one.
func (e *Engine) AnalyzeInternalLinks(content, baseURL string) InternalLinkAnalysis {
	if baseURL == "" {
		baseURL = e.cfg.BaseURL
	}

	analysis := InternalLinkAnalysis{
		BrokenLinks: []string{},
		AnchorTextOptimization: AnchorTextOptimization{
			Suggestions: []string{},
		},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// Unparseable content degrades to a report with no links.
		return analysis
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		analysis.TotalLinks++
		if strings.HasPrefix(href, "/") || strings.HasPrefix(href, baseURL) {
			analysis.InternalLinks++
		} else {
			analysis.ExternalLinks++
		}

		if e.isGenericAnchor(sel.Text()) {
			analysis.AnchorTextOptimization.Generic++
		} else {
			analysis.AnchorTextOptimization.Optimized++
		}
	})

	opt := &analysis.AnchorTextOptimization
	if opt.Generic > 0 {
		opt.Suggestions = append(opt.Suggestions,
			fmt.Sprintf("Replace %d generic anchor text(s) with text that describes the target page", opt.Generic))
	}
	if float64(analysis.InternalLinks) < minInternalLinkRatio*float64(analysis.TotalLinks) {
		opt.Suggestions = append(opt.Suggestions,
			"Add more internal links to related pages")
	}
	if analysis.TotalLinks > maxRecommendedLinks {
		opt.Suggestions = append(opt.Suggestions,
			fmt.Sprintf("Reduce the number of links on the page (found %d)", analysis.TotalLinks))
	}

	return analysis
}

// isGenericAnchor reports whether anchor text contains one of the
// configured generic phrases, case-insensitively.
func (e *Engine) isGenericAnchor(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range e.cfg.GenericAnchorPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
