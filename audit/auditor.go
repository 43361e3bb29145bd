package audit

import (
	"fmt"
	"math"
	"strings"
)

// Component score used in the overall average when a page ships no
// structured data at all.
const defaultStructuredDataScore = 80

// AuditPage runs every validator and analyzer over one page and merges
// the results into a single report. It never fails: malformed or
// missing optional inputs degrade to findings, not errors.
func (e *Engine) AuditPage(page PageMetadata) AuditReport {
	report := AuditReport{
		TitleValidation:       e.ValidateTitle(page.Title),
		DescriptionValidation: e.ValidateDescription(page.Description),
		KeywordDensity:        e.AnalyzeKeywordDensity(page.Content, page.Keywords),
		InternalLinkAnalysis:  e.AnalyzeInternalLinks(page.Content, e.cfg.BaseURL),
	}

	structuredScore := defaultStructuredDataScore
	if page.StructuredData != nil {
		result := e.ValidateStructuredData(page.StructuredData)
		report.StructuredDataValidation = &result
		structuredScore = result.Score
	}

	// The overall score is the unweighted mean of exactly these three
	// component scores; link analysis feeds recommendations only.
	total := report.TitleValidation.Score + report.DescriptionValidation.Score + structuredScore
	report.OverallScore = int(math.Round(float64(total) / 3))

	report.Recommendations = e.buildRecommendations(&report)
	return report
}

// buildRecommendations emits at most one actionable line per finding
// category, structural problems first.
func (e *Engine) buildRecommendations(report *AuditReport) []string {
	recommendations := []string{}

	if hasFindings(report.TitleValidation) {
		recommendations = append(recommendations,
			fmt.Sprintf("Improve the page title: aim for %d-%d characters in title case, mentioning %q",
				titleMinLength, titleMaxLength, e.cfg.BrandToken))
	}
	if hasFindings(report.DescriptionValidation) {
		recommendations = append(recommendations,
			fmt.Sprintf("Improve the meta description: aim for %d-%d characters with primary keywords and a call to action",
				descriptionMinLength, descriptionMaxLength))
	}
	if off := suboptimalKeywords(report.KeywordDensity); len(off) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Adjust keyword density toward %.1f-%.1f%% for: %s",
				optimalDensityMin, optimalDensityMax, strings.Join(off, ", ")))
	}
	if generic := report.InternalLinkAnalysis.AnchorTextOptimization.Generic; generic > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Rewrite %d generic anchor text(s) so links describe their target", generic))
	}
	if report.StructuredDataValidation == nil {
		recommendations = append(recommendations,
			"Add structured data (JSON-LD) so search engines understand the page")
	}

	return recommendations
}

func hasFindings(result ValidationResult) bool {
	return len(result.Warnings) > 0 || len(result.Errors) > 0
}

func suboptimalKeywords(results []KeywordDensityResult) []string {
	var keywords []string
	for _, result := range results {
		if !result.IsOptimal {
			keywords = append(keywords, result.Keyword)
		}
	}
	return keywords
}
