package audit

import (
	"math"
	"strings"
)

// Densities inside [optimalDensityMin, optimalDensityMax] percent are
// considered healthy; below reads as under-use, above as stuffing.
const (
	optimalDensityMin = 1.0
	optimalDensityMax = 3.0
)

// AnalyzeKeywordDensity measures how often each keyword occurs in the
// content. A word counts toward a keyword when it contains the keyword
// as a substring; the measure is deliberately crude bag-of-words and
// does not split on punctuation.
func (e *Engine) AnalyzeKeywordDensity(content string, keywords []string) []KeywordDensityResult {
	words := strings.Fields(strings.ToLower(content))
	totalWords := len(words)

	results := make([]KeywordDensityResult, 0, len(keywords))
	for _, keyword := range keywords {
		needle := strings.ToLower(keyword)

		count := 0
		for _, word := range words {
			if strings.Contains(word, needle) {
				count++
			}
		}

		// Empty content yields zero density for every keyword rather
		// than a division by zero.
		density := 0.0
		if totalWords > 0 {
			density = roundTo2(float64(count) / float64(totalWords) * 100)
		}

		results = append(results, KeywordDensityResult{
			Keyword:   keyword,
			Count:     count,
			Density:   density,
			IsOptimal: density >= optimalDensityMin && density <= optimalDensityMax,
		})
	}
	return results
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
