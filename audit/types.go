package audit

// PageMetadata is the input to an audit: the fields the site generator
// extracts from a page's front-matter and rendered HTML.
type PageMetadata struct {
	Title          string         `json:"title" binding:"required"`
	Description    string         `json:"description"`
	Content        string         `json:"content"`
	Keywords       []string       `json:"keywords"`
	StructuredData map[string]any `json:"structuredData,omitempty"`
}

// ValidationResult is the uniform output of every validator. Warnings
// lower the score; errors lower it more and mark the page invalid.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	Score    int      `json:"score"`
}

// KeywordDensityResult reports how often one target keyword appears in
// the page content, as a percentage of all words.
type KeywordDensityResult struct {
	Keyword   string  `json:"keyword"`
	Count     int     `json:"count"`
	Density   float64 `json:"density"`
	IsOptimal bool    `json:"isOptimal"`
}

// AnchorTextOptimization splits the page's anchors into descriptive and
// generic ones. Optimized + Generic always equals the link total.
type AnchorTextOptimization struct {
	Optimized   int      `json:"optimized"`
	Generic     int      `json:"generic"`
	Suggestions []string `json:"suggestions"`
}

// InternalLinkAnalysis describes the page's link graph. BrokenLinks is
// always empty: no network verification happens in this engine.
type InternalLinkAnalysis struct {
	TotalLinks             int                    `json:"totalLinks"`
	InternalLinks          int                    `json:"internalLinks"`
	ExternalLinks          int                    `json:"externalLinks"`
	BrokenLinks            []string               `json:"brokenLinks"`
	AnchorTextOptimization AnchorTextOptimization `json:"anchorTextOptimization"`
}

// AuditReport is the merged result of auditing one page.
type AuditReport struct {
	OverallScore             int                    `json:"overallScore"`
	TitleValidation          ValidationResult       `json:"titleValidation"`
	DescriptionValidation    ValidationResult       `json:"descriptionValidation"`
	KeywordDensity           []KeywordDensityResult `json:"keywordDensity"`
	StructuredDataValidation *ValidationResult      `json:"structuredDataValidation,omitempty"`
	InternalLinkAnalysis     InternalLinkAnalysis   `json:"internalLinkAnalysis"`
	Recommendations          []string               `json:"recommendations"`
}
