package audit

// Config is the ruleset an Engine judges pages against. All fields are
// optional; New fills anything left empty from DefaultConfig, so the
// engine stays usable for a different brand or keyword set.
type Config struct {
	// BrandToken is the brand name a title is expected to mention.
	BrandToken string `mapstructure:"brandToken"`

	// PrimaryKeywords are the terms a meta description should cover.
	PrimaryKeywords []string `mapstructure:"primaryKeywords"`

	// ActionWords are call-to-action verbs expected in descriptions.
	ActionWords []string `mapstructure:"actionWords"`

	// GenericAnchorPhrases mark anchor text as non-descriptive.
	GenericAnchorPhrases []string `mapstructure:"genericAnchorPhrases"`

	// BaseURL is the site origin used to classify links as internal.
	BaseURL string `mapstructure:"baseUrl"`

	// SchemaContext is the canonical @context value for structured data.
	SchemaContext string `mapstructure:"schemaContext"`
}

// DefaultConfig returns the ruleset for the Mifty documentation site.
func DefaultConfig() Config {
	return Config{
		BrandToken:      "Mifty",
		PrimaryKeywords: []string{"mifty", "node.js", "typescript", "framework", "enterprise"},
		ActionWords:     []string{"build", "create", "learn", "discover", "explore", "get started"},
		GenericAnchorPhrases: []string{
			"click here", "read more", "learn more", "here", "this", "link",
		},
		BaseURL:       "https://mifty.dev",
		SchemaContext: "https://schema.org",
	}
}

// Engine runs the content-quality validators. It holds only immutable
// configuration, so a single Engine is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an Engine. Zero-valued config fields fall back to the
// defaults so a partial override never disables a rule.
func New(cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.BrandToken == "" {
		cfg.BrandToken = defaults.BrandToken
	}
	if len(cfg.PrimaryKeywords) == 0 {
		cfg.PrimaryKeywords = defaults.PrimaryKeywords
	}
	if len(cfg.ActionWords) == 0 {
		cfg.ActionWords = defaults.ActionWords
	}
	if len(cfg.GenericAnchorPhrases) == 0 {
		cfg.GenericAnchorPhrases = defaults.GenericAnchorPhrases
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.SchemaContext == "" {
		cfg.SchemaContext = defaults.SchemaContext
	}
	return &Engine{cfg: cfg}
}

// Config returns the ruleset the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}
