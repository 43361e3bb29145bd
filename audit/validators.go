package audit

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const (
	titleMinLength     = 30
	titleSoftMaxLength = 55
	titleMaxLength     = 60

	descriptionMinLength   = 120
	descriptionIdealLength = 140
	descriptionMaxLength   = 160
)

// ValidateTitle checks a page title against length, branding and
// casing rules. Only one length rule fires, tested short, long,
// approaching in that order.
func (e *Engine) ValidateTitle(title string) ValidationResult {
	sc := newScorecard()

	length := len(title)
	switch {
	case length < titleMinLength:
		sc.fail(fmt.Sprintf("Title is too short (%d characters, minimum %d)", length, titleMinLength), 30)
	case length > titleMaxLength:
		sc.warn(fmt.Sprintf("Title is too long (%d characters, maximum %d)", length, titleMaxLength), 15)
	case length > titleSoftMaxLength:
		sc.warn(fmt.Sprintf("Title is approaching the maximum length (%d of %d characters)", length, titleMaxLength), 5)
	}

	if !strings.Contains(title, e.cfg.BrandToken) {
		sc.warn(fmt.Sprintf("Title does not mention %q", e.cfg.BrandToken), 10)
	}

	if !isTitleCase(title) {
		sc.warn("Title is not in title case", 5)
	}

	return sc.result()
}

// isTitleCase reports whether every word starts capitalized once
// surrounding punctuation is stripped. Words starting with a digit or
// symbol pass, so version numbers and dashes are not flagged.
func isTitleCase(title string) bool {
	for _, word := range strings.Fields(title) {
		word = strings.TrimFunc(word, unicode.IsPunct)
		if word == "" {
			continue
		}
		if first := []rune(word)[0]; unicode.IsLower(first) {
			return false
		}
	}
	return true
}

// ValidateDescription checks a meta description for length, keyword
// coverage, a call to action, and keyword stuffing.
func (e *Engine) ValidateDescription(description string) ValidationResult {
	sc := newScorecard()

	length := len(description)
	switch {
	case length < descriptionMinLength:
		sc.warn(fmt.Sprintf("Description is too short (%d characters, minimum %d)", length, descriptionMinLength), 20)
	case length > descriptionMaxLength:
		sc.fail(fmt.Sprintf("Description is too long (%d characters, maximum %d)", length, descriptionMaxLength), 25)
	case length < descriptionIdealLength:
		sc.warn(fmt.Sprintf("Description could be longer (%d characters, %d-%d is ideal)", length, descriptionIdealLength, descriptionMaxLength), 5)
	}

	lower := strings.ToLower(description)

	keywordMatches := 0
	for _, keyword := range e.cfg.PrimaryKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			keywordMatches++
		}
	}
	switch keywordMatches {
	case 0:
		sc.warn("Description does not mention any primary keyword", 15)
	case 1:
		sc.warn("Description mentions only one primary keyword", 5)
	}

	hasAction := false
	for _, verb := range e.cfg.ActionWords {
		if strings.Contains(lower, strings.ToLower(verb)) {
			hasAction = true
			break
		}
	}
	if !hasAction {
		sc.warn("Description contains no action words", 10)
	}

	if stuffed := repeatedWords(description); len(stuffed) > 0 {
		sc.warn(fmt.Sprintf("Possible keyword stuffing, repeated words: %s", strings.Join(stuffed, ", ")), 10)
	}

	return sc.result()
}

// repeatedWords returns the lower-cased words longer than three
// characters that appear more than twice, in order of first appearance.
func repeatedWords(text string) []string {
	counts := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) <= 3 {
			continue
		}
		counts[word]++
		if counts[word] == 1 {
			order = append(order, word)
		}
	}

	var repeated []string
	for _, word := range order {
		if counts[word] > 2 {
			repeated = append(repeated, word)
		}
	}
	return repeated
}

var (
	softwareAppRequiredFields    = []string{"name", "description", "applicationCategory"}
	softwareAppRecommendedFields = []string{"author", "offers", "operatingSystem", "url"}
)

// ValidateStructuredData checks a schema-like object for the canonical
// context, a type, and the field set that type implies.
func (e *Engine) ValidateStructuredData(schema map[string]any) ValidationResult {
	sc := newScorecard()

	if ctxValue, ok := schema["@context"]; !ok {
		sc.fail("Structured data is missing @context", 30)
	} else if s, isString := ctxValue.(string); !isString || s != e.cfg.SchemaContext {
		sc.warn(fmt.Sprintf("@context should be %q", e.cfg.SchemaContext), 5)
	}

	typeValue, hasType := schema["@type"]
	if !hasType {
		sc.fail("Structured data is missing @type", 30)
	}

	if schemaType, _ := typeValue.(string); schemaType == "SoftwareApplication" {
		for _, field := range softwareAppRequiredFields {
			if _, present := schema[field]; !present {
				sc.fail(fmt.Sprintf("SoftwareApplication is missing required field %q", field), 15)
			}
		}
		for _, field := range softwareAppRecommendedFields {
			if _, present := schema[field]; !present {
				sc.warn(fmt.Sprintf("SoftwareApplication is missing recommended field %q", field), 5)
			}
		}
	}

	// Keys are visited in sorted order so repeated runs produce the
	// same warning order.
	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if isEmptyValue(schema[key]) {
			sc.warn(fmt.Sprintf("Field %q has an empty value", key), 5)
		}
	}

	return sc.result()
}

func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}
