// Package condition maps free-text condition strings to the closed bucket
// set from domain.ConditionBucket. Grounded on
// backend/lotgenius/normalize.py in original_source/: ordered substring
// matching from most to least specific, so "open box" never falls into
// "new" and "refurbished" never falls into "for_parts".
package condition

import (
	"regexp"
	"strings"

	"github.com/lotgenius/core/internal/domain"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorRe  = regexp.MustCompile(`[_\-/]+`)
)

func clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = separatorRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return s
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// Normalize classifies a single raw condition string into its bucket.
// Order matters: open_box and like_new are checked before the generic "new"
// test so more specific descriptions win.
func Normalize(raw string) domain.ConditionBucket {
	if strings.TrimSpace(raw) == "" {
		return domain.ConditionUnknown
	}
	cleaned := clean(raw)

	if containsAny(cleaned, "open box", "openbox", "display", "demo", "floor model",
		"new other", "new(other)", "new (other)") {
		return domain.ConditionOpenBox
	}

	if containsAny(cleaned, "like new", "likenew", "mint", "pristine", "excellent",
		"near new", "barely used", "lightly used") {
		return domain.ConditionLikeNew
	}

	if containsAny(cleaned, "refurbished", "refurb", "reconditioned", "renewed", "certified") {
		return domain.ConditionUsedGood
	}

	isQualifiedNew := containsAny(cleaned, "brand new", "sealed", "unopened", "bnib", "nib", "bnwt", "nwt")
	isBareNew := strings.Contains(cleaned, "new") && !containsAny(cleaned,
		"like", "other", "open", "used", "refurb", "excellent", "mint", "pristine", "renewed")
	if isQualifiedNew || isBareNew {
		return domain.ConditionNew
	}

	if containsAny(cleaned, "parts", "repair", "not working", "broken", "damaged",
		"defective", "faulty", "as is", "asis", "salvage", "scrap", "junk") {
		return domain.ConditionForParts
	}

	if strings.Contains(cleaned, "used") || containsAny(cleaned, "pre owned", "preowned") {
		if containsAny(cleaned, "good", "very good", "great", "vg", "v good", "v.good") {
			return domain.ConditionUsedGood
		}
		if containsAny(cleaned, "fair", "acceptable", "ok", "okay", "average", "moderate") {
			return domain.ConditionUsedFair
		}
		return domain.ConditionUsedGood
	}

	if containsAny(cleaned, "good", "very good", "great", "vg") {
		return domain.ConditionUsedGood
	}
	if containsAny(cleaned, "fair", "acceptable", "ok", "okay") {
		return domain.ConditionUsedFair
	}

	if containsAny(cleaned, "return", "customer return", "returned") {
		if containsAny(cleaned, "damaged", "broken", "defective") {
			return domain.ConditionForParts
		}
		return domain.ConditionOpenBox
	}

	return domain.ConditionUnknown
}

// Fields is the set of fallback text fields and grade codes a manifest row
// may supply, in the priority order normalize.py's condition_bucket checks.
type Fields struct {
	Condition       string
	ConditionDetail string
	Notes           string
	ItemCondition   string
	Grade           string
}

func gradeToBucket(grade string) (domain.ConditionBucket, bool) {
	switch strings.ToUpper(strings.TrimSpace(grade)) {
	case "A", "A+":
		return domain.ConditionLikeNew, true
	case "B", "B+":
		return domain.ConditionUsedGood, true
	case "C", "C+":
		return domain.ConditionUsedFair, true
	case "D", "F":
		return domain.ConditionForParts, true
	default:
		return "", false
	}
}

// Bucket resolves a manifest row's condition bucket by checking Condition,
// then ConditionDetail, then keyword hints in Notes, then ItemCondition,
// then a letter Grade, falling back to "unknown".
func Bucket(f Fields) domain.ConditionBucket {
	if f.Condition != "" {
		if b := Normalize(f.Condition); b != domain.ConditionUnknown {
			return b
		}
	}
	if f.ConditionDetail != "" {
		if b := Normalize(f.ConditionDetail); b != domain.ConditionUnknown {
			return b
		}
	}
	if f.Notes != "" {
		notes := strings.ToLower(f.Notes)
		switch {
		case containsAny(notes, "open box", "opened"):
			return domain.ConditionOpenBox
		case containsAny(notes, "damaged", "broken"):
			return domain.ConditionForParts
		case containsAny(notes, "like new", "mint"):
			return domain.ConditionLikeNew
		case strings.Contains(notes, "refurb"):
			return domain.ConditionUsedGood
		}
	}
	if f.ItemCondition != "" {
		if b := Normalize(f.ItemCondition); b != domain.ConditionUnknown {
			return b
		}
	}
	if f.Grade != "" {
		if b, ok := gradeToBucket(f.Grade); ok {
			return b
		}
	}
	return domain.ConditionUnknown
}
