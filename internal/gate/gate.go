// Package gate implements EvidenceGate (spec.md §4.1): the per-item
// admission policy deciding whether an item counts toward ROI (core) or is
// reported as upside only. Grounded on backend/lotgenius/gating.py in
// original_source/, generalized from its settings-module lookups to the
// injected config.Pipeline value.
package gate

import (
	"fmt"
	"strings"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

// Result is the per-item gate decision (§4.1 Outputs).
type Result struct {
	Passed        bool
	CoreIncluded  bool
	Reason        string
	Tags          []string
}

var genericTitleTerms = []string{
	"bundle", "lot", "assorted", "various", "pack", "generic", "case",
	"piece", "damaged", "broken", "repair", "for parts", "wholesale",
}

func ambiguityFlags(it domain.Item) []string {
	var flags []string

	title := strings.TrimSpace(it.Title)
	if title != "" {
		lower := strings.ToLower(title)
		for _, term := range genericTitleTerms {
			if strings.Contains(lower, term) {
				flags = append(flags, "generic:title")
				break
			}
		}
	}

	hasDescriptive := title != "" || it.Brand != "" || it.ConditionBucket != "" || it.Category != ""
	if !hasDescriptive {
		return flags
	}

	brand := strings.TrimSpace(it.Brand)
	if brand == "" && title != "" {
		flags = append(flags, "ambiguous:brand")
	}

	cond := strings.ToLower(strings.TrimSpace(string(it.ConditionBucket)))
	if cond == "unknown" || cond == "unspecified" {
		flags = append(flags, "ambiguous:condition")
	}

	return flags
}

// Evaluate runs the EvidenceGate algorithm from §4.1 for a single item.
// soldComps180d and hasSecondarySignal are collaborator-aggregated inputs
// (§9); hasHighTrustID is the identifier classifier's verdict (§4.8).
func Evaluate(it domain.Item, p config.Pipeline, soldComps180d int, hasSecondarySignal, hasHighTrustID bool) Result {
	var tags []string

	// 1. Policy gates first: brand, then hazmat.
	brand := strings.ToLower(strings.TrimSpace(it.Brand))
	if brand != "" {
		if _, gated := p.GatedBrands[brand]; gated {
			return Result{
				Passed:       false,
				CoreIncluded: false,
				Reason:       fmt.Sprintf("Brand gated: %s", it.Brand),
				Tags:         []string{"brand:gated"},
			}
		}
	}

	if it.Hazmat {
		switch p.HazmatPolicy {
		case domain.HazmatExclude:
			return Result{
				Passed:       false,
				CoreIncluded: false,
				Reason:       "Hazmat excluded",
				Tags:         []string{"hazmat"},
			}
		case domain.HazmatReview:
			tags = append(tags, "hazmat", "hazmat:review")
		default: // HazmatAllow or unset
			tags = append(tags, "hazmat", "hazmat:allow")
		}
	}

	// 2. High-trust bypass.
	if hasHighTrustID {
		return Result{
			Passed:       true,
			CoreIncluded: true,
			Reason:       "High-trust ID present",
			Tags:         append([]string{"id:trusted"}, tags...),
		}
	}

	// 3. Adaptive threshold.
	flags := ambiguityFlags(it)
	required := p.MinCompsBase + p.AmbiguityBonusPerFlag*len(flags)
	if required > p.MinCompsMax {
		required = p.MinCompsMax
	}

	// 4. Admit iff comps and secondary signal both satisfied.
	if soldComps180d >= required && hasSecondarySignal {
		okTags := append([]string{fmt.Sprintf("comps:>=%d", required), "secondary:yes"}, flags...)
		okTags = append(okTags, tags...)
		return Result{
			Passed:       true,
			CoreIncluded: true,
			Reason:       "Comps+secondary OK",
			Tags:         okTags,
		}
	}

	var failTags []string
	if soldComps180d < required {
		if required == 3 {
			failTags = append(failTags, "comps:<3")
		} else {
			failTags = append(failTags, fmt.Sprintf("comps:<%d", required))
		}
	}
	if !hasSecondarySignal {
		failTags = append(failTags, "secondary:no")
	}

	var reason string
	switch {
	case soldComps180d < required && !hasSecondarySignal:
		reason = "Insufficient comps and no secondary signals"
	case soldComps180d < required:
		reason = "Insufficient comps"
	default:
		reason = "No secondary signals"
	}

	allTags := append(failTags, flags...)
	allTags = append(allTags, tags...)
	return Result{
		Passed:       false,
		CoreIncluded: false,
		Reason:       reason,
		Tags:         allTags,
	}
}

// Partition splits items into core and upside sets per their gate Results,
// which must be aligned by index with items (§3 Ownership/Invariants).
func Partition(items []domain.Item, results []Result) (core, upside []domain.Item) {
	for i, it := range items {
		if results[i].CoreIncluded {
			core = append(core, it)
		} else {
			upside = append(upside, it)
		}
	}
	return core, upside
}
