// Package domain holds the core value types shared across the bid pipeline:
// items, evidence records, simulation results and the error kinds raised
// while moving an item from raw manifest row to priced, simulated outcome.
package domain

// ConditionBucket is the closed set of normalized item conditions.
type ConditionBucket string

const (
	ConditionNew       ConditionBucket = "new"
	ConditionLikeNew   ConditionBucket = "like_new"
	ConditionOpenBox   ConditionBucket = "open_box"
	ConditionUsedGood  ConditionBucket = "used_good"
	ConditionUsedFair  ConditionBucket = "used_fair"
	ConditionForParts  ConditionBucket = "for_parts"
	ConditionUnknown   ConditionBucket = "unknown"
)

// HazmatPolicy controls how the evidence gate treats hazmat-flagged items.
type HazmatPolicy string

const (
	HazmatExclude HazmatPolicy = "exclude"
	HazmatReview  HazmatPolicy = "review"
	HazmatAllow   HazmatPolicy = "allow"
)

// Identifiers holds the raw identifier fields a collaborator may supply.
// Normalisation (ASIN shape, UPC check digit, EAN shape) is expected to have
// already run by the time has_high_trust_id is set; Item carries both the
// raw strings (for audit) and the derived trust flag.
type Identifiers struct {
	ASIN string
	UPC  string
	EAN  string

	// HasHighTrustID is true iff any of ASIN/UPC/EAN is present and, for
	// UPC, passes the modulo-10 check digit. Computed by internal/identifiers.
	HasHighTrustID bool
}

// Canonical returns the single identifier to report, priority ASIN > UPC > EAN.
func (id Identifiers) Canonical() string {
	switch {
	case id.ASIN != "":
		return id.ASIN
	case id.UPC != "":
		return id.UPC
	case id.EAN != "":
		return id.EAN
	default:
		return ""
	}
}

// Item is an immutable manifest row plus whatever fields the pipeline stages
// have derived for it so far. Item values are owned by one pipeline
// invocation; the gate produces two disjoint views (core/upside) over the
// same underlying items, never copies that diverge.
type Item struct {
	SKULocal string
	Identifiers

	Title           string
	Brand           string
	ConditionBucket ConditionBucket
	Category        string
	Hazmat          bool

	KeepaPriceNewMed   *float64
	KeepaPriceUsedMed  *float64
	KeepaOffersCount   *int
	KeepaSalesRankMed  *float64
	KeepaNewCount      *int
	KeepaUsedCount     *int
	ManualPrice        *float64
	Quantity           int

	// Collaborator-aggregated evidence inputs, per §6.
	SoldCompsCount180d int
	HasSecondarySignal bool

	// Derived by PriceTriangulator (§4.2).
	EstPriceMu          float64
	EstPriceSigma       float64
	EstPriceP5          float64
	EstPriceP50         float64
	EstPriceP95         float64
	EstPriceP5Floored   bool
	HasPriceEstimate    bool

	// Derived by SellModel (§4.3/§4.4/§4.5).
	SellP60          float64
	SellHazardDaily  float64
	HasSellEstimate  bool
}

// EffectiveQuantity returns Quantity coerced to the spec's default of 1 when
// the manifest did not supply a positive integer.
func (it Item) EffectiveQuantity() int {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}
