package sellmodel

import (
	"math"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

// LogLogisticSurvival computes the alternative survival-curve sell model
// (§4.4): S(t) = 1 / (1 + (t/alpha)^beta). Grounded on survivorship.py in
// original_source/.
func LogLogisticSurvival(t, alpha, beta float64) float64 {
	if alpha <= 0 {
		alpha = epsilon
	}
	if t <= 0 {
		return 1.0
	}
	ratio := math.Pow(t/alpha, beta)
	return 1.0 / (1.0 + ratio)
}

// LogLogisticHazardAt is the instantaneous hazard rate of the log-logistic
// survival curve at time t. LogLogistic does not use it: its HazardDaily is
// the horizon-averaged -ln(1-p)/t.
func LogLogisticHazardAt(t, alpha, beta float64) float64 {
	if alpha <= 0 {
		alpha = epsilon
	}
	if t <= 0 {
		t = epsilon
	}
	ratio := math.Pow(t/alpha, beta)
	numerator := (beta / t) * ratio
	return numerator / (1.0 + ratio)
}

// alphaCategoryFactor is the per-category alpha multiplier (§3 "sell model"
// config line lists it alongside condition_velocity_factor/seasonality_factor
// as an optional knob); no category-level overrides are configured by
// default so it is 1.0 unless a future config surface adds one.
const alphaCategoryFactor = 1.0

// LogLogistic computes the §4.4 sell-through estimate for one item:
// alpha_item = alpha * alpha_category * exp(0.1*max(z,0)) / max(condition_velocity*seasonality, eps);
// p(t) = (t/alpha)^beta / (1 + (t/alpha)^beta) evaluated at the horizon.
func LogLogistic(it domain.Item, p config.Pipeline, opt ProxyOptions) Estimate {
	lp := listPrice(it, opt)
	z := priceToMarketZ(lp, it.EstPriceMu, it.EstPriceSigma, p.CVFallback)
	cf := conditionVelocityFactor(p, it.ConditionBucket)
	sf := seasonalityFactor(p, it.Category, opt.Month)
	denom := math.Max(cf*sf, epsilon)

	alpha := p.SurvivalAlpha * alphaCategoryFactor * math.Exp(0.1*math.Max(z, 0)) / denom
	horizon := float64(p.SellthroughHorizonDays)
	s60 := LogLogisticSurvival(horizon, alpha, p.SurvivalBeta)
	p60 := 1.0 - s60
	if p60 < 0 {
		p60 = 0
	}
	if p60 > 1 {
		p60 = 1
	}

	hazard := 0.0
	if p60 < 1 && horizon > 0 {
		hazard = -math.Log(1-p60) / horizon
	}
	return Estimate{P60: p60, HazardDaily: hazard, PTMZ: z}
}

// ApplyLogLogistic writes a LogLogistic estimate onto a copy of the item.
func ApplyLogLogistic(it domain.Item, p config.Pipeline, opt ProxyOptions) (domain.Item, Estimate) {
	est := LogLogistic(it, p, opt)
	it.SellP60 = est.P60
	it.SellHazardDaily = est.HazardDaily
	it.HasSellEstimate = true
	return it, est
}

// EstimateFor computes the sell-through estimate using whichever model
// p.SellModelKind selects ("proxy" default, or "loglogistic").
func EstimateFor(it domain.Item, p config.Pipeline, opt ProxyOptions) (domain.Item, Estimate) {
	if p.SellModelKind == "loglogistic" {
		return ApplyLogLogistic(it, p, opt)
	}
	return Apply(it, p, opt)
}
