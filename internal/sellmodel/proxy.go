// Package sellmodel implements the per-item sell-through models from
// spec.md §4.3-§4.5: the default proxy hazard model, the log-logistic
// survival alternative, and the pricing-ladder aggregator. Grounded on
// backend/lotgenius/sell.py, survivorship.py and ladder.py in
// original_source/.
package sellmodel

import (
	"math"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

const epsilon = 1e-6

// ListPriceMode selects which price basis feeds the price-to-market z-score.
type ListPriceMode string

const (
	ListPriceP50 ListPriceMode = "p50"
	ListPriceMu  ListPriceMode = "mu"
)

// ProxyOptions configures the proxy model's list-price basis (§4.3 step 1).
type ProxyOptions struct {
	ListPriceMode       ListPriceMode
	ListPriceMultiplier float64
	BaselineDailySales  float64
	Month               int // 1-12; used for seasonality lookup
}

// Estimate is a single item's sell-through output (§3 derived fields).
type Estimate struct {
	P60         float64
	HazardDaily float64
	PTMZ        float64
}

func listPrice(it domain.Item, opt ProxyOptions) float64 {
	var base float64
	switch opt.ListPriceMode {
	case ListPriceMu:
		base = it.EstPriceMu
	default:
		if it.EstPriceP50 > 0 {
			base = it.EstPriceP50
		} else {
			base = it.EstPriceMu
		}
	}
	mult := opt.ListPriceMultiplier
	if mult <= 0 {
		mult = 1.0
	}
	return base * mult
}

// priceToMarketZ is the standardised deviation of list price from modelled
// market mean (§4.3 step 2), shared by the proxy and survival models.
func priceToMarketZ(listPrice, mu, sigma, cvFallback float64) float64 {
	if mu <= 0 {
		return 0
	}
	s := sigma
	if s <= 0 {
		s = cvFallback * mu
		if s < epsilon {
			s = epsilon
		}
	}
	lp := listPrice
	if lp == 0 {
		lp = mu
	}
	return (lp - mu) / s
}

// priceElasticityFactor is pf from §4.3 step 3: over-market slows sales,
// under-market speeds them up to a 3x cap.
func priceElasticityFactor(z, beta float64) float64 {
	if z >= 0 {
		return math.Exp(-beta * z)
	}
	boosted := math.Exp(-beta * z)
	if boosted > 3.0 {
		return 3.0
	}
	return boosted
}

// dailySalesFromRank is the bounded power-law market-rate estimate from
// §4.3 step 4.
func dailySalesFromRank(rank, a, b, minRank, maxRank float64) float64 {
	r := rank
	if r < minRank {
		r = minRank
	}
	if r > maxRank {
		r = maxRank
	}
	v := a * math.Pow(r, b)
	if v < 0 {
		return 0
	}
	return v
}

func offersOrDefault(offers *int) int {
	if offers == nil || *offers <= 0 {
		return 1
	}
	return *offers
}

func seasonalityFactor(p config.Pipeline, category string, month int) float64 {
	if p.SeasonalityFactor == nil {
		return 1.0
	}
	byMonth, ok := p.SeasonalityFactor[category]
	if !ok {
		byMonth, ok = p.SeasonalityFactor["default"]
		if !ok {
			return 1.0
		}
	}
	if f, ok := byMonth[month]; ok {
		return f
	}
	return 1.0
}

func conditionVelocityFactor(p config.Pipeline, bucket domain.ConditionBucket) float64 {
	if f, ok := p.ConditionVelocityFactor[bucket]; ok {
		return f
	}
	return 1.0
}

// Proxy computes the default sell-through model (§4.3) for one item.
func Proxy(it domain.Item, p config.Pipeline, opt ProxyOptions) Estimate {
	lp := listPrice(it, opt)
	z := priceToMarketZ(lp, it.EstPriceMu, it.EstPriceSigma, p.CVFallback)
	pf := priceElasticityFactor(z, p.PriceElasticityBeta)

	var dailySalesMarket float64
	if it.KeepaSalesRankMed != nil && *it.KeepaSalesRankMed > 0 {
		dailySalesMarket = dailySalesFromRank(*it.KeepaSalesRankMed, p.RankPowerA, p.RankPowerB, p.MinRank, p.MaxRank)
	} else {
		dailySalesMarket = opt.BaselineDailySales
	}

	offers := offersOrDefault(it.KeepaOffersCount)
	hazardRaw := (dailySalesMarket / float64(offers)) * math.Max(0, pf)
	if hazardRaw > p.HazardCap {
		hazardRaw = p.HazardCap
	}

	// Elasticity first, then condition/seasonality, per ladder.py/sell.py
	// ordering clarified in original_source/ (SPEC_FULL.md §7).
	cf := conditionVelocityFactor(p, it.ConditionBucket)
	sf := seasonalityFactor(p, it.Category, opt.Month)
	lambda := hazardRaw * cf * sf

	horizon := float64(p.SellthroughHorizonDays)
	p60 := 1.0 - math.Exp(-lambda*horizon)
	if p60 < 0 {
		p60 = 0
	}
	if p60 > 1 {
		p60 = 1
	}

	return Estimate{P60: p60, HazardDaily: lambda, PTMZ: z}
}

// Apply writes a Proxy estimate onto a copy of the item.
func Apply(it domain.Item, p config.Pipeline, opt ProxyOptions) (domain.Item, Estimate) {
	est := Proxy(it, p, opt)
	it.SellP60 = est.P60
	it.SellHazardDaily = est.HazardDaily
	it.HasSellEstimate = true
	return it, est
}
