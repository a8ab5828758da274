// Package pricing implements PriceTriangulator (spec.md §4.2): fuses zero
// or more noisy per-item price sources into a single (µ, σ, P5/P50/P95)
// estimate via inverse-variance weighting. Grounded on
// backend/lotgenius/pricing.py in original_source/.
package pricing

import (
	"math"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

// zScore95 is the standard Normal quantile constant for the 5th/95th
// percentiles (§6 Numeric contracts); the 50th percentile is the mean.
const zScore95 = 1.6448536269514729

const epsilon = 1e-6

// SourceStat is a single noisy price observation to fuse (§4.2).
type SourceStat struct {
	Name     string
	Mu       float64
	CV       float64
	N        int
	Recency  float64
	Prior    float64
}

// SourceWeight records a fused source's contribution for audit (§4.2 Outputs).
type SourceWeight struct {
	SourceStat
	Weight float64
}

// Estimate is the triangulated price distribution for one item.
type Estimate struct {
	OK      bool
	Mu      float64
	Sigma   float64
	P5      float64
	P50     float64
	P95     float64
	P5Floored bool
	Sources []SourceWeight
}

func clipPositive(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func percentileNormal(mu, sigma, z float64) float64 {
	return mu + z*sigma
}

func inverseVarianceWeight(s SourceStat) float64 {
	cv := s.CV
	if cv < epsilon {
		cv = epsilon
	}
	mu := s.Mu
	if mu < epsilon {
		mu = epsilon
	}
	variance := (cv * mu) * (cv * mu)
	n := s.N
	if n < 1 {
		n = 1
	}
	recency := s.Recency
	if recency < 0 {
		recency = 0
	}
	base := s.Prior * recency * float64(n)
	return base / variance
}

// Fuse combines sources into a single Normal(µ, σ) estimate and derives
// P5/P50/P95 at the standard quantiles, clipped at zero. An optional
// category price floor (absolute dollars, or a fraction of µ when
// floorIsFraction is set) may raise P5; floorValue <= 0 disables it.
func Fuse(sources []SourceStat, floorValue float64, floorIsFraction bool) Estimate {
	if len(sources) == 0 {
		return Estimate{OK: false}
	}

	var sumW, sumWMu float64
	weighted := make([]SourceWeight, 0, len(sources))
	for _, s := range sources {
		w := inverseVarianceWeight(s)
		sumW += w
		sumWMu += w * s.Mu
		weighted = append(weighted, SourceWeight{SourceStat: s, Weight: w})
	}
	if sumW <= 0 {
		return Estimate{OK: false}
	}

	mu := sumWMu / sumW
	sigma := math.Sqrt(1.0 / sumW)

	p5 := clipPositive(percentileNormal(mu, sigma, -zScore95))
	p50 := clipPositive(percentileNormal(mu, sigma, 0))
	p95 := clipPositive(percentileNormal(mu, sigma, zScore95))

	floored := false
	if floorValue > 0 {
		floor := floorValue
		if floorIsFraction {
			floor = floorValue * mu
		}
		if floor > p5 {
			p5 = floor
			floored = true
			if p5 > p50 {
				p50 = p5
			}
			if p50 > p95 {
				p95 = p50
			}
		}
	}

	return Estimate{
		OK:        true,
		Mu:        mu,
		Sigma:     sigma,
		P5:        p5,
		P50:       p50,
		P95:       p95,
		P5Floored: floored,
		Sources:   weighted,
	}
}

func isNewish(b domain.ConditionBucket) bool {
	switch b {
	case domain.ConditionNew, domain.ConditionLikeNew, domain.ConditionOpenBox:
		return true
	default:
		return false
	}
}

func offersToN(offers *int) int {
	if offers == nil || *offers <= 0 {
		return 1
	}
	return *offers
}

// SourcesFromItem builds the zero-or-one Keepa source for an item following
// the §4.2 selection rule: prefer keepa:new for new-ish conditions, else
// keepa:used; fall back to whichever median is present if the preferred one
// is missing.
func SourcesFromItem(it domain.Item, p config.Pipeline) []SourceStat {
	newMed := it.KeepaPriceNewMed
	usedMed := it.KeepaPriceUsedMed
	n := offersToN(it.KeepaOffersCount)
	prior := p.SourcePriors["keepa"]

	mk := func(name string, mu float64) SourceStat {
		return SourceStat{Name: name, Mu: mu, CV: p.CVFallback, N: n, Recency: 1.0, Prior: prior}
	}

	switch {
	case isNewish(it.ConditionBucket) && newMed != nil:
		return []SourceStat{mk("keepa:new", *newMed)}
	case !isNewish(it.ConditionBucket) && usedMed != nil:
		return []SourceStat{mk("keepa:used", *usedMed)}
	case newMed != nil:
		return []SourceStat{mk("keepa:new", *newMed)}
	case usedMed != nil:
		return []SourceStat{mk("keepa:used", *usedMed)}
	default:
		return nil
	}
}

// Apply computes an item's price estimate and writes the derived fields on
// a copy of it, matching the spec's "updated item fields" output contract.
func Apply(it domain.Item, p config.Pipeline, categoryFloor float64, floorIsFraction bool) (domain.Item, Estimate) {
	sources := SourcesFromItem(it, p)
	est := Fuse(sources, categoryFloor, floorIsFraction)
	if !est.OK {
		return it, est
	}
	it.EstPriceMu = est.Mu
	it.EstPriceSigma = est.Sigma
	it.EstPriceP5 = est.P5
	it.EstPriceP50 = est.P50
	it.EstPriceP95 = est.P95
	it.EstPriceP5Floored = est.P5Floored
	it.HasPriceEstimate = true
	return it, est
}
