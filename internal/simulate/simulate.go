// Package simulate implements RoiSimulator (spec.md §4.6): a vectorised
// Monte Carlo over the core item set that produces per-sim revenue, cash and
// ROI distributions plus a feasibility verdict. Grounded on roi.py in
// original_source/ for the per-unit revenue/cash formulas, and on
// trader/pkg/formulas/cvar.go for the gonum distuv.Normal{...}.Rand() usage
// pattern.
package simulate

import (
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

const minValidMu = 1e-6

// Feasibility carries the optional caller-supplied constraints from §4.6's
// feasibility predicate that are not already part of config.Pipeline.
type Feasibility struct {
	MinCash60d   *float64
	MinCash60dP5 *float64
}

// coreRow is the subset of an item the simulator actually consumes (§4.6
// Input), defaulting missing sigma/sell_p60 per the spec.
type coreRow struct {
	mu       float64
	sigma    float64
	sellP60  float64
	quantity int
}

func rowsFromItems(items []domain.Item) []coreRow {
	rows := make([]coreRow, 0, len(items))
	for _, it := range items {
		mu := it.EstPriceMu
		if mu <= minValidMu {
			continue
		}
		sigma := it.EstPriceSigma
		if sigma <= 0 {
			sigma = 0.20 * mu
		}
		rows = append(rows, coreRow{
			mu:       mu,
			sigma:    sigma,
			sellP60:  it.SellP60,
			quantity: it.EffectiveQuantity(),
		})
	}
	return rows
}

// Run executes one Monte Carlo evaluation at the given bid (§4.6). sims and
// seed come from p.Sims/p.Seed; feas supplies the optional cash constraints
// the caller wants enforced beyond config.Pipeline.CashFloor.
func Run(items []domain.Item, bid float64, p config.Pipeline, feas Feasibility, now time.Time) domain.SimulationResult {
	rows := rowsFromItems(items)

	if len(rows) == 0 {
		return domain.SimulationResult{
			Bid:              bid,
			Sims:             int(p.Sims),
			ItemsInCore:      0,
			MeetsConstraints: false,
			ROITarget:        p.MinROITarget,
			RiskThreshold:    p.RiskThreshold,
			MinCash60d:       feas.MinCash60d,
			MinCash60dP5:     feas.MinCash60dP5,
			Timestamp:        now.UTC(),
		}
	}

	sims := int(p.Sims)
	src := rand.NewSource(p.Seed)

	revenueBySim := make([]float64, sims)
	cashBySim := make([]float64, sims)
	roiBySim := make([]float64, sims)

	divisor := bid + p.LotFixedCost

	for s := 0; s < sims; s++ {
		var revenueSum, cashSum float64
		for _, row := range rows {
			priceDraw := distuv.Normal{Mu: row.mu, Sigma: row.sigma, Src: src}.Rand()
			if priceDraw < 0 {
				priceDraw = 0
			}

			sold := distuv.Bernoulli{P: clampUnit(row.sellP60), Src: src}.Rand() > 0

			if sold {
				netSold := priceDraw*(1-p.MarketplaceFeePct-p.PaymentFeePct) -
					(p.PerOrderFeeFixed + p.ShippingPerOrder + p.PackagingPerOrder + p.RefurbPerOrder)
				netSold *= 1 - p.ReturnRate
				if netSold < 0 {
					netSold = 0
				}
				revenueSum += netSold
				cashSum += netSold
			} else {
				salvage := priceDraw * p.SalvageFrac * (1 - p.SalvageFeePct)
				if salvage < 0 {
					salvage = 0
				}
				revenueSum += salvage
			}
		}

		revenueBySim[s] = revenueSum
		cashBySim[s] = cashSum
		if divisor > 0 {
			roiBySim[s] = revenueSum / divisor
		}
	}

	result := domain.SimulationResult{
		Bid:          bid,
		Sims:         sims,
		ItemsInCore:  len(rows),
		RevenueBySim: revenueBySim,
		Cash60dBySim: cashBySim,
		ROIBySim:     roiBySim,

		ROITarget:     p.MinROITarget,
		RiskThreshold: p.RiskThreshold,
		MinCash60d:    feas.MinCash60d,
		MinCash60dP5:  feas.MinCash60dP5,

		Timestamp: now.UTC(),
	}

	sortedROI := sortedCopy(roiBySim)
	result.ROIP5 = stat.Quantile(0.05, stat.Empirical, sortedROI, nil)
	result.ROIP50 = stat.Quantile(0.50, stat.Empirical, sortedROI, nil)
	result.ROIP95 = stat.Quantile(0.95, stat.Empirical, sortedROI, nil)

	sortedCash := sortedCopy(cashBySim)
	result.CashP5 = stat.Quantile(0.05, stat.Empirical, sortedCash, nil)
	result.CashP50 = stat.Quantile(0.50, stat.Empirical, sortedCash, nil)
	result.CashP95 = stat.Quantile(0.95, stat.Empirical, sortedCash, nil)

	probROI := meanGE(roiBySim, p.MinROITarget)
	result.ProbROIGeTarget = &probROI
	result.ExpectedCash60d = stat.Mean(cashBySim, nil)

	totalMinutes := 0.0
	for _, row := range rows {
		totalMinutes += float64(row.quantity) * p.MinsPerUnit
	}
	result.TotalMinutesRequired = totalMinutes
	result.AvailableMinutes = p.CapacityMinsPerDay * float64(p.SellthroughHorizonDays)
	result.ThroughputOK = totalMinutes <= result.AvailableMinutes

	minCash := p.CashFloor
	if feas.MinCash60d != nil {
		minCash = *feas.MinCash60d
	}

	feasible := probROI >= p.RiskThreshold &&
		result.ExpectedCash60d >= minCash &&
		result.ThroughputOK
	if feas.MinCash60dP5 != nil {
		feasible = feasible && result.CashP5 >= *feas.MinCash60dP5
	}
	result.MeetsConstraints = feasible

	return result
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func meanGE(xs []float64, target float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var hits int
	for _, x := range xs {
		if x >= target {
			hits++
		}
	}
	return float64(hits) / float64(len(xs))
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}
