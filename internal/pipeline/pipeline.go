// Package pipeline wires the sequential DAG from spec.md §2/§5 — gate,
// triangulate, sell model (plus an optional pricing ladder), simulate and
// optimize — into one orchestrator call, writing evidence records to the
// injected domain.Sink in stage order (spec.md §8's round-trip property).
// Grounded on the teacher's cmd/server dependency-injection wiring, minus
// the database/HTTP concerns a pure library call doesn't need.
package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lotgenius/core/internal/condition"
	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
	"github.com/lotgenius/core/internal/gate"
	"github.com/lotgenius/core/internal/identifiers"
	"github.com/lotgenius/core/internal/optimizer"
	"github.com/lotgenius/core/internal/pricing"
	"github.com/lotgenius/core/internal/sellmodel"
	"github.com/lotgenius/core/internal/simulate"
)

// Row is one manifest input row (spec.md §3 Item's raw, pre-derivation
// fields), carrying the collaborator-aggregated evidence inputs alongside
// the item's own attributes.
type Row struct {
	SKULocal string

	ASIN, UPC, EAN, UPCEANASIN string

	Title, Brand string
	Category     string
	Hazmat       bool

	ConditionRaw    string
	ConditionDetail string
	Notes           string
	ItemConditionRaw string
	Grade           string

	KeepaPriceNewMed  *float64
	KeepaPriceUsedMed *float64
	KeepaOffersCount  *int
	KeepaSalesRankMed *float64
	KeepaNewCount     *int
	KeepaUsedCount    *int
	ManualPrice       *float64
	Quantity          int

	SoldCompsCount180d int
	HasSecondarySignal bool
}

// BuildItem resolves a Row's identifiers and condition bucket and produces
// the domain.Item the rest of the pipeline operates on (§4.8/§4.9).
func BuildItem(r Row) domain.Item {
	ids := identifiers.Extract(identifiers.Raw{
		ASIN:       r.ASIN,
		UPC:        r.UPC,
		EAN:        r.EAN,
		UPCEANASIN: r.UPCEANASIN,
	})
	bucket := condition.Bucket(condition.Fields{
		Condition:       r.ConditionRaw,
		ConditionDetail: r.ConditionDetail,
		Notes:           r.Notes,
		ItemCondition:   r.ItemConditionRaw,
		Grade:           r.Grade,
	})

	return domain.Item{
		SKULocal:           r.SKULocal,
		Identifiers:        ids,
		Title:              r.Title,
		Brand:              r.Brand,
		ConditionBucket:    bucket,
		Category:           r.Category,
		Hazmat:             r.Hazmat,
		KeepaPriceNewMed:   r.KeepaPriceNewMed,
		KeepaPriceUsedMed:  r.KeepaPriceUsedMed,
		KeepaOffersCount:   r.KeepaOffersCount,
		KeepaSalesRankMed:  r.KeepaSalesRankMed,
		KeepaNewCount:      r.KeepaNewCount,
		KeepaUsedCount:     r.KeepaUsedCount,
		ManualPrice:        r.ManualPrice,
		Quantity:           r.Quantity,
		SoldCompsCount180d: r.SoldCompsCount180d,
		HasSecondarySignal: r.HasSecondarySignal,
	}
}

// Options bundles the per-run knobs that sit outside config.Pipeline: the
// sell model's list-price basis/month, per-category price floors, optional
// pricing-ladder schedules keyed by sku_local, and the caller's extra cash
// constraints for the feasibility predicate.
type Options struct {
	SellOptions     sellmodel.ProxyOptions
	CategoryFloors  map[string]float64
	FloorIsFraction bool
	Ladders         map[string]sellmodel.Schedule
	Feasibility     simulate.Feasibility
	IncludeSamples  bool
}

// Result is the orchestrator's full output: both item views and the final
// simulation/optimization result.
type Result struct {
	Core             []domain.Item
	Upside           []domain.Item
	GateResults      []gate.Result
	Simulation       domain.SimulationResult
}

// Run executes the full pipeline over rows and flushes evidence records to
// sink in stage order: gate, then price:estimate/sell:estimate per core
// item, then one optimize:bid record per core item once the bid search
// concludes. Sink writes are best-effort — failures are logged by the sink
// implementation itself and never abort the run.
func Run(rows []Row, p config.Pipeline, sink domain.Sink, opt Options, now time.Time, logger zerolog.Logger) Result {
	if sink == nil {
		sink = domain.NopSink{}
	}

	items := make([]domain.Item, len(rows))
	gateResults := make([]gate.Result, len(rows))

	for i, r := range rows {
		it := BuildItem(r)
		gr := gate.Evaluate(it, p, r.SoldCompsCount180d, r.HasSecondarySignal, it.HasHighTrustID)
		items[i] = it
		gateResults[i] = gr

		if err := sink.Write(it.SKULocal, "gate", map[string]any{
			"reason":        gr.Reason,
			"tags":          gr.Tags,
			"passed":        gr.Passed,
			"core_included": gr.CoreIncluded,
		}, gr.Passed); err != nil {
			logger.Warn().Err(err).Str("sku_local", it.SKULocal).Msg("gate evidence write failed")
		}
	}

	core, upside := gate.Partition(items, gateResults)

	for i, it := range core {
		floor := opt.CategoryFloors[it.Category]
		priced, priceEst := pricing.Apply(it, p, floor, opt.FloorIsFraction)

		if err := sink.Write(priced.SKULocal, "price:estimate", map[string]any{
			"mu":          priceEst.Mu,
			"sigma":       priceEst.Sigma,
			"p5":          priceEst.P5,
			"p50":         priceEst.P50,
			"p95":         priceEst.P95,
			"p5_floored":  priceEst.P5Floored,
		}, priceEst.OK); err != nil {
			logger.Warn().Err(err).Str("sku_local", priced.SKULocal).Msg("price evidence write failed")
		}

		sold, sellEst := sellmodel.EstimateFor(priced, p, opt.SellOptions)
		modelUsed := p.SellModelKind

		if sched, hasLadder := opt.Ladders[sold.SKULocal]; hasLadder {
			sold, sellEst = sellmodel.ApplyLadder(sold, p, sched, sellEst.HazardDaily)
			modelUsed = "ladder"
		}

		if err := sink.Write(sold.SKULocal, "sell:estimate", map[string]any{
			"model":        modelUsed,
			"p60":          sellEst.P60,
			"hazard_daily": sellEst.HazardDaily,
		}, true); err != nil {
			logger.Warn().Err(err).Str("sku_local", sold.SKULocal).Msg("sell evidence write failed")
		}

		core[i] = sold
	}

	eval := optimizer.FromItems(core, p, opt.Feasibility, now)
	simResult := optimizer.Optimize(eval, p)

	for _, it := range core {
		meta := map[string]any{
			"bid":               simResult.Bid,
			"roi_p50":           simResult.ROIP50,
			"meets_constraints": simResult.MeetsConstraints,
			"iterations":        simResult.Iterations,
		}
		if opt.IncludeSamples {
			meta["_samples"] = map[string]any{
				"revenue_by_sim": simResult.RevenueBySim,
				"cash_60d_by_sim": simResult.Cash60dBySim,
				"roi_by_sim":     simResult.ROIBySim,
			}
		}
		if err := sink.Write(it.SKULocal, "optimize:bid", meta, simResult.MeetsConstraints); err != nil {
			logger.Warn().Err(err).Str("sku_local", it.SKULocal).Msg("optimize evidence write failed")
		}
	}

	return Result{
		Core:        core,
		Upside:      upside,
		GateResults: gateResults,
		Simulation:  simResult,
	}
}
