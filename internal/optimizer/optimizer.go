// Package optimizer implements BidOptimizer (spec.md §4.7): bisection
// search over RoiSimulator's feasibility predicate to find the highest bid
// that still meets constraints. Grounded on roi.py's optimizer loop in
// original_source/.
package optimizer

import (
	"time"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
	"github.com/lotgenius/core/internal/simulate"
)

// Evaluator runs one feasibility evaluation at a candidate bid; RoiSimulator
// satisfies this via a closure over its item set and config.
type Evaluator func(bid float64) domain.SimulationResult

// FromItems builds an Evaluator backed by simulate.Run for a fixed item set,
// config and feasibility constraints.
func FromItems(items []domain.Item, p config.Pipeline, feas simulate.Feasibility, now time.Time) Evaluator {
	return func(bid float64) domain.SimulationResult {
		return simulate.Run(items, bid, p, feas, now)
	}
}

// Optimize bisects [p.BidLo, p.BidHi] for the highest feasible bid (§4.7).
// It maintains best as the most recently seen feasible midpoint; if none was
// ever feasible, it evaluates and returns the result at the left edge.
func Optimize(eval Evaluator, p config.Pipeline) domain.SimulationResult {
	lo, hi := p.BidLo, p.BidHi

	var best *domain.SimulationResult
	iterations := 0

	for iterations < p.MaxIter && hi-lo > p.BidTol {
		mid := lo + (hi-lo)/2
		result := eval(mid)
		iterations++
		result.Iterations = iterations

		if result.MeetsConstraints {
			r := result
			best = &r
			lo = mid
		} else {
			hi = mid
		}
	}

	if best != nil {
		best.Iterations = iterations
		return *best
	}

	left := eval(lo)
	left.Iterations = iterations
	return left
}
