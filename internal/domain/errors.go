package domain

import "errors"

// Error kinds from §7. Most are not fatal to the pipeline — ItemInvalid
// drops a row, NoValidItems/NoFeasibleBid surface as result fields rather
// than propagating — but they're named sentinels so callers can
// errors.Is/As against them where the core does return an error.
var (
	// ErrConfigInvalid: non-finite threshold, negative fee, empty [lo,hi],
	// lo>hi. Fails fast to the caller.
	ErrConfigInvalid = errors.New("lotbid: invalid configuration")

	// ErrItemInvalid: quantity <= 0 after coercion, non-finite mu or sigma.
	// Not returned by the pipeline, which neither drops items nor writes an
	// ok=false record on these grounds: Item.EffectiveQuantity coerces a
	// non-positive quantity to 1, mu and sigma are not checked for
	// finiteness, and the simulator skips an item whose mu is at or below
	// 1e-6 without writing evidence for it.
	ErrItemInvalid = errors.New("lotbid: invalid item")

	// ErrNoValidItems: the core set is empty after the validity filter.
	ErrNoValidItems = errors.New("lotbid: no valid items in core set")

	// ErrNoFeasibleBid: bisection never found a feasible point.
	ErrNoFeasibleBid = errors.New("lotbid: no feasible bid found")

	// ErrEvidenceSinkFailed: append to the audit log failed. Swallowed by
	// every Sink caller in this repo (logged, never propagated). The sinks in
	// this repo return their underlying errors unwrapped, so errors.Is
	// against this sentinel does not match them.
	ErrEvidenceSinkFailed = errors.New("lotbid: evidence sink append failed")

	// ErrSimulationDegenerate: all draws produced zero variance/probability
	// (e.g. every item has sell_p60=0). Not returned by the simulator: such a
	// run completes normally, its cash array is all zero (unsold units only
	// add salvage to revenue), and meets_constraints comes from the usual
	// feasibility predicate.
	ErrSimulationDegenerate = errors.New("lotbid: simulation degenerate")
)
