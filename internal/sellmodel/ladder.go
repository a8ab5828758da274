package sellmodel

import (
	"math"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

// Segment is one leg of a pricing ladder schedule (§4.5): a fixed price held
// from StartDay (inclusive) to EndDay (exclusive, or the horizon for the
// last segment).
type Segment struct {
	Price    float64
	StartDay float64
	EndDay   float64
}

// Schedule is an ordered, non-overlapping set of up to three day segments:
// base price, a discount after day D, and clearance after day C, all capped
// at the sellthrough horizon.
type Schedule struct {
	Segments []Segment
}

// NewSchedule builds the canonical base/discount/clearance ladder. basePrice
// is the reference for the whole schedule (§7: the first segment's price,
// not the item's fused mu). A discountDay or clearanceDay of 0, or one at or
// beyond the horizon, disables that leg, as does a clearanceDay at or before
// discountDay.
func NewSchedule(basePrice, discountPrice, clearancePrice, discountDay, clearanceDay, horizonDays float64) Schedule {
	if horizonDays <= 0 {
		return Schedule{Segments: []Segment{{Price: basePrice, StartDay: 0, EndDay: 0}}}
	}

	d := discountDay
	if d <= 0 || d >= horizonDays {
		d = 0
	}
	c := clearanceDay
	if c <= 0 || c <= d || c >= horizonDays {
		c = 0
	}

	var segs []Segment
	switch {
	case d == 0 && c == 0:
		segs = []Segment{{Price: basePrice, StartDay: 0, EndDay: horizonDays}}
	case d > 0 && c == 0:
		segs = []Segment{
			{Price: basePrice, StartDay: 0, EndDay: d},
			{Price: discountPrice, StartDay: d, EndDay: horizonDays},
		}
	case d == 0 && c > 0:
		segs = []Segment{
			{Price: basePrice, StartDay: 0, EndDay: c},
			{Price: clearancePrice, StartDay: c, EndDay: horizonDays},
		}
	default:
		segs = []Segment{
			{Price: basePrice, StartDay: 0, EndDay: d},
			{Price: discountPrice, StartDay: d, EndDay: c},
			{Price: clearancePrice, StartDay: c, EndDay: horizonDays},
		}
	}
	return Schedule{Segments: segs}
}

// referencePrice is the first segment's price — the ladder's own reference
// for elasticity scaling, per §7's clarification that this is NOT the
// item's fused mu.
func (s Schedule) referencePrice() float64 {
	if len(s.Segments) == 0 {
		return 0
	}
	return s.Segments[0].Price
}

// Evaluate runs the telescoped survival composition from §4.5:
// p_total = sum(S_prev * (1 - exp(-lambda_seg * days_seg))), where each
// segment's hazard scales the baseline hazard by (price/reference)^elasticity.
func Evaluate(sched Schedule, baseHazard, elasticity float64) (p60 float64, hazardDaily float64) {
	ref := sched.referencePrice()
	if ref <= 0 {
		ref = epsilon
	}

	survival := 1.0
	var total float64
	var totalDays float64
	for _, seg := range sched.Segments {
		days := seg.EndDay - seg.StartDay
		if days <= 0 {
			continue
		}
		ratio := seg.Price / ref
		if ratio <= 0 {
			ratio = epsilon
		}
		lambdaSeg := baseHazard * math.Pow(ratio, elasticity)
		segP := 1.0 - math.Exp(-lambdaSeg*days)
		total += survival * segP
		survival *= 1.0 - segP
		totalDays += days
	}

	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}

	hazardDaily = 0
	if total < 1 && totalDays > 0 {
		hazardDaily = -math.Log(1-total) / totalDays
	}
	return total, hazardDaily
}

// ApplyLadder computes a ladder-aggregated sell-through estimate for one
// item, replacing sell_p60/sell_hazard_daily on a copy of it (§4.5's
// "Result replaces sell_p60 for items that carry a ladder schedule").
// baseHazard is the item's proxy-model daily hazard before the ladder's own
// elasticity adjustment is layered on.
func ApplyLadder(it domain.Item, p config.Pipeline, sched Schedule, baseHazard float64) (domain.Item, Estimate) {
	p60, hazard := Evaluate(sched, baseHazard, p.LadderElasticity)
	it.SellP60 = p60
	it.SellHazardDaily = hazard
	it.HasSellEstimate = true
	return it, Estimate{P60: p60, HazardDaily: hazard}
}
