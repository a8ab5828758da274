package sellmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule_NoDiscountOrClearanceIsSingleSegment(t *testing.T) {
	sched := NewSchedule(100, 0, 0, 0, 0, 60)
	require.Len(t, sched.Segments, 1)
	assert.Equal(t, 100.0, sched.Segments[0].Price)
	assert.Equal(t, 60.0, sched.Segments[0].EndDay)
}

func TestNewSchedule_ThreeSegments(t *testing.T) {
	sched := NewSchedule(100, 80, 50, 20, 40, 60)
	require.Len(t, sched.Segments, 3)
	assert.Equal(t, 0.0, sched.Segments[0].StartDay)
	assert.Equal(t, 20.0, sched.Segments[0].EndDay)
	assert.Equal(t, 20.0, sched.Segments[1].StartDay)
	assert.Equal(t, 40.0, sched.Segments[1].EndDay)
	assert.Equal(t, 40.0, sched.Segments[2].StartDay)
	assert.Equal(t, 60.0, sched.Segments[2].EndDay)
}

func TestEvaluate_ReferenceIsFirstSegmentPrice(t *testing.T) {
	singleSched := NewSchedule(100, 0, 0, 0, 0, 60)
	p60Single, _ := Evaluate(singleSched, 0.02, -0.5)
	// The only segment is its own reference, so its price ratio is 1 and the
	// base hazard applies unscaled.
	assert.InDelta(t, 1-math.Exp(-0.02*60), p60Single, 1e-12)

	discSched := NewSchedule(100, 50, 0, 30, 0, 60)
	p60Disc, _ := Evaluate(discSched, 0.02, -0.5)

	// A lower-priced later segment should sell faster than flat pricing.
	assert.Greater(t, p60Disc, p60Single)
}

func TestEvaluate_P60Bounded(t *testing.T) {
	sched := NewSchedule(100, 80, 50, 20, 40, 60)
	p60, hazard := Evaluate(sched, 0.05, -0.5)
	assert.GreaterOrEqual(t, p60, 0.0)
	assert.LessOrEqual(t, p60, 1.0)
	assert.GreaterOrEqual(t, hazard, 0.0)
}

func TestEvaluate_ZeroHazardNoSales(t *testing.T) {
	sched := NewSchedule(100, 80, 50, 20, 40, 60)
	p60, hazard := Evaluate(sched, 0, -0.5)
	assert.Equal(t, 0.0, p60)
	assert.Equal(t, 0.0, hazard)
}
