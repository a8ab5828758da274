package simulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

func coreItems() []domain.Item {
	return []domain.Item{
		{SKULocal: "a", EstPriceMu: 50, EstPriceSigma: 10, SellP60: 0.9, Quantity: 2},
		{SKULocal: "b", EstPriceMu: 30, EstPriceSigma: 5, SellP60: 0.5, Quantity: 1},
	}
}

func TestRun_DegenerateOnNoValidItems(t *testing.T) {
	p := config.Default()
	items := []domain.Item{{SKULocal: "x", EstPriceMu: 0}}
	result := Run(items, 20, p, Feasibility{}, time.Unix(0, 0))
	assert.Equal(t, 0, result.ItemsInCore)
	assert.False(t, result.MeetsConstraints)
}

func TestRun_DeterministicGivenSeed(t *testing.T) {
	p := config.Default()
	p.Sims = 500
	items := coreItems()
	now := time.Unix(0, 0)

	r1 := Run(items, 20, p, Feasibility{}, now)
	r2 := Run(items, 20, p, Feasibility{}, now)

	require.Equal(t, len(r1.ROIBySim), len(r2.ROIBySim))
	assert.Equal(t, r1.ROIP50, r2.ROIP50)
	assert.Equal(t, r1.ExpectedCash60d, r2.ExpectedCash60d)
}

func TestRun_HigherBidLowersROI(t *testing.T) {
	p := config.Default()
	p.Sims = 500
	items := coreItems()
	now := time.Unix(0, 0)

	low := Run(items, 20, p, Feasibility{}, now)
	high := Run(items, 200, p, Feasibility{}, now)

	assert.Greater(t, low.ROIP50, high.ROIP50)
}

func TestRun_ThroughputConstraint(t *testing.T) {
	p := config.Default()
	p.Sims = 200
	p.CapacityMinsPerDay = 0.001
	items := coreItems()

	result := Run(items, 20, p, Feasibility{}, time.Unix(0, 0))
	assert.False(t, result.ThroughputOK)
	assert.False(t, result.MeetsConstraints)
}

func TestRun_CashFloorConstraint(t *testing.T) {
	p := config.Default()
	p.Sims = 200
	p.CashFloor = 1_000_000
	items := coreItems()

	result := Run(items, 20, p, Feasibility{}, time.Unix(0, 0))
	assert.False(t, result.MeetsConstraints)
}

func TestRun_ProbROIGeTargetPopulated(t *testing.T) {
	p := config.Default()
	p.Sims = 200
	items := coreItems()
	result := Run(items, 20, p, Feasibility{}, time.Unix(0, 0))
	require.NotNil(t, result.ProbROIGeTarget)
	assert.GreaterOrEqual(t, *result.ProbROIGeTarget, 0.0)
	assert.LessOrEqual(t, *result.ProbROIGeTarget, 1.0)
}
