package sellmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

func baseItem() domain.Item {
	rank := 10000.0
	offers := 3
	return domain.Item{
		EstPriceMu:        50,
		EstPriceSigma:     10,
		EstPriceP50:       50,
		KeepaSalesRankMed: &rank,
		KeepaOffersCount:  &offers,
		ConditionBucket:   domain.ConditionUsedGood,
	}
}

func TestProxy_PriceBelowMarketRaisesHazard(t *testing.T) {
	p := config.Default()
	opt := ProxyOptions{Month: 1}

	cheap := baseItem()
	cheap.EstPriceP50 = 40

	expensive := baseItem()
	expensive.EstPriceP50 = 60

	cheapEst := Proxy(cheap, p, opt)
	expensiveEst := Proxy(expensive, p, opt)

	assert.Greater(t, cheapEst.HazardDaily, expensiveEst.HazardDaily)
	assert.Greater(t, cheapEst.P60, expensiveEst.P60)
}

func TestProxy_P60BoundedZeroOne(t *testing.T) {
	p := config.Default()
	it := baseItem()
	est := Proxy(it, p, ProxyOptions{Month: 1})
	assert.GreaterOrEqual(t, est.P60, 0.0)
	assert.LessOrEqual(t, est.P60, 1.0)
}

func TestProxy_ConditionVelocitySlowsForParts(t *testing.T) {
	p := config.Default()
	good := baseItem()
	good.ConditionBucket = domain.ConditionUsedGood
	parts := baseItem()
	parts.ConditionBucket = domain.ConditionForParts

	goodEst := Proxy(good, p, ProxyOptions{Month: 1})
	partsEst := Proxy(parts, p, ProxyOptions{Month: 1})
	assert.Greater(t, goodEst.HazardDaily, partsEst.HazardDaily)
}

func TestProxy_NoRankFallsBackToBaseline(t *testing.T) {
	p := config.Default()
	it := baseItem()
	it.KeepaSalesRankMed = nil
	est := Proxy(it, p, ProxyOptions{Month: 1, BaselineDailySales: 0.5})
	assert.Greater(t, est.HazardDaily, 0.0)
}

func TestApply_SetsDerivedFields(t *testing.T) {
	p := config.Default()
	it := baseItem()
	out, est := Apply(it, p, ProxyOptions{Month: 1})
	assert.True(t, out.HasSellEstimate)
	assert.Equal(t, est.P60, out.SellP60)
	assert.Equal(t, est.HazardDaily, out.SellHazardDaily)
}
