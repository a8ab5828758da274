package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse_NoSources(t *testing.T) {
	est := Fuse(nil, 0, false)
	assert.False(t, est.OK)
}

func TestFuse_TwoSources_WeightedTowardStrongerOne(t *testing.T) {
	sources := []SourceStat{
		{Name: "a", Mu: 100, CV: 0.20, N: 8, Recency: 1, Prior: 0.5},
		{Name: "b", Mu: 110, CV: 0.25, N: 4, Recency: 1, Prior: 0.35},
	}
	est := Fuse(sources, 0, false)
	require.True(t, est.OK)
	assert.Greater(t, est.Mu, 100.0)
	assert.Less(t, est.Mu, 110.0)
	// Source "a" has lower cv and higher n*prior, so mu should sit closer to it.
	assert.Less(t, est.Mu-100, 110-est.Mu)
	assert.InDelta(t, est.Mu, est.P50, 1e-9)
	assert.LessOrEqual(t, est.P5, est.P50)
	assert.LessOrEqual(t, est.P50, est.P95)
}

func TestFuse_CategoryFloorRaisesP5(t *testing.T) {
	sources := []SourceStat{{Name: "a", Mu: 10, CV: 0.20, N: 1, Recency: 1, Prior: 0.5}}
	est := Fuse(sources, 6.0, false)
	require.True(t, est.OK)
	assert.True(t, est.P5Floored)
	assert.GreaterOrEqual(t, est.P5, 6.0)
	assert.LessOrEqual(t, est.P5, est.P50)
}

func TestFuse_PercentilesClippedAtZero(t *testing.T) {
	sources := []SourceStat{{Name: "a", Mu: 1, CV: 5.0, N: 1, Recency: 1, Prior: 0.5}}
	est := Fuse(sources, 0, false)
	require.True(t, est.OK)
	assert.GreaterOrEqual(t, est.P5, 0.0)
}
