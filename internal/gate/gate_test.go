package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
)

func TestEvaluate_HighTrustBypass(t *testing.T) {
	p := config.Default()
	r := Evaluate(domain.Item{}, p, 0, false, true)
	require.True(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "id:trusted")
}

func TestEvaluate_CompsAndSecondaryOK(t *testing.T) {
	p := config.Default()
	r := Evaluate(domain.Item{}, p, 3, true, false)
	assert.True(t, r.CoreIncluded)
}

func TestEvaluate_NoSecondary(t *testing.T) {
	p := config.Default()
	r := Evaluate(domain.Item{}, p, 3, false, false)
	assert.False(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "secondary:no")
}

func TestEvaluate_InsufficientComps(t *testing.T) {
	p := config.Default()
	r := Evaluate(domain.Item{}, p, 2, true, false)
	assert.False(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "comps:<3")
}

func TestEvaluate_AmbiguityRaisesRequirement(t *testing.T) {
	p := config.Default()
	it := domain.Item{Title: "assorted lot bundle", Brand: "", ConditionBucket: domain.ConditionUnknown}
	r := Evaluate(it, p, 4, true, false)
	assert.False(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "comps:<5")
}

func TestEvaluate_GatedBrand(t *testing.T) {
	p := config.Default()
	p.GatedBrands = map[string]struct{}{"acme": {}}
	it := domain.Item{Brand: "ACME"}
	r := Evaluate(it, p, 100, true, true)
	assert.False(t, r.CoreIncluded)
	assert.Contains(t, r.Reason, "Brand gated")
}

func TestEvaluate_HazmatPolicies(t *testing.T) {
	p := config.Default()

	p.HazmatPolicy = domain.HazmatExclude
	r := Evaluate(domain.Item{Hazmat: true}, p, 100, true, true)
	assert.False(t, r.CoreIncluded)

	p.HazmatPolicy = domain.HazmatReview
	r = Evaluate(domain.Item{Hazmat: true}, p, 100, true, true)
	assert.True(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "hazmat:review")

	p.HazmatPolicy = domain.HazmatAllow
	r = Evaluate(domain.Item{Hazmat: true}, p, 100, true, true)
	assert.True(t, r.CoreIncluded)
	assert.Contains(t, r.Tags, "hazmat:allow")
}

func TestPartition(t *testing.T) {
	items := []domain.Item{{SKULocal: "a"}, {SKULocal: "b"}}
	results := []Result{{CoreIncluded: true}, {CoreIncluded: false}}
	core, upside := Partition(items, results)
	require.Len(t, core, 1)
	require.Len(t, upside, 1)
	assert.Equal(t, "a", core[0].SKULocal)
	assert.Equal(t, "b", upside[0].SKULocal)
}
