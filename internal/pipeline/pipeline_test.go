package pipeline

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/ledger"
	"github.com/lotgenius/core/internal/sellmodel"
)

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}

func sampleRows() []Row {
	newMed := 60.0
	rank := 5000.0
	offers := 4

	return []Row{
		{
			SKULocal:           "sku-1",
			ASIN:               "B000123456",
			Title:              "Widget Pro",
			Brand:              "Acme",
			Category:           "electronics",
			ConditionRaw:       "used - very good",
			KeepaPriceNewMed:   &newMed,
			KeepaSalesRankMed:  &rank,
			KeepaOffersCount:   &offers,
			Quantity:           1,
			SoldCompsCount180d: 5,
			HasSecondarySignal: true,
		},
		{
			SKULocal:           "sku-2",
			Title:              "assorted lot bundle",
			ConditionRaw:       "",
			Quantity:           1,
			SoldCompsCount180d: 0,
			HasSecondarySignal: false,
		},
	}
}

func TestRun_PartitionsCoreAndUpside(t *testing.T) {
	p := config.Default()
	p.Sims = 200
	sink := ledger.NewMemorySink(0)

	result := Run(sampleRows(), p, sink, Options{SellOptions: sellmodel.ProxyOptions{Month: 1}}, time.Unix(0, 0), zeroLogger())

	assert.Len(t, result.Core, 1)
	assert.Len(t, result.Upside, 1)
	assert.Equal(t, "sku-1", result.Core[0].SKULocal)
}

func TestRun_RoundTripEvidenceRecords(t *testing.T) {
	p := config.Default()
	p.Sims = 200
	sink := ledger.NewMemorySink(0)

	Run(sampleRows(), p, sink, Options{SellOptions: sellmodel.ProxyOptions{Month: 1}}, time.Unix(0, 0), zeroLogger())

	records := sink.Records()
	tagsBySKU := map[string][]string{}
	for _, r := range records {
		tagsBySKU[r.SKULocal] = append(tagsBySKU[r.SKULocal], r.SourceTag)
	}

	require.Contains(t, tagsBySKU, "sku-1")
	assert.ElementsMatch(t, []string{"gate", "price:estimate", "sell:estimate", "optimize:bid"}, tagsBySKU["sku-1"])

	require.Contains(t, tagsBySKU, "sku-2")
	assert.Equal(t, []string{"gate"}, tagsBySKU["sku-2"])
}

func TestRun_DegenerateOnEmptyCore(t *testing.T) {
	p := config.Default()
	p.Sims = 100
	sink := ledger.NewMemorySink(0)

	rows := []Row{{SKULocal: "only", Title: "assorted lot", Quantity: 1}}
	result := Run(rows, p, sink, Options{SellOptions: sellmodel.ProxyOptions{Month: 1}}, time.Unix(0, 0), zeroLogger())

	assert.Empty(t, result.Core)
	assert.False(t, result.Simulation.MeetsConstraints)
}
