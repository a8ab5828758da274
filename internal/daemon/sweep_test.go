package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/ledger"
	"github.com/lotgenius/core/internal/pipeline"
)

func writeManifest(t *testing.T, dir, name string, rows []pipeline.Row) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := json.Marshal(manifestFile{Rows: rows})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func sampleManifestRows() []pipeline.Row {
	newMed := 40.0
	rank := 8000.0
	offers := 2

	return []pipeline.Row{
		{
			SKULocal:          "sku-sweep-1",
			ASIN:              "B000987654",
			Title:             "Gadget Mini",
			ConditionRaw:      "new",
			KeepaPriceNewMed:  &newMed,
			KeepaSalesRankMed: &rank,
			KeepaOffersCount:  &offers,
			Quantity:          1,
			SoldCompsCount180d: 4,
			HasSecondarySignal: true,
		},
	}
}

func TestLoadManifest_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "lot-1.json", sampleManifestRows())

	rows, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sku-sweep-1", rows[0].SKULocal)
}

func TestSweepJob_ProcessesEachManifestOnce(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "lot-1.json", sampleManifestRows())

	p := config.Default()
	p.Sims = 100
	sink := ledger.NewMemorySink(0)

	job := NewSweepJob(dir, p, sink, zeroLogger())

	require.NoError(t, job.Run())
	firstCount := len(sink.Records())
	assert.NotZero(t, firstCount)

	require.NoError(t, job.Run())
	assert.Equal(t, firstCount, len(sink.Records()), "a second sweep must not reprocess an already-seen manifest")
}

func TestSweepJob_SkipsNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a manifest"), 0644))

	p := config.Default()
	sink := ledger.NewMemorySink(0)
	job := NewSweepJob(dir, p, sink, zeroLogger())

	require.NoError(t, job.Run())
	assert.Empty(t, sink.Records())
}

func TestSweepJob_BadManifestDoesNotAbortSweep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
	writeManifest(t, dir, "lot-1.json", sampleManifestRows())

	p := config.Default()
	p.Sims = 100
	sink := ledger.NewMemorySink(0)
	job := NewSweepJob(dir, p, sink, zeroLogger())

	require.NoError(t, job.Run())
	assert.NotEmpty(t, sink.Records())
}
