package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/domain"
	"github.com/lotgenius/core/internal/pipeline"
	"github.com/lotgenius/core/internal/sellmodel"
)

// manifestFile is the on-disk JSON shape for one manifest sweep, a thin
// wrapper around pipeline.Row so a standalone "run" invocation and the
// daemon sweep share one format.
type manifestFile struct {
	Rows []pipeline.Row `json:"rows"`
}

// LoadManifest reads and parses a manifest JSON file at path.
func LoadManifest(path string) ([]pipeline.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, err
	}
	return mf.Rows, nil
}

// SweepJob implements scheduler.Job: on each tick, it scans ManifestDir for
// new *.json files and runs the pipeline on each one exactly once.
type SweepJob struct {
	ManifestDir string
	Pipeline    config.Pipeline
	Sink        domain.Sink
	Log         zerolog.Logger

	mu        sync.Mutex
	processed map[string]struct{}
}

// NewSweepJob builds a SweepJob over manifestDir.
func NewSweepJob(manifestDir string, p config.Pipeline, sink domain.Sink, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		ManifestDir: manifestDir,
		Pipeline:    p,
		Sink:        sink,
		Log:         log.With().Str("component", "sweep").Logger(),
		processed:   map[string]struct{}{},
	}
}

// Name implements scheduler.Job.
func (j *SweepJob) Name() string { return "manifest-sweep" }

// Run implements scheduler.Job: processes every not-yet-seen *.json file in
// ManifestDir. A per-file error is logged and does not abort the sweep.
func (j *SweepJob) Run() error {
	entries, err := os.ReadDir(j.ManifestDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(j.ManifestDir, entry.Name())

		j.mu.Lock()
		_, seen := j.processed[path]
		j.mu.Unlock()
		if seen {
			continue
		}

		rows, err := LoadManifest(path)
		if err != nil {
			j.Log.Error().Err(err).Str("path", path).Msg("failed to load manifest")
			continue
		}

		result := pipeline.Run(rows, j.Pipeline, j.Sink, pipeline.Options{
			SellOptions: sellmodel.ProxyOptions{Month: int(time.Now().Month())},
		}, time.Now(), j.Log)

		j.Log.Info().
			Str("path", path).
			Int("core", len(result.Core)).
			Int("upside", len(result.Upside)).
			Bool("meets_constraints", result.Simulation.MeetsConstraints).
			Float64("bid", result.Simulation.Bid).
			Msg("manifest processed")

		j.mu.Lock()
		j.processed[path] = struct{}{}
		j.mu.Unlock()
	}
	return nil
}
