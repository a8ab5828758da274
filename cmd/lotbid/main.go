// Command lotbid is the process entry point around the core library:
// LOTBID_MODE=run evaluates one manifest and prints its Payload to stdout;
// LOTBID_MODE=daemon sweeps a manifest directory on a cron schedule and
// serves /healthz and /metrics until signalled. Grounded on the teacher's
// cmd/server/main.go startup sequence, trimmed to this library's surface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lotgenius/core/internal/config"
	"github.com/lotgenius/core/internal/daemon"
	"github.com/lotgenius/core/internal/domain"
	"github.com/lotgenius/core/internal/ledger"
	"github.com/lotgenius/core/internal/pipeline"
	"github.com/lotgenius/core/internal/scheduler"
	"github.com/lotgenius/core/internal/sellmodel"
	"github.com/lotgenius/core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	log.Info().Str("mode", cfg.Mode).Msg("starting lotbid")

	runID := uuid.NewString()

	sqliteSink, err := ledger.NewSQLiteSink(filepath.Join(cfg.DataDir, "ledger.db"), runID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open evidence ledger")
	}
	defer func() {
		if err := sqliteSink.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close evidence ledger")
		}
	}()

	sink := buildSink(cfg, sqliteSink, runID, log)

	switch cfg.Mode {
	case "daemon":
		runDaemon(cfg, sink, sqliteSink, log)
	default:
		runOnce(cfg, sink, log)
	}
}

// buildSink wraps the SQLite ledger with an S3 mirror when
// LOTBID_LEDGER_S3_BUCKET is configured.
func buildSink(cfg *config.Config, inner domain.Sink, runID string, log zerolog.Logger) domain.Sink {
	if cfg.S3MirrorBucket == "" {
		return inner
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("failed to load AWS config, disabling evidence S3 mirror")
		return inner
	}

	client := s3.NewFromConfig(awsCfg)
	log.Info().Str("bucket", cfg.S3MirrorBucket).Msg("mirroring evidence ledger to S3")
	return ledger.NewS3Mirror(inner, client, cfg.S3MirrorBucket, cfg.S3MirrorPrefix, runID, log)
}

// runOnce evaluates a single manifest file and prints its Payload as JSON.
func runOnce(cfg *config.Config, sink domain.Sink, log zerolog.Logger) {
	if cfg.ManifestPath == "" {
		log.Fatal().Msg("LOTBID_MODE=run requires LOTBID_MANIFEST to point at a manifest file")
	}

	rows, err := daemon.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ManifestPath).Msg("failed to load manifest")
	}

	result := pipeline.Run(rows, cfg.Pipeline, sink, pipeline.Options{
		SellOptions: sellmodel.ProxyOptions{Month: int(time.Now().Month())},
	}, time.Now(), log)

	payload := domain.NewPayload(result.Simulation, false)
	if err := json.NewEncoder(os.Stdout).Encode(payload); err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
}

// runDaemon starts the manifest sweep scheduler and health/metrics HTTP
// server, blocking until SIGINT/SIGTERM. The health server checks
// healthLedger directly (not sink, which may be an S3Mirror decorator) so
// /healthz and /metrics reflect the ledger database itself.
func runDaemon(cfg *config.Config, sink domain.Sink, healthLedger daemon.Ledger, log zerolog.Logger) {
	if cfg.ManifestDir == "" {
		log.Fatal().Msg("LOTBID_MODE=daemon requires LOTBID_MANIFEST_DIR to point at a directory")
	}
	if err := os.MkdirAll(cfg.ManifestDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create manifest directory")
	}

	sched := scheduler.New(log)
	sweep := daemon.NewSweepJob(cfg.ManifestDir, cfg.Pipeline, sink, log)
	if err := sched.AddJob(cfg.SweepCron, sweep); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.SweepCron).Msg("failed to register manifest sweep job")
	}
	sched.Start()
	defer sched.Stop()
	log.Info().Str("manifest_dir", cfg.ManifestDir).Str("cron", cfg.SweepCron).Msg("manifest sweep scheduled")

	srv := daemon.New(daemon.Config{Port: cfg.Port, Log: log, DevMode: cfg.DevMode, Ledger: healthLedger})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("daemon http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("daemon http server forced shutdown")
	}
}
