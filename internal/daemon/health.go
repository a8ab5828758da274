// Package daemon provides the long-running LOTBID_MODE=daemon surface:
// a minimal chi health/metrics HTTP server and a cron-driven manifest
// directory sweep, wiring internal/pipeline into process lifetime. Grounded
// on the teacher's internal/server/server.go (chi router/middleware shape)
// and internal/server/system_handlers.go (gopsutil host gauges).
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/lotgenius/core/internal/database"
)

// Ledger is the subset of *ledger.SQLiteSink the daemon's HTTP surface
// needs: a liveness probe and on-disk accounting for the evidence database.
type Ledger interface {
	HealthCheck(ctx context.Context) error
	Stats() (*database.Stats, error)
}

// Server is the daemon's minimal HTTP surface: /healthz and /metrics only.
// This is explicitly not the report-rendering/REST API spec.md §1 scopes
// out — just the ambient wiring every teacher binary in the corpus carries.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	startupTime time.Time
	ledger      Ledger
}

// Config configures the daemon's HTTP server. Ledger is optional — when nil,
// /healthz and /metrics report only process-level state.
type Config struct {
	Port    int
	Log     zerolog.Logger
	DevMode bool
	Ledger  Ledger
}

// New builds a Server ready to ListenAndServe.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "daemon").Logger(),
		startupTime: time.Now(),
		ledger:      cfg.Ledger,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(15 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	if !cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/metrics", s.handleMetrics)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until the listener errors or is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("daemon http server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	body := map[string]any{
		"uptime_sec": time.Since(s.startupTime).Seconds(),
	}

	if s.ledger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ledger.HealthCheck(ctx); err != nil {
			status = "degraded"
			body["ledger_error"] = err.Error()
			s.log.Warn().Err(err).Msg("ledger health check failed")
		}
	}
	body["status"] = status

	w.Header().Set("Content-Type", "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// hostGauges is the CPU/RAM snapshot exposed at /metrics, grounded on the
// teacher's system_handlers.go gopsutil usage.
type hostGauges struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

func readHostGauges(log zerolog.Logger) hostGauges {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read cpu percent")
		cpuPercent = []float64{0}
	}
	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	memUsed := 0.0
	if err != nil {
		log.Warn().Err(err).Msg("failed to read memory stats")
	} else {
		memUsed = memStat.UsedPercent
	}

	return hostGauges{CPUPercent: cpuAvg, MemUsedPercent: memUsed}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	gauges := readHostGauges(s.log)
	body := map[string]any{
		"uptime_sec":       time.Since(s.startupTime).Seconds(),
		"cpu_percent":      gauges.CPUPercent,
		"mem_used_percent": gauges.MemUsedPercent,
	}

	if s.ledger != nil {
		if stats, err := s.ledger.Stats(); err != nil {
			s.log.Warn().Err(err).Msg("failed to read ledger stats")
		} else {
			body["ledger_size_bytes"] = stats.SizeBytes
			body["ledger_wal_size_bytes"] = stats.WALSizeBytes
			body["ledger_page_count"] = stats.PageCount
			body["ledger_freelist_count"] = stats.FreelistCount
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
