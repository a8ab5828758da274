package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotgenius/core/internal/database"
)

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeLedger is a test double for Ledger.
type fakeLedger struct {
	healthErr error
	stats     *database.Stats
	statsErr  error
}

func (f fakeLedger) HealthCheck(ctx context.Context) error { return f.healthErr }
func (f fakeLedger) Stats() (*database.Stats, error)       { return f.stats, f.statsErr }

func TestHandleHealthz_ReturnsOK(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime_sec")
}

func TestHandleMetrics_ReturnsHostGauges(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "cpu_percent")
	assert.Contains(t, body, "mem_used_percent")
}

func TestHandleHealthz_LedgerOK(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true, Ledger: fakeLedger{}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "ledger_error")
}

func TestHandleHealthz_LedgerDegraded(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true, Ledger: fakeLedger{
		healthErr: errors.New("database is locked"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "database is locked", body["ledger_error"])
}

func TestHandleMetrics_ReportsLedgerStats(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true, Ledger: fakeLedger{
		stats: &database.Stats{
			SizeBytes:     4096,
			WALSizeBytes:  512,
			PageCount:     1,
			FreelistCount: 0,
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(4096), body["ledger_size_bytes"])
	assert.Equal(t, float64(512), body["ledger_wal_size_bytes"])
}

func TestHandleMetrics_LedgerStatsErrorOmitsFields(t *testing.T) {
	s := New(Config{Port: 0, Log: zeroLogger(), DevMode: true, Ledger: fakeLedger{
		statsErr: errors.New("stat failed"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "ledger_size_bytes")
}
