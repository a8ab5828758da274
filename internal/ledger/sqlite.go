// Package ledger implements EvidenceLedger (spec.md §4.10): append-only
// sinks for domain.EvidenceRecord, backed by SQLite (via internal/database),
// an in-memory ring buffer for tests, and an optional S3-mirroring
// decorator. The append-only INSERT pattern is grounded on the teacher's
// internal/modules/trading/trade_repository.go and
// internal/modules/cash_flows/repository.go (both plain single-row INSERT
// statements against an audit-style table, no update/delete path).
package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lotgenius/core/internal/database"
	"github.com/lotgenius/core/internal/domain"
)

// samplesKey is the reserved meta key a caller uses to attach large per-sim
// sample arrays (e.g. from domain.SimulationResult) to an evidence record;
// SQLiteSink stores that value separately via msgpack instead of folding it
// into the JSON meta blob.
const samplesKey = "_samples"

// SQLiteSink appends evidence records to the ledger database under one
// run ID. Writes are best-effort: every error is logged, but Write still
// returns it for callers that want to know.
type SQLiteSink struct {
	db     *database.DB
	runID  string
	logger zerolog.Logger
}

// NewSQLiteSink opens (migrating if needed) the ledger database at path and
// returns a sink scoped to runID.
func NewSQLiteSink(path, runID string, logger zerolog.Logger) (*SQLiteSink, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSink{db: db, runID: runID, logger: logger}, nil
}

// Write implements domain.Sink.
func (s *SQLiteSink) Write(skuLocal, sourceTag string, meta map[string]any, ok bool) error {
	var metaJSON []byte
	var samplesBlob []byte

	if len(meta) > 0 {
		rest := meta
		if samples, has := meta[samplesKey]; has {
			rest = make(map[string]any, len(meta)-1)
			for k, v := range meta {
				if k != samplesKey {
					rest[k] = v
				}
			}
			if encoded, err := msgpack.Marshal(samples); err != nil {
				s.logger.Warn().Err(err).Str("sku_local", skuLocal).Msg("evidence samples encode failed")
			} else {
				samplesBlob = encoded
			}
		}
		if len(rest) > 0 {
			encoded, err := json.Marshal(rest)
			if err != nil {
				s.logger.Warn().Err(err).Str("sku_local", skuLocal).Msg("evidence meta encode failed")
			} else {
				metaJSON = encoded
			}
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO evidence_records (run_id, sku_local, source_tag, ok, created_at, meta_json, samples_blob) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.runID, skuLocal, sourceTag, boolToInt(ok), time.Now().UTC().Format(time.RFC3339Nano), metaJSON, samplesBlob,
	)
	if err != nil {
		s.logger.Warn().Err(err).Str("sku_local", skuLocal).Str("source_tag", sourceTag).Msg("evidence write failed")
	}
	return err
}

// Close releases the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// HealthCheck pings the ledger database and runs its integrity check, for
// the daemon's /healthz endpoint.
func (s *SQLiteSink) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Stats reports the ledger database's on-disk size and page accounting, for
// the daemon's /metrics endpoint.
func (s *SQLiteSink) Stats() (*database.Stats, error) {
	return s.db.GetStats()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// record is a row as loaded back from the database (used by tests and
// audit tooling).
type record struct {
	SKULocal  string
	SourceTag string
	OK        bool
	Timestamp time.Time
	Meta      map[string]any
	Samples   any
}

func decodeMetaJSON(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return meta
}

func decodeSamples(blob []byte) any {
	if len(blob) == 0 {
		return nil
	}
	var samples any
	if err := msgpack.Unmarshal(blob, &samples); err != nil {
		return nil
	}
	return samples
}

// ReadAll returns every record written under the sink's run ID, ordered by
// insertion, for audit tooling and tests.
func (s *SQLiteSink) ReadAll() ([]record, error) {
	rows, err := s.db.Query(
		`SELECT sku_local, source_tag, ok, created_at, meta_json, samples_blob FROM evidence_records WHERE run_id = ? ORDER BY id ASC`,
		s.runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record
	for rows.Next() {
		var r record
		var okInt int
		var createdAt string
		var metaJSON, samplesBlob []byte
		if err := rows.Scan(&r.SKULocal, &r.SourceTag, &okInt, &createdAt, &metaJSON, &samplesBlob); err != nil {
			return nil, err
		}
		r.OK = okInt != 0
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.Meta = decodeMetaJSON(metaJSON)
		r.Samples = decodeSamples(samplesBlob)
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ domain.Sink = (*SQLiteSink)(nil)
