package ledger

import (
	"sync"
	"time"

	"github.com/lotgenius/core/internal/domain"
)

// MemorySink is a bounded ring-buffer domain.Sink for tests and short-lived
// daemon runs that don't need durable audit storage. Capacity <= 0 means
// unbounded.
type MemorySink struct {
	mu       sync.Mutex
	capacity int
	records  []domain.EvidenceRecord
}

// NewMemorySink builds a MemorySink holding at most capacity records (oldest
// dropped first); capacity <= 0 means unbounded.
func NewMemorySink(capacity int) *MemorySink {
	return &MemorySink{capacity: capacity}
}

// Write implements domain.Sink.
func (m *MemorySink) Write(skuLocal, sourceTag string, meta map[string]any, ok bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, domain.EvidenceRecord{
		SKULocal:  skuLocal,
		SourceTag: sourceTag,
		OK:        ok,
		Timestamp: time.Now().UTC(),
		Meta:      meta,
	})
	if m.capacity > 0 && len(m.records) > m.capacity {
		m.records = m.records[len(m.records)-m.capacity:]
	}
	return nil
}

// Records returns a snapshot copy of every record currently held.
func (m *MemorySink) Records() []domain.EvidenceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EvidenceRecord, len(m.records))
	copy(out, m.records)
	return out
}

var _ domain.Sink = (*MemorySink)(nil)
