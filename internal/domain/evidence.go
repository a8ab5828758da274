package domain

import "time"

// EvidenceRecord is an append-only audit entry. Records are never mutated
// after write; a Sink implementation appends one line/row per Write call.
type EvidenceRecord struct {
	SKULocal  string
	SourceTag string
	OK        bool
	Timestamp time.Time
	Meta      map[string]any
}

// Sink is the single collaborator interface the core writes evidence
// through (§6). Implementations must tolerate concurrent Write calls from a
// single pipeline invocation (single-writer-per-file is sufficient) and must
// never let a failed append abort the pipeline: callers should log and
// swallow, never propagate.
type Sink interface {
	Write(skuLocal, sourceTag string, meta map[string]any, ok bool) error
}

// NopSink discards every record. Useful as a default for library callers who
// don't want an audit trail.
type NopSink struct{}

// Write implements Sink.
func (NopSink) Write(string, string, map[string]any, bool) error { return nil }
