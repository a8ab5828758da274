package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lotgenius/core/internal/domain"
)

// S3Mirror decorates an inner domain.Sink, best-effort-mirroring every
// record as a msgpack object under bucket/prefix. Per §3's "Writes are
// best-effort" rule, upload failures are logged and swallowed; the inner
// sink's write still runs and its error (if any) is what's returned.
type S3Mirror struct {
	inner    domain.Sink
	uploader *manager.Uploader
	bucket   string
	prefix   string
	runID    string
	logger   zerolog.Logger
	mu       sync.Mutex
	seq      int
}

// NewS3Mirror wraps inner with best-effort mirroring to bucket/prefix using
// client, an *s3.Client built by the caller (so credential/region resolution
// stays in cmd/lotbid, not this package).
func NewS3Mirror(inner domain.Sink, client *s3.Client, bucket, prefix, runID string, logger zerolog.Logger) *S3Mirror {
	return &S3Mirror{
		inner:    inner,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		runID:    runID,
		logger:   logger,
	}
}

// Write implements domain.Sink: it always calls the inner sink, then
// fire-and-forget mirrors the record to S3.
func (m *S3Mirror) Write(skuLocal, sourceTag string, meta map[string]any, ok bool) error {
	err := m.inner.Write(skuLocal, sourceTag, meta, ok)

	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.mu.Unlock()
	key := fmt.Sprintf("%s%s/%08d-%s-%s.msgpack", m.prefix, m.runID, seq, sourceTag, skuLocal)

	payload, encErr := msgpack.Marshal(domain.EvidenceRecord{
		SKULocal:  skuLocal,
		SourceTag: sourceTag,
		OK:        ok,
		Timestamp: time.Now().UTC(),
		Meta:      meta,
	})
	if encErr != nil {
		m.logger.Warn().Err(encErr).Msg("s3 mirror encode failed")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, upErr := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	}); upErr != nil {
		m.logger.Warn().Err(upErr).Str("key", key).Msg("s3 mirror upload failed")
	}

	return err
}

var _ domain.Sink = (*S3Mirror)(nil)
