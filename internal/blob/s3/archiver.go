package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// Archiver uploads each completed detection cycle as a JSON snapshot to
// object storage, partitioned by day:
//
//	cycles/2026/09/01/<cycle-id>.json
//
// Cycles without opportunities are skipped to keep the bucket from filling
// with empty files. The Archiver is wired into the poller as a sink.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that uploads via the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// Name identifies the sink in poller logs.
func (a *Archiver) Name() string { return "s3-archive" }

// HandleCycle serializes the cycle result and uploads it.
func (a *Archiver) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	if len(res.Opportunities) == 0 {
		return nil
	}

	buf, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("s3blob: marshal cycle %s: %w", res.ID, err)
	}

	path := cyclePath(res.ID, res.StartedAt)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive cycle %s: %w", res.ID, err)
	}
	return nil
}

// cyclePath builds the S3 key for a cycle snapshot, partitioned by the UTC
// day the cycle started.
func cyclePath(id string, startedAt time.Time) string {
	return fmt.Sprintf("cycles/%s/%s.json", startedAt.UTC().Format("2006/01/02"), id)
}
