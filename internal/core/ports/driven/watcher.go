package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// DirWatcher reports files that appear or change in a directory.
type DirWatcher interface {
	// Watch sends the path of every created or rewritten file in dir once
	// it has stopped changing. The channel closes when ctx is cancelled.
	Watch(ctx context.Context, dir string) (<-chan string, error)
}

// IngestObserver is told about every finished ingestion, for metrics.
type IngestObserver interface {
	ObserveIngest(o domain.IngestOutcome)
}

// SearchObserver is told about search latency and the candidate count, for metrics.
type SearchObserver interface {
	ObserveSearch(d time.Duration)
	SetCandidates(n int)
}
