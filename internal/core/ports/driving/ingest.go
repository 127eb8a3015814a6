package driving

import (
	"context"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// IngestService loads resumes into the warehouse.
type IngestService interface {
	// IngestFile extracts, parses, validates and stores one resume.
	IngestFile(ctx context.Context, path string) (*domain.IngestOutcome, error)

	// IngestRecord validates and stores an already extracted record pair.
	IngestRecord(ctx context.Context, parsed *domain.ParsedRecord, summary *domain.SummaryRecord,
		sourceFile string) (*domain.IngestOutcome, error)

	// IngestBatch ingests every path. A failing file never aborts the batch.
	IngestBatch(ctx context.Context, paths []string, workers int) domain.BatchReport

	// LoadArchive re-ingests archived record pairs from dir without the LLM.
	LoadArchive(ctx context.Context, dir string) domain.BatchReport

	// Watch ingests resume files created in dir until ctx is cancelled.
	Watch(ctx context.Context, dir string, onOutcome func(domain.IngestOutcome)) error

	// Validate scores a record pair without storing it.
	Validate(parsed *domain.ParsedRecord, summary *domain.SummaryRecord) domain.ValidationResult
}
