package driven

import (
	"context"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// WarehouseStore persists candidates and answers queries over them.
// Every write is atomic: a failed Ingest or DeleteCandidate leaves no trace.
type WarehouseStore interface {
	// Ingest replaces any prior rows of the record's candidate with its
	// normalisation and returns the new candidate ID.
	Ingest(ctx context.Context, rec domain.IngestRecord) (int64, error)

	// DeleteCandidate removes a candidate and all rows derived from it.
	// Filter values are kept. Returns domain.ErrNotFound for unknown IDs.
	DeleteCandidate(ctx context.Context, id int64) error

	// Search runs a full-text query. An empty query lists every candidate.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// GetCandidate returns a candidate with its child rows.
	GetCandidate(ctx context.Context, id int64) (*domain.CandidateDetail, error)

	// ListCandidates returns every candidate ordered by name.
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)

	// FilterValues returns the sorted distinct values of a filter field.
	FilterValues(ctx context.Context, field domain.FilterField) ([]string, error)

	// Suggestions returns search terms for autocompletion.
	Suggestions(ctx context.Context) (domain.Suggestions, error)

	// Stats summarises the warehouse.
	Stats(ctx context.Context) (*domain.WarehouseStats, error)

	// Reindex rebuilds every search index entry from relational state.
	Reindex(ctx context.Context) (int, error)

	// Reset drops and recreates the schema.
	Reset(ctx context.Context) error
}
