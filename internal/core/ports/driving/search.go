package driving

import (
	"context"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// CandidateService provides candidate search and lookup to external actors.
type CandidateService interface {
	// Search performs a ranked full-text search over candidates.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Get returns a candidate with its experiences, education and skills.
	Get(ctx context.Context, id int64) (*domain.CandidateDetail, error)

	// List returns every candidate.
	List(ctx context.Context) ([]domain.Candidate, error)

	// Delete removes a candidate.
	Delete(ctx context.Context, id int64) error

	// FilterValues returns the known values of a filter field.
	FilterValues(ctx context.Context, field domain.FilterField) ([]string, error)

	// Suggestions returns search terms for autocompletion.
	Suggestions(ctx context.Context) (domain.Suggestions, error)

	// Stats summarises the warehouse.
	Stats(ctx context.Context) (*domain.WarehouseStats, error)

	// Reindex rebuilds the full-text index and returns the number of entries.
	Reindex(ctx context.Context) (int, error)

	// Reset drops every candidate and recreates the schema.
	Reset(ctx context.Context) error
}
