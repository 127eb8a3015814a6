package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driving"
	"github.com/custodia-labs/resume-warehouse/internal/logger"
)

// Ensure CandidateService implements the interface.
var _ driving.CandidateService = (*CandidateService)(nil)

// DefaultSearchLimit is used when a search does not set a limit.
const DefaultSearchLimit = 20

// CandidateService provides search and lookup over the warehouse.
type CandidateService struct {
	store    driven.WarehouseStore
	observer driven.SearchObserver
	now      func() time.Time
}

// NewCandidateService creates a new candidate service.
// The observer is optional (can be nil).
func NewCandidateService(store driven.WarehouseStore, observer driven.SearchObserver) *CandidateService {
	return &CandidateService{
		store:    store,
		observer: observer,
		now:      time.Now,
	}
}

// Search performs a ranked full-text search over candidates.
// An empty query lists candidates, narrowed by the filters.
func (s *CandidateService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Candidate Search")

	query = strings.TrimSpace(query)
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if f := opts.Filters.MinQualityScore; f < 0 || f > 100 {
		return nil, fmt.Errorf("%w: minimum quality score %d outside 0-100", domain.ErrInvalidInput, f)
	}
	logger.Debug("Query: %q, limit %d, offset %d, filters %+v", query, opts.Limit, opts.Offset, opts.Filters)

	start := s.now()
	results, err := s.store.Search(ctx, query, opts)
	if s.observer != nil {
		s.observer.ObserveSearch(s.now().Sub(start))
	}
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Results: %d candidates", len(results))
	return results, nil
}

// Get returns a candidate with its experiences, education and skills.
func (s *CandidateService) Get(ctx context.Context, id int64) (*domain.CandidateDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: candidate id must be positive", domain.ErrInvalidInput)
	}
	return s.store.GetCandidate(ctx, id)
}

// List returns every candidate.
func (s *CandidateService) List(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.SetCandidates(len(candidates))
	}
	return candidates, nil
}

// Delete removes a candidate and every row derived from it.
func (s *CandidateService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: candidate id must be positive", domain.ErrInvalidInput)
	}
	if err := s.store.DeleteCandidate(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("candidate %d: %w", id, err)
		}
		return fmt.Errorf("delete candidate %d: %w", id, err)
	}
	logger.Info("deleted candidate %d", id)
	return nil
}

// FilterValues returns the known values of a filter field.
func (s *CandidateService) FilterValues(ctx context.Context, field domain.FilterField) ([]string, error) {
	if !field.IsValid() {
		names := make([]string, 0, len(domain.AllFilterFields()))
		for _, f := range domain.AllFilterFields() {
			names = append(names, f.String())
		}
		return nil, fmt.Errorf("%w: unknown filter field %q (known: %s)",
			domain.ErrInvalidInput, field, strings.Join(names, ", "))
	}
	return s.store.FilterValues(ctx, field)
}

// Suggestions returns search terms for autocompletion.
func (s *CandidateService) Suggestions(ctx context.Context) (domain.Suggestions, error) {
	return s.store.Suggestions(ctx)
}

// Stats summarises the warehouse.
func (s *CandidateService) Stats(ctx context.Context) (*domain.WarehouseStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.SetCandidates(stats.Candidates)
	}
	return stats, nil
}

// Reindex rebuilds the full-text index from relational state.
func (s *CandidateService) Reindex(ctx context.Context) (int, error) {
	n, err := s.store.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	logger.Info("reindexed %d candidates", n)
	return n, nil
}

// Reset drops every candidate and recreates the schema.
func (s *CandidateService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset warehouse: %w", err)
	}
	if s.observer != nil {
		s.observer.SetCandidates(0)
	}
	return nil
}
