package mcp

import (
	"context"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// mockCandidateService is a mock implementation of driving.CandidateService.
type mockCandidateService struct {
	results    []domain.SearchResult
	candidates []domain.Candidate
	detail     *domain.CandidateDetail
	values     []string
	lastQuery  string
	lastOpts   domain.SearchOptions
	err        error
}

func (m *mockCandidateService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockCandidateService) Get(_ context.Context, _ int64) (*domain.CandidateDetail, error) {
	if m.detail == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.detail, m.err
}

func (m *mockCandidateService) List(_ context.Context) ([]domain.Candidate, error) {
	return m.candidates, m.err
}

func (m *mockCandidateService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockCandidateService) FilterValues(_ context.Context, _ domain.FilterField) ([]string, error) {
	return m.values, m.err
}

func (m *mockCandidateService) Suggestions(_ context.Context) (domain.Suggestions, error) {
	return nil, m.err
}

func (m *mockCandidateService) Stats(_ context.Context) (*domain.WarehouseStats, error) {
	return &domain.WarehouseStats{Candidates: len(m.candidates)}, m.err
}

func (m *mockCandidateService) Reindex(_ context.Context) (int, error) {
	return len(m.candidates), m.err
}

func (m *mockCandidateService) Reset(_ context.Context) error {
	return m.err
}
