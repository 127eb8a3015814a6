package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// recordingSearchObserver counts searches and keeps the last candidate count.
type recordingSearchObserver struct {
	searches   int
	candidates int
}

func (r *recordingSearchObserver) ObserveSearch(time.Duration) { r.searches++ }

func (r *recordingSearchObserver) SetCandidates(n int) { r.candidates = n }

func testCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: 1, Name: "Jane Doe", CurrentCompany: "Goldman Sachs"},
		{ID: 2, Name: "John Roe", CurrentCompany: "Citadel"},
	}
}

func TestCandidateService_Search(t *testing.T) {
	store := newMockWarehouse()
	store.results = []domain.SearchResult{{Candidate: testCandidates()[0], Score: -1.2}}
	observer := &recordingSearchObserver{}
	service := NewCandidateService(store, observer)

	results, err := service.Search(context.Background(), "  python  ", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Jane Doe", results[0].Candidate.Name)
	assert.Equal(t, "python", store.lastQuery, "query is trimmed")
	assert.Equal(t, DefaultSearchLimit, store.lastOpts.Limit, "default limit applied")
	assert.Equal(t, 1, observer.searches)
}

func TestCandidateService_SearchPassesFilters(t *testing.T) {
	store := newMockWarehouse()
	service := NewCandidateService(store, nil)

	opts := domain.SearchOptions{
		Limit:  5,
		Offset: -3,
		Filters: domain.SearchFilters{
			Sector:          "Healthcare",
			Skill:           "Python",
			MinQualityScore: 80,
		},
	}
	_, err := service.Search(context.Background(), "", opts)
	require.NoError(t, err)

	assert.Equal(t, "", store.lastQuery)
	assert.Equal(t, 5, store.lastOpts.Limit)
	assert.Equal(t, 0, store.lastOpts.Offset, "negative offset clamps to zero")
	assert.Equal(t, opts.Filters, store.lastOpts.Filters)
}

func TestCandidateService_SearchRejectsBadScoreFilter(t *testing.T) {
	service := NewCandidateService(newMockWarehouse(), nil)

	for _, score := range []int{-1, 101} {
		opts := domain.SearchOptions{Filters: domain.SearchFilters{MinQualityScore: score}}
		_, err := service.Search(context.Background(), "python", opts)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "score %d", score)
	}
}

func TestCandidateService_SearchWrapsStoreError(t *testing.T) {
	observer := &recordingSearchObserver{}
	service := NewCandidateService(newMockWarehouse(), observer)

	_, err := service.Search(context.Background(), "((python", domain.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search:")
	assert.Equal(t, 1, observer.searches, "failed searches are still timed")
}

func TestCandidateService_Get(t *testing.T) {
	store := newMockWarehouse()
	store.candidates = testCandidates()
	service := NewCandidateService(store, nil)

	detail, err := service.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "John Roe", detail.Candidate.Name)

	_, err = service.Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCandidateService_ListUpdatesGauge(t *testing.T) {
	store := newMockWarehouse()
	store.candidates = testCandidates()
	observer := &recordingSearchObserver{}
	service := NewCandidateService(store, observer)

	candidates, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, 2, observer.candidates)
}

func TestCandidateService_Delete(t *testing.T) {
	store := newMockWarehouse()
	store.candidates = testCandidates()
	service := NewCandidateService(store, nil)

	require.NoError(t, service.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, store.deleted)

	err := service.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "candidate 42")

	assert.ErrorIs(t, service.Delete(context.Background(), -1), domain.ErrInvalidInput)
}

func TestCandidateService_FilterValues(t *testing.T) {
	store := newMockWarehouse()
	store.filters = map[domain.FilterField][]string{
		domain.FilterSector: {"Healthcare", "Technology"},
	}
	service := NewCandidateService(store, nil)

	values, err := service.FilterValues(context.Background(), domain.FilterSector)
	require.NoError(t, err)
	assert.Equal(t, []string{"Healthcare", "Technology"}, values)

	_, err = service.FilterValues(context.Background(), domain.FilterField("colour"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "geography")
}

func TestCandidateService_StatsAndReset(t *testing.T) {
	store := newMockWarehouse()
	store.candidates = testCandidates()
	observer := &recordingSearchObserver{}
	service := NewCandidateService(store, observer)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Candidates)
	assert.Equal(t, 2, observer.candidates)

	n, err := service.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, service.Reset(context.Background()))
	assert.True(t, store.reset)
	assert.Equal(t, 0, observer.candidates)
}

func TestCandidateService_Suggestions(t *testing.T) {
	service := NewCandidateService(newMockWarehouse(), nil)

	suggestions, err := service.Suggestions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, suggestions, "Python")
}
