package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// mockExtractor returns canned text per file name.
type mockExtractor struct {
	texts map[string]string
	err   error
}

func (m *mockExtractor) Extensions() []string { return []string{".pdf", ".txt"} }

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if text, ok := m.texts[filepath.Base(path)]; ok {
		return text, nil
	}
	return "resume text of " + filepath.Base(path), nil
}

// mockExtractors selects the mock extractor for .pdf and .txt files.
type mockExtractors struct {
	extractor *mockExtractor
}

func (m *mockExtractors) Register(driven.TextExtractor) {}

func (m *mockExtractors) For(path string) (driven.TextExtractor, error) {
	if !m.Supports(path) {
		return nil, domain.ErrUnsupportedType
	}
	return m.extractor, nil
}

func (m *mockExtractors) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".txt"
}

// mockProducer names every candidate after the file stem.
// Files whose stem starts with "anonymous" produce no name.
type mockProducer struct {
	mu         sync.Mutex
	parseCalls []string
	parseErr   error
}

func (m *mockProducer) Parse(_ context.Context, filename, text string) (*domain.ParsedRecord, error) {
	m.mu.Lock()
	m.parseCalls = append(m.parseCalls, filename)
	m.mu.Unlock()
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	rec := &domain.ParsedRecord{
		Objective: domain.Some(text),
		Skills:    domain.Some(domain.StringList{"Python"}),
	}
	if !strings.HasPrefix(stem, "anonymous") {
		rec.Name = domain.Some(stem)
	}
	return rec, nil
}

func (m *mockProducer) Summarise(_ context.Context, _ string, parsed *domain.ParsedRecord) (*domain.SummaryRecord, error) {
	return &domain.SummaryRecord{
		Name:      parsed.Name,
		TopSkills: domain.Some(domain.StringList{"Python"}),
	}, nil
}

// mockWarehouse records ingested records in memory.
type mockWarehouse struct {
	mu        sync.Mutex
	records   []domain.IngestRecord
	ids       map[string]int64
	ingestErr error

	candidates []domain.Candidate
	results    []domain.SearchResult
	lastQuery  string
	lastOpts   domain.SearchOptions
	filters    map[domain.FilterField][]string
	deleted    []int64
	reset      bool
}

func newMockWarehouse() *mockWarehouse {
	return &mockWarehouse{ids: make(map[string]int64)}
}

func (m *mockWarehouse) Ingest(_ context.Context, rec domain.IngestRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return 0, m.ingestErr
	}
	m.records = append(m.records, rec)
	key := rec.IdentityKey()
	if _, ok := m.ids[key]; !ok {
		m.ids[key] = int64(len(m.ids) + 1)
	}
	return m.ids[key], nil
}

func (m *mockWarehouse) DeleteCandidate(_ context.Context, id int64) error {
	for _, c := range m.candidates {
		if c.ID == id {
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockWarehouse) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if strings.Contains(query, "((") {
		return nil, errors.New("fts5: syntax error")
	}
	return m.results, nil
}

func (m *mockWarehouse) GetCandidate(_ context.Context, id int64) (*domain.CandidateDetail, error) {
	for _, c := range m.candidates {
		if c.ID == id {
			return &domain.CandidateDetail{Candidate: c}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockWarehouse) ListCandidates(context.Context) ([]domain.Candidate, error) {
	return m.candidates, nil
}

func (m *mockWarehouse) FilterValues(_ context.Context, field domain.FilterField) ([]string, error) {
	return m.filters[field], nil
}

func (m *mockWarehouse) Suggestions(context.Context) (domain.Suggestions, error) {
	return domain.Suggestions{"Goldman Sachs", "Python"}, nil
}

func (m *mockWarehouse) Stats(context.Context) (*domain.WarehouseStats, error) {
	return &domain.WarehouseStats{Candidates: len(m.candidates)}, nil
}

func (m *mockWarehouse) Reindex(context.Context) (int, error) {
	return len(m.candidates), nil
}

func (m *mockWarehouse) Reset(context.Context) error {
	m.reset = true
	m.candidates = nil
	return nil
}

// recordingObserver collects outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []domain.IngestOutcome
}

func (r *recordingObserver) ObserveIngest(o domain.IngestOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

// chanWatcher replays paths from a channel.
type chanWatcher struct {
	paths chan string
	err   error
}

func (c *chanWatcher) Watch(context.Context, string) (<-chan string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.paths, nil
}
