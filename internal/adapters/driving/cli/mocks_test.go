package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

var errMockService = errors.New("mock service error")

// mockCandidateService returns two fixed candidates.
type mockCandidateService struct {
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
	deleted   []int64
	reset     bool
	empty     bool
}

func (m *mockCandidateService) candidates() []domain.Candidate {
	if m.empty {
		return nil
	}
	return []domain.Candidate{
		{
			ID:                 1,
			Name:               "Jane Doe",
			CurrentTitle:       "Portfolio Manager",
			CurrentCompany:     "Acme Capital",
			YearsExperience:    12,
			PrimarySector:      "Technology",
			InvestmentApproach: "Fundamental",
			PrimaryGeography:   "North America",
			SummaryBlurb:       "Long/short TMT portfolio manager.",
			Certifications:     []string{"CFA"},
			CreatedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ID:              2,
			Name:            "John Roe",
			CurrentTitle:    "Analyst",
			YearsExperience: 1,
		},
	}
}

func (m *mockCandidateService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	var results []domain.SearchResult
	for _, c := range m.candidates() {
		results = append(results, domain.SearchResult{
			Candidate:     c,
			Score:         1.5,
			Skills:        []string{"Python", "DCF"},
			HighestDegree: "MBA",
			QualityScore:  91,
			Grade:         domain.GradeA,
			MatchedFields: []string{"name"},
		})
	}
	return results, nil
}

func (m *mockCandidateService) Get(_ context.Context, id int64) (*domain.CandidateDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.candidates() {
		if c.ID != id {
			continue
		}
		issues := domain.NewIssueSet()
		issues.Add(domain.Issue{Field: "email", Message: "missing", Severity: domain.SeverityCritical})
		return &domain.CandidateDetail{
			Candidate: c,
			Experiences: []domain.ExperienceRow{
				{Company: c.CurrentCompany, Title: c.CurrentTitle, StartDate: "2019-01", EndDate: "Present",
					BulletPoints: []string{"Ran a $500M book"}},
			},
			Education: []domain.EducationRow{{Degree: "MBA", Major: "Finance", School: "Wharton"}},
			Skills:    []domain.SkillRow{{Skill: "Python"}, {Skill: "DCF"}},
			Quality:   &domain.QualityScore{QualityScore: 90, Grade: domain.GradeA, TotalIssues: 1, Issues: issues},
		}, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCandidateService) List(_ context.Context) ([]domain.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates(), nil
}

func (m *mockCandidateService) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCandidateService) FilterValues(_ context.Context, field domain.FilterField) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !field.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if field == domain.FilterSector {
		return []string{"Healthcare", "Technology"}, nil
	}
	return nil, nil
}

func (m *mockCandidateService) Suggestions(_ context.Context) (domain.Suggestions, error) {
	if m.err != nil {
		return nil, m.err
	}
	return domain.Suggestions{"Jane Doe", "Python"}, nil
}

func (m *mockCandidateService) Stats(_ context.Context) (*domain.WarehouseStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.WarehouseStats{
		Candidates:        2,
		Experiences:       3,
		AverageScore:      80.5,
		TotalIssues:       4,
		GradeDistribution: map[domain.Grade]int{domain.GradeA: 1, domain.GradeC: 1},
	}, nil
}

func (m *mockCandidateService) Reindex(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.candidates()), nil
}

func (m *mockCandidateService) Reset(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.reset = true
	return nil
}

// mockIngestService records the paths it was asked to ingest.
type mockIngestService struct {
	paths   []string
	workers int
	fail    bool
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.IngestOutcome, error) {
	return &domain.IngestOutcome{Path: path, Status: domain.IngestStatusIngested}, nil
}

func (m *mockIngestService) IngestRecord(
	_ context.Context, parsed *domain.ParsedRecord, _ *domain.SummaryRecord, sourceFile string,
) (*domain.IngestOutcome, error) {
	return &domain.IngestOutcome{Path: sourceFile, Name: parsed.Name.Value, Status: domain.IngestStatusIngested}, nil
}

func (m *mockIngestService) IngestBatch(_ context.Context, paths []string, workers int) domain.BatchReport {
	m.paths = paths
	m.workers = workers
	report := domain.BatchReport{RunID: "run-1"}
	for i, p := range paths {
		o := domain.IngestOutcome{
			Path:        p,
			Name:        "Candidate",
			CandidateID: int64(i + 1),
			Status:      domain.IngestStatusIngested,
			Validation:  &domain.ValidationResult{QualityScore: 90, Grade: domain.GradeA},
		}
		if m.fail && i == 0 {
			o = domain.IngestOutcome{Path: p, Status: domain.IngestStatusFailed, Err: domain.ErrExtractionFailed}
		}
		report.Outcomes = append(report.Outcomes, o)
	}
	return report
}

func (m *mockIngestService) LoadArchive(_ context.Context, dir string) domain.BatchReport {
	m.paths = []string{dir}
	return domain.BatchReport{
		RunID: "run-2",
		Outcomes: []domain.IngestOutcome{
			{Path: dir + "/jane", Name: "Jane Doe", CandidateID: 1, Status: domain.IngestStatusIngested},
			{Path: dir + "/anon", Status: domain.IngestStatusSkipped, Err: domain.ErrMissingName},
		},
	}
}

func (m *mockIngestService) Watch(ctx context.Context, _ string, _ func(domain.IngestOutcome)) error {
	<-ctx.Done()
	return nil
}

func (m *mockIngestService) Validate(_ *domain.ParsedRecord, _ *domain.SummaryRecord) domain.ValidationResult {
	issues := domain.NewIssueSet()
	issues.Add(domain.Issue{Field: "phone", Message: "not in canonical format", Severity: domain.SeverityFormatting})
	return domain.ValidationResult{
		QualityScore: 97,
		Grade:        domain.GradeA,
		TotalIssues:  1,
		Issues:       issues,
		Completeness: domain.Completeness{MissingOptional: []string{"linkedin"}},
	}
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.err }

// mockExporter captures what it was asked to export.
type mockExporter struct {
	path    string
	details []domain.CandidateDetail
}

func (m *mockExporter) Export(path string, details []domain.CandidateDetail) error {
	m.path = path
	m.details = details
	return nil
}

type testServices struct {
	candidates *mockCandidateService
	ingest     *mockIngestService
	settings   *mockSettingsService
	exporter   *mockExporter
}

// setupTestServices installs mocks for every driving port and returns a
// function that restores the previous services and flag values.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWithMocks()
	return cleanup
}

func setupTestServicesWithMocks() (*testServices, func()) {
	prev := Services{
		Candidates:       candidateService,
		Ingest:           ingestService,
		Settings:         settingsService,
		Exporter:         exporter,
		ResumeExtensions: resumeExtensions,
		Close:            closeServices,
	}

	ts := &testServices{
		candidates: &mockCandidateService{},
		ingest:     &mockIngestService{},
		settings:   newMockSettingsService(),
		exporter:   &mockExporter{},
	}
	applyServices(&Services{
		Candidates:       ts.candidates,
		Ingest:           ts.ingest,
		Settings:         ts.settings,
		Exporter:         ts.exporter,
		ResumeExtensions: []string{".pdf", ".docx", ".txt"},
	})

	return ts, func() {
		applyServices(&prev)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores flag variables, which cobra keeps between Execute calls.
func resetFlags() {
	searchLimit, searchOffset, searchJSON = 10, 0, false
	searchFilters = domain.SearchFilters{}
	rootConfig = Config{}
	candidatesJSON, deleteYes = false, false
	statsJSON, filtersJSON, initReset, initYes = false, false, false, false
	ingestWorkers, ingestWatch, ingestJSON, loadJSON, validateJSON = 0, false, false, false, false
}

// runCommand executes the root command with args and returns its output.
func runCommand(args ...string) (string, error) {
	return runCommandWithInput("", args...)
}

func runCommandWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
