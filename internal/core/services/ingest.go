package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driving"
	"github.com/custodia-labs/resume-warehouse/internal/core/quality"
	"github.com/custodia-labs/resume-warehouse/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Archive file suffixes. Each resume archives as <stem><suffix>.
const (
	SuffixParsed     = ".parsed.json"
	SuffixSummary    = ".summary.json"
	SuffixValidation = ".validation.json"
	SuffixMeta       = ".meta.json"
)

// archiveMeta records where an archived record pair came from.
type archiveMeta struct {
	SourceFile string    `json:"source_file"`
	ArchivedAt time.Time `json:"archived_at"`
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithArchiveDir writes the parsed, summary and validation JSON of every
// ingested file to dir.
func WithArchiveDir(dir string) IngestOption {
	return func(s *IngestService) {
		s.archiveDir = dir
	}
}

// WithObserver reports every outcome to o.
func WithObserver(o driven.IngestObserver) IngestOption {
	return func(s *IngestService) {
		s.observer = o
	}
}

// WithWatcher enables Watch.
func WithWatcher(w driven.DirWatcher) IngestOption {
	return func(s *IngestService) {
		s.watcher = w
	}
}

// IngestService runs resumes through extraction, production, validation
// and the warehouse writer.
type IngestService struct {
	extractors driven.ExtractorRegistry
	producer   driven.StructuredProducer
	store      driven.WarehouseStore
	watcher    driven.DirWatcher
	observer   driven.IngestObserver
	archiveDir string
	now        func() time.Time
}

// NewIngestService creates an ingest service.
// The extractors and producer may be nil; IngestFile then fails and only
// IngestRecord and LoadArchive work.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	producer driven.StructuredProducer,
	store driven.WarehouseStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		extractors: extractors,
		producer:   producer,
		store:      store,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestFile extracts, parses, validates and stores one resume.
// The outcome is always returned; the error is the outcome's error.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.IngestOutcome, error) {
	start := s.now()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	outcome := s.ingestFile(ctx, path)
	outcome.Path = path
	outcome.Duration = s.now().Sub(start)
	s.finish(outcome)
	return outcome, outcome.Err
}

func (s *IngestService) ingestFile(ctx context.Context, path string) *domain.IngestOutcome {
	if s.extractors == nil || s.producer == nil {
		return failed(fmt.Errorf("%w: no LLM configured, run 'resume-warehouse settings'", domain.ErrLLMUnavailable))
	}

	extractor, err := s.extractors.For(path)
	if err != nil {
		return failed(err)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return failed(err)
	}
	logger.Debug("extracted %d characters from %s", len(text), path)

	filename := filepath.Base(path)
	parsed, err := s.producer.Parse(ctx, filename, text)
	if err != nil {
		return failed(err)
	}

	summary, err := s.producer.Summarise(ctx, filename, parsed)
	if err != nil {
		return failed(err)
	}

	validation := quality.Validate(parsed, summary)
	if s.archiveDir != "" {
		if err := s.archive(path, parsed, summary, validation); err != nil {
			logger.Warn("archive %s: %v", filename, err)
		}
	}

	return s.write(ctx, parsed, summary, validation, path)
}

// IngestRecord validates and stores an already extracted record pair.
func (s *IngestService) IngestRecord(
	ctx context.Context,
	parsed *domain.ParsedRecord,
	summary *domain.SummaryRecord,
	sourceFile string,
) (*domain.IngestOutcome, error) {
	start := s.now()

	var outcome *domain.IngestOutcome
	if parsed == nil {
		outcome = failed(fmt.Errorf("%w: no parsed record", domain.ErrInvalidInput))
	} else {
		outcome = s.write(ctx, parsed, summary, quality.Validate(parsed, summary), sourceFile)
	}

	outcome.Path = sourceFile
	outcome.Duration = s.now().Sub(start)
	s.finish(outcome)
	return outcome, outcome.Err
}

// write hands a validated pair to the warehouse writer.
func (s *IngestService) write(
	ctx context.Context,
	parsed *domain.ParsedRecord,
	summary *domain.SummaryRecord,
	validation domain.ValidationResult,
	sourceFile string,
) *domain.IngestOutcome {
	rec := domain.IngestRecord{
		Parsed:     parsed,
		Summary:    summary,
		Validation: validation,
		SourceFile: sourceFile,
	}
	outcome := &domain.IngestOutcome{
		Name:       rec.CandidateName(),
		Validation: &validation,
	}

	if !rec.Named() {
		outcome.Status = domain.IngestStatusSkipped
		outcome.Err = domain.ErrMissingName
		return outcome
	}

	id, err := s.store.Ingest(ctx, rec)
	switch {
	case errors.Is(err, domain.ErrMissingName):
		outcome.Status = domain.IngestStatusSkipped
		outcome.Err = err
	case err != nil:
		outcome.Status = domain.IngestStatusFailed
		outcome.Err = fmt.Errorf("write warehouse: %w", err)
	default:
		outcome.Status = domain.IngestStatusIngested
		outcome.CandidateID = id
	}
	return outcome
}

// finish logs the outcome and reports it to the observer.
func (s *IngestService) finish(o *domain.IngestOutcome) {
	fields := []zap.Field{zap.String("file", filepath.Base(o.Path)), zap.Duration("duration", o.Duration)}
	switch o.Status {
	case domain.IngestStatusIngested:
		logger.With(fields...).Info(fmt.Sprintf("ingested %s as candidate %d (score %d, grade %s)",
			o.Name, o.CandidateID, o.Validation.QualityScore, o.Validation.Grade))
	case domain.IngestStatusSkipped:
		logger.With(fields...).Warn("skipped: " + o.Error())
	default:
		logger.With(fields...).Warn("failed: " + o.Error())
	}

	if s.observer != nil {
		s.observer.ObserveIngest(*o)
	}
}

func failed(err error) *domain.IngestOutcome {
	return &domain.IngestOutcome{Status: domain.IngestStatusFailed, Err: err}
}

// IngestBatch ingests every path with at most workers files in flight.
// A failing file never aborts the batch.
func (s *IngestService) IngestBatch(ctx context.Context, paths []string, workers int) domain.BatchReport {
	if workers < 1 {
		workers = 1
	}

	report := domain.BatchReport{
		RunID:    uuid.New().String(),
		Outcomes: make([]domain.IngestOutcome, len(paths)),
		Started:  s.now(),
	}
	log := logger.With(zap.String("run_id", report.RunID))
	log.Info(fmt.Sprintf("ingesting %d file(s) with %d worker(s)", len(paths), workers))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Outcomes[i] = domain.IngestOutcome{Path: path, Status: domain.IngestStatusFailed, Err: err}
				return nil
			}
			outcome, _ := s.IngestFile(ctx, path)
			report.Outcomes[i] = *outcome
			return nil
		})
	}
	_ = g.Wait()

	report.Finished = s.now()
	log.Info(fmt.Sprintf("batch finished: %d ingested, %d skipped, %d failed",
		report.Count(domain.IngestStatusIngested),
		report.Count(domain.IngestStatusSkipped),
		report.Count(domain.IngestStatusFailed)))
	return report
}

// LoadArchive re-ingests archived record pairs from dir without the LLM.
// Every <stem>.parsed.json needs a matching <stem>.summary.json; the source
// path is read from <stem>.meta.json when present.
func (s *IngestService) LoadArchive(ctx context.Context, dir string) domain.BatchReport {
	report := domain.BatchReport{
		RunID:   uuid.New().String(),
		Started: s.now(),
	}
	defer func() { report.Finished = s.now() }()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
		}
		report.Outcomes = append(report.Outcomes, domain.IngestOutcome{
			Path: dir, Status: domain.IngestStatusFailed, Err: err,
		})
		return report
	}

	parsedFiles, err := filepath.Glob(filepath.Join(dir, "*"+SuffixParsed))
	if err != nil {
		report.Outcomes = append(report.Outcomes, domain.IngestOutcome{
			Path: dir, Status: domain.IngestStatusFailed, Err: err,
		})
		return report
	}
	sort.Strings(parsedFiles)

	for _, parsedPath := range parsedFiles {
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, domain.IngestOutcome{
				Path: parsedPath, Status: domain.IngestStatusFailed, Err: err,
			})
			continue
		}
		report.Outcomes = append(report.Outcomes, s.loadArchived(ctx, parsedPath))
	}
	return report
}

func (s *IngestService) loadArchived(ctx context.Context, parsedPath string) domain.IngestOutcome {
	stem := strings.TrimSuffix(parsedPath, SuffixParsed)
	loadFailed := func(err error) domain.IngestOutcome {
		o := domain.IngestOutcome{Path: parsedPath, Status: domain.IngestStatusFailed, Err: err}
		s.finish(&o)
		return o
	}

	data, err := os.ReadFile(parsedPath)
	if err != nil {
		return loadFailed(err)
	}
	parsed, err := domain.DecodeParsedRecord(data)
	if err != nil {
		return loadFailed(err)
	}

	data, err = os.ReadFile(stem + SuffixSummary)
	if err != nil {
		return loadFailed(fmt.Errorf("%w: summary for %s: %w", domain.ErrNotFound, filepath.Base(parsedPath), err))
	}
	summary, err := domain.DecodeSummaryRecord(data)
	if err != nil {
		return loadFailed(err)
	}

	var meta archiveMeta
	if data, err := os.ReadFile(stem + SuffixMeta); err == nil {
		if err := json.Unmarshal(data, &meta); err != nil {
			logger.Warn("ignoring unreadable %s: %v", stem+SuffixMeta, err)
		}
	}

	outcome, _ := s.IngestRecord(ctx, parsed, summary, meta.SourceFile)
	if outcome.Path == "" {
		outcome.Path = parsedPath
	}
	return *outcome
}

// archive writes the record pair, its validation and its origin under archiveDir.
func (s *IngestService) archive(
	path string,
	parsed *domain.ParsedRecord,
	summary *domain.SummaryRecord,
	validation domain.ValidationResult,
) error {
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return err
	}

	stem := filepath.Join(s.archiveDir, archiveStem(path))

	files := []struct {
		suffix string
		value  any
	}{
		{SuffixParsed, parsed},
		{SuffixSummary, summary},
		{SuffixValidation, validation},
		{SuffixMeta, archiveMeta{SourceFile: path, ArchivedAt: s.now().UTC()}},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.value, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.suffix, err)
		}
		if err := os.WriteFile(stem+f.suffix, append(data, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// archiveStem names the archive files of a resume: its base name plus a hash
// of the full path, so same-named resumes in different directories or with
// different extensions do not overwrite each other.
func archiveStem(path string) string {
	return fmt.Sprintf("%s-%08x", filepath.Base(path), uint32(xxhash.Sum64String(path)))
}

// Watch ingests resume files created or rewritten in dir until ctx is cancelled.
// Unsupported files are ignored.
func (s *IngestService) Watch(ctx context.Context, dir string, onOutcome func(domain.IngestOutcome)) error {
	if s.watcher == nil {
		return fmt.Errorf("%w: no directory watcher configured", domain.ErrInvalidInput)
	}

	paths, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching %s for new resumes", dir)

	for path := range paths {
		if s.extractors != nil && !s.extractors.Supports(path) {
			logger.Debug("ignoring unsupported file %s", path)
			continue
		}
		outcome, _ := s.IngestFile(ctx, path)
		if onOutcome != nil {
			onOutcome(*outcome)
		}
	}
	return nil
}

// Validate scores a record pair without storing it.
func (s *IngestService) Validate(parsed *domain.ParsedRecord, summary *domain.SummaryRecord) domain.ValidationResult {
	return quality.Validate(parsed, summary)
}
