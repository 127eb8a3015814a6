package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/ai"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/config/file"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/export"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/producer"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driven/watcher"
	"github.com/custodia-labs/resume-warehouse/internal/adapters/driving/cli"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
	"github.com/custodia-labs/resume-warehouse/internal/core/services"
	"github.com/custodia-labs/resume-warehouse/internal/extractors"
	"github.com/custodia-labs/resume-warehouse/internal/logger"
	"github.com/custodia-labs/resume-warehouse/internal/metrics"
)

// wire builds the services for one command invocation.
func wire(cfg cli.Config) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	logger.Debug("warehouse at %s", store.Path())

	rec := metrics.New()

	// Without a configured LLM, only archive loads and queries work.
	var (
		structured driven.StructuredProducer
		llm        driven.LLMService
	)
	if settings.LLM.IsConfigured() {
		llm, err = ai.CreateLLMService(context.Background(), &settings.LLM)
		if err != nil {
			logger.Warn("LLM unavailable: %v", err)
		} else {
			promptDir := ""
			if cfg.ConfigDir != "" {
				promptDir = filepath.Join(cfg.ConfigDir, "prompts")
			}
			prompts, err := file.NewPromptStore(promptDir)
			if err != nil {
				_ = llm.Close()
				_ = store.Close()
				return nil, err
			}
			structured = producer.New(llm, prompts, producer.Config{
				RequestsPerMinute: settings.LLM.RequestsPerMinute,
				OnRetry:           rec.IncRateLimitRetry,
			})
		}
	}

	registry := extractors.Default()
	ingest := services.NewIngestService(registry, structured, store,
		services.WithArchiveDir(settings.Ingest.ArchiveDir),
		services.WithObserver(rec),
		services.WithWatcher(watcher.New(0)),
	)

	return &cli.Services{
		Candidates:       services.NewCandidateService(store, rec),
		Ingest:           ingest,
		Settings:         settingsService,
		Exporter:         export.NewExcelExporter(),
		ResumeExtensions: registry.Extensions(),
		Close: func() error {
			var errs []error
			if llm != nil {
				errs = append(errs, llm.Close())
			}
			errs = append(errs, store.Close())
			if cfg.MetricsFile != "" {
				errs = append(errs, rec.WriteFile(cfg.MetricsFile))
			}
			return errors.Join(errs...)
		},
	}, nil
}
