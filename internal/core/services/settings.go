package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMRateLimit  = "llm.requests_per_minute"
	keyLLMTimeout    = "llm.timeout"
	keyIngestWorkers = "ingest.workers"
	keyIngestArchive = "ingest.archive_dir"
)

// fieldKeys maps settings struct paths to their config keys for error messages.
var fieldKeys = map[string]string{
	"LLM.Provider":          keyLLMProvider,
	"LLM.Model":             keyLLMModel,
	"LLM.BaseURL":           keyLLMBaseURL,
	"LLM.APIKey":            keyLLMAPIKey,
	"LLM.RequestsPerMinute": keyLLMRateLimit,
	"LLM.Timeout":           keyLLMTimeout,
	"Ingest.Workers":        keyIngestWorkers,
	"Ingest.ArchiveDir":     keyIngestArchive,
}

// setters parse a raw value for one key, apply it and return the value to store.
var setters = map[string]func(s *domain.AppSettings, raw string) (any, error){
	keyLLMProvider: func(s *domain.AppSettings, raw string) (any, error) {
		p := domain.AIProvider(strings.ToLower(raw))
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, raw)
		}
		s.LLM.Provider = p
		return p.String(), nil
	},
	keyLLMModel: func(s *domain.AppSettings, raw string) (any, error) {
		s.LLM.Model = raw
		return raw, nil
	},
	keyLLMBaseURL: func(s *domain.AppSettings, raw string) (any, error) {
		s.LLM.BaseURL = raw
		return raw, nil
	},
	keyLLMAPIKey: func(s *domain.AppSettings, raw string) (any, error) {
		s.LLM.APIKey = raw
		return raw, nil
	},
	keyLLMRateLimit: func(s *domain.AppSettings, raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, keyLLMRateLimit)
		}
		s.LLM.RequestsPerMinute = n
		return n, nil
	},
	keyLLMTimeout: func(s *domain.AppSettings, raw string) (any, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a duration such as 90s", domain.ErrInvalidInput, keyLLMTimeout)
		}
		s.LLM.Timeout = d
		return d.String(), nil
	},
	keyIngestWorkers: func(s *domain.AppSettings, raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, keyIngestWorkers)
		}
		s.Ingest.Workers = n
		return n, nil
	},
	keyIngestArchive: func(s *domain.AppSettings, raw string) (any, error) {
		s.Ingest.ArchiveDir = raw
		return raw, nil
	},
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	return []string{
		keyIngestArchive,
		keyIngestWorkers,
		keyLLMAPIKey,
		keyLLMBaseURL,
		keyLLMModel,
		keyLLMProvider,
		keyLLMRateLimit,
		keyLLMTimeout,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(),
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             s.getString(keyLLMModel, domain.DefaultLLMModels()[provider]),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // empty means the provider default
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getInt(keyLLMRateLimit, defaults.LLM.RequestsPerMinute),
			Timeout:           s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
		},
		Ingest: domain.IngestSettings{
			Workers:    s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			ArchiveDir: s.configStore.GetString(keyIngestArchive),
		},
	}

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envAPIKey(provider)
	}

	return settings, nil
}

// Save persists application settings.
// An API key that only came from the environment is not written to the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRateLimit, settings.LLM.RequestsPerMinute},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyIngestArchive, settings.Ingest.ArchiveDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if key := settings.LLM.APIKey; key != "" && key != envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, key); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Set updates a single setting by its dotted key (e.g. "llm.model").
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	apply, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	stored, err := apply(settings, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	if err := s.check(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if apiKey == "" {
		apiKey = envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)",
			domain.ErrInvalidInput, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Only local providers keep a custom base URL.
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = domain.DefaultBaseURLs()[provider]
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings for invalid values.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.check(settings); err != nil {
		return err
	}

	llm := settings.LLM
	if llm.Provider != "" && !llm.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key (set %s or %s)",
			domain.ErrInvalidInput, llm.Provider, keyLLMAPIKey, llm.Provider.APIKeyEnv())
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// check runs the struct tag rules and reports failures by config key.
func (s *SettingsService) check(settings *domain.AppSettings) error {
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.TrimPrefix(fe.Namespace(), "AppSettings.")
		key, ok := fieldKeys[path]
		if !ok {
			key = path
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", key, ruleText(fe), fe.Value()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func ruleText(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// envAPIKey returns the provider's API key from the environment.
func envAPIKey(provider domain.AIProvider) string {
	name := provider.APIKeyEnv()
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
