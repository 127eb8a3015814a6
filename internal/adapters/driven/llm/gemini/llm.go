// Package gemini provides an LLM service adapter using the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the LLM model to use (default: gemini-2.5-flash).
	Model string
}

// models is the subset of *genai.Models the service calls.
type models interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// LLMService provides LLM operations using the Gemini API.
type LLMService struct {
	models    models
	modelName string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return newWithModels(client.Models, cfg.Model), nil
}

func newWithModels(m models, model string) *LLMService {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	return &LLMService{models: m, modelName: model}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	cfg := buildConfig(opts.MaxTokens, opts.Temperature, opts.JSON)
	cfg.StopSequences = opts.StopWords
	return s.generate(ctx, contents, cfg)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction and assistant turns are sent with the model role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	cfg := buildConfig(opts.MaxTokens, opts.Temperature, opts.JSON)

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, msg.Content)
		case driven.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	return s.generate(ctx, contents, cfg)
}

func buildConfig(maxTokens int, temperature float64, asJSON bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens) //nolint:gosec // token limits are small
	}
	if temperature > 0 {
		t := float32(temperature)
		cfg.Temperature = &t
	}
	if asJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (s *LLMService) generate(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	resp, err := s.models.GenerateContent(ctx, s.modelName, contents, cfg)
	if err != nil {
		return "", mapError(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini: empty response")
	}
	return output, nil
}

// mapError translates quota and availability failures into domain errors.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("gemini: %w: %s", domain.ErrRateLimited, apiErr.Message)
		case apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("gemini: %w: %s", domain.ErrLLMUnavailable, apiErr.Message)
		}
		return fmt.Errorf("gemini error (status %d): %s", apiErr.Code, apiErr.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("gemini: %w: %w", domain.ErrLLMUnavailable, err)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Ping validates the API key by fetching the configured model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.models.Get(ctx, s.modelName, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", mapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
