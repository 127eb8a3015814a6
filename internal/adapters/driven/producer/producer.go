// Package producer turns resume text into structured records with an LLM.
//
// The LLMProducer sends the resume to the configured LLM service with a
// user-editable system prompt, strips markdown fences from the reply and
// checks it against an embedded JSON Schema. Schema violations are logged
// and the record is kept: field problems degrade to absent values when the
// payload is decoded. Only a reply that holds no JSON object is an error.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
	"github.com/custodia-labs/resume-warehouse/internal/logger"
)

// Ensure LLMProducer implements the interface.
var _ driven.StructuredProducer = (*LLMProducer)(nil)

// Default generation settings.
const (
	DefaultMaxRetries = 3
	parseMaxTokens    = 8192
	summaryMaxTokens  = 2048
)

// Config configures an LLMProducer.
type Config struct {
	// RequestsPerMinute throttles LLM calls (0 disables throttling).
	RequestsPerMinute int

	// Backoff is the pause after a rate-limited call (default: 30s).
	Backoff time.Duration

	// MaxRetries bounds retries of rate-limited calls (default: 3).
	MaxRetries int

	// OnRetry is called before each retry of a rate-limited call.
	OnRetry func()
}

// LLMProducer implements driven.StructuredProducer over an LLM service.
type LLMProducer struct {
	llm        driven.LLMService
	prompts    driven.PromptStore
	limiter    *RateLimiter
	maxRetries int
	onRetry    func()
}

// New creates a producer that loads its system prompts from prompts.
func New(llm driven.LLMService, prompts driven.PromptStore, cfg Config) *LLMProducer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &LLMProducer{
		llm:        llm,
		prompts:    prompts,
		limiter:    NewRateLimiter(cfg.RequestsPerMinute, cfg.Backoff),
		maxRetries: cfg.MaxRetries,
		onRetry:    cfg.OnRetry,
	}
}

// Parse extracts a ParsedRecord from resume text.
func (p *LLMProducer) Parse(ctx context.Context, filename, text string) (*domain.ParsedRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty resume text", domain.ErrExtractionFailed)
	}

	user := fmt.Sprintf("Resume Filename:\n%s\n\nResume Text:\n%s", filename, text)
	payload, err := p.produce(ctx, driven.PromptResumeParse, user, parseMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	p.logViolations(filename, schemaParsed, payload)
	return domain.DecodeParsedRecord(payload)
}

// Summarise derives a SummaryRecord from a ParsedRecord.
func (p *LLMProducer) Summarise(
	ctx context.Context,
	filename string,
	parsed *domain.ParsedRecord,
) (*domain.SummaryRecord, error) {
	if parsed == nil {
		return nil, fmt.Errorf("%w: no parsed record", domain.ErrInvalidInput)
	}
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal parsed record: %w", err)
	}

	user := fmt.Sprintf("Resume Filename:\n%s\n\nParsed Resume Data (JSON):\n%s", filename, data)
	payload, err := p.produce(ctx, driven.PromptResumeSummary, user, summaryMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("summarise %s: %w", filename, err)
	}

	p.logViolations(filename, schemaSummary, payload)
	return domain.DecodeSummaryRecord(payload)
}

// produce runs one prompt and returns the JSON object of the reply.
func (p *LLMProducer) produce(ctx context.Context, promptName, user string, maxTokens int) ([]byte, error) {
	if p.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if p.prompts == nil {
		return nil, fmt.Errorf("no prompt store configured")
	}
	system, err := p.prompts.Load(promptName)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}
	opts := driven.ChatOptions{MaxTokens: maxTokens, JSON: true}

	var reply string
	for attempt := 0; ; attempt++ {
		if p.limiter.Throttled() {
			logger.Debug("LLM calls throttled, waiting before %s", promptName)
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		reply, err = p.llm.Chat(ctx, messages, opts)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrRateLimited) || attempt >= p.maxRetries {
			return nil, err
		}
		logger.Warn("LLM rate limited, backing off (attempt %d/%d)", attempt+1, p.maxRetries)
		p.limiter.RecordRateLimit()
		if p.onRetry != nil {
			p.onRetry()
		}
	}

	logger.Debug("LLM reply for %s: %s", promptName, logger.Truncate(reply, 200))
	return extractObject(reply)
}

func (p *LLMProducer) logViolations(filename, schema string, payload []byte) {
	violations, err := checkSchema(schema, payload)
	if err != nil {
		logger.Warn("schema check skipped: %v", err)
		return
	}
	for _, v := range violations {
		logger.With(
			zap.String("file", filename),
			zap.String("schema", schema),
			zap.String("field", v.Field),
		).Warn("producer output does not match schema: " + v.Message)
	}
}

// extractObject strips markdown fences and surrounding prose from an LLM
// reply and returns the outermost JSON object.
func extractObject(reply string) ([]byte, error) {
	text := stripFences(reply)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: reply holds no JSON object: %q",
			domain.ErrSchemaViolation, logger.Truncate(reply, 80))
	}

	data := []byte(text[start : end+1])
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %q",
			domain.ErrSchemaViolation, logger.Truncate(reply, 80))
	}
	return data, nil
}

// stripFences removes a ```json ... ``` wrapper if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
