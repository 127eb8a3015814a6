package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range AllLLMProviders() {
		assert.True(t, p.IsValid(), p)
	}
	assert.False(t, AIProvider("").IsValid())
	assert.False(t, AIProvider("cohere").IsValid())
}

// TestAIProvider_RequiresAPIKey tests API key requirements
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
		env      string
	}{
		{AIProviderOllama, false, ""},
		{AIProviderOpenAI, true, "OPENAI_API_KEY"},
		{AIProviderAnthropic, true, "ANTHROPIC_API_KEY"},
		{AIProviderGemini, true, "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.env, tt.provider.APIKeyEnv())
		})
	}
}

// TestLLMSettings_IsConfigured tests configuration detection
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty is unconfigured", LLMSettings{}, false},
		{"ollama needs no key", LLMSettings{Provider: AIProviderOllama}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, true},
		{"gemini with key", LLMSettings{Provider: AIProviderGemini, APIKey: "g-test"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestDefaultAppSettings tests defaults
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()
	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, 1, s.Ingest.Workers)
	assert.Positive(t, s.LLM.RequestsPerMinute)

	models := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, models[p], p)
	}
}
