// Package llm provides a small client abstraction over hosted language models.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash-lite"

// Config holds the model configuration
type Config struct {
	Provider    Provider
	Model       string
	Temperature float32
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Temperature: 0.2,
	}
}

// WithModel returns a copy of the config using model, or the default model when empty
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model == "" {
		model = DefaultModel
	}
	out.Model = model
	return &out
}
