// Package llm provides centralized LLM configuration and the Generation Client abstraction
// used for document generation, analysis and validation calls.
package llm

import "fmt"

// ModelTier selects how capable (and how costly) a model a call gets.
type ModelTier string

const (
	// TierLite serves the high-volume calls made once per document:
	// execution outlines during planning and individual quality verdicts.
	TierLite ModelTier = "lite"
	// TierStandard serves the once-per-run judgement calls: project analysis,
	// the cross-document consistency check and the requirements review.
	TierStandard ModelTier = "standard"
	// TierAdvanced writes the documents themselves.
	TierAdvanced ModelTier = "advanced"
)

// tierFallback is the order in which tiers stand in for one that has no model.
// A run never fails for lack of an advanced model as long as a cheaper one exists.
var tierFallback = []ModelTier{TierStandard, TierLite, TierAdvanced}

// Tiers lists every tier a run may request.
func Tiers() []ModelTier {
	return []ModelTier{TierLite, TierStandard, TierAdvanced}
}

// Provider names the backend that serves GenerateJSON calls.
type Provider string

const (
	// ProviderGemini is the only provider NewClient can build today.
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is accepted by configuration but rejected by NewClient.
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is accepted by configuration but rejected by NewClient.
	ProviderAnthropic Provider = "anthropic"
)

// DefaultTemperature keeps generated compliance text close to the prompt.
// Regenerating a document should change wording, not obligations.
const DefaultTemperature float32 = 0.1

// Config maps tiers to provider model names for one run.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig pairs each tier with a Gemini 2.5 model: flash-lite for
// per-document outlines and verdicts, flash for run-level review, pro for writing.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model for tier, or the first configured model in
// tierFallback order. It returns "" when no tier has a model.
func (c *Config) GetModel(tier ModelTier) string {
	if model := c.Models[tier]; model != "" {
		return model
	}
	for _, t := range tierFallback {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with tier served by model. c is not modified.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := c.clone()
	out.Models[tier] = model
	return out
}

// Validate reports settings that would only fail once the first call is made.
func (c *Config) Validate() error {
	if c.GetModel(TierAdvanced) == "" {
		return fmt.Errorf("no model configured for any tier")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f outside [0, 2]", c.Temperature)
	}
	return nil
}

func (c *Config) clone() *Config {
	models := make(map[ModelTier]string, len(c.Models))
	for k, v := range c.Models {
		models[k] = v
	}
	return &Config{Provider: c.Provider, Models: models, Temperature: c.Temperature}
}
