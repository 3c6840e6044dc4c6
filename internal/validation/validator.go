package validation

import (
	"context"
	"encoding/json"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/prompts"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
)

// Pass names used in errors and messages
const (
	PassIndividual   = "individual"
	PassCross        = "cross-document"
	PassRequirements = "requirements"
)

// FallbackQualityScore is recorded for an item whose validation call failed.
const FallbackQualityScore = 0.5

// Options configures a Validator
type Options struct {
	MaxConcurrency int
	// ContentLimit caps the characters of each document quoted to the reviewer.
	ContentLimit int
	Logger       *logging.Logger
}

// Validator runs the three validation passes over a Run State
type Validator struct {
	client llm.Client
	opts   Options
	log    *logging.Logger
}

// New creates a Validator. client may be nil; every model-backed check then fails softly.
func New(client llm.Client, opts Options) *Validator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if opts.ContentLimit <= 0 {
		opts.ContentLimit = 3000
	}
	return &Validator{client: client, opts: opts, log: logging.OrNop(opts.Logger)}
}

// ask sends one structured review request and decodes the verdict into out.
func (v *Validator) ask(ctx context.Context, pass, itemID, promptKey string, schema llm.ExtractionSchema, schemaName, input string, tier llm.ModelTier, out any) error {
	if v.client == nil {
		return &Error{Pass: pass, ItemID: itemID, Message: "no LLM client configured"}
	}
	tmpl, err := prompts.Get(prompts.ValidationFile, promptKey)
	if err != nil {
		return &Error{Pass: pass, ItemID: itemID, Message: "failed to load prompt", Cause: err}
	}
	prompt := llm.BuildExtractionPrompt(schema.WithDescription(tmpl), input)

	raw, err := v.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return &Error{Pass: pass, ItemID: itemID, Message: "LLM call failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)
	if msg, ok := llm.ErrorPayload(raw); ok {
		return &Error{Pass: pass, ItemID: itemID, Message: "model returned an error: " + msg}
	}
	if err := schemas.Validate(schemaName, raw); err != nil {
		return &Error{Pass: pass, ItemID: itemID, Message: "unexpected verdict structure", Cause: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &Error{Pass: pass, ItemID: itemID, Message: "failed to decode verdict", Cause: err}
	}
	return nil
}

// fraction bounds a quality score, declared on 0-1, to that range.
func fraction(score float64) float64 {
	return clamp(score, 0, 1)
}

// percent bounds a consistency or readiness score, declared on 0-100, to that range.
func percent(score float64) float64 {
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
