// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// EnvPrefix is the prefix of environment overrides (COMPLIANCE_AGENT_MAX_RETRIES, ...)
const EnvPrefix = "COMPLIANCE_AGENT"

// Config represents the CLI configuration loaded from a JSON, YAML or TOML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// LLM
	APIKey   string            `json:"api_key,omitempty" mapstructure:"api_key"`   // Gemini API key
	Provider string            `json:"provider,omitempty" mapstructure:"provider"` // LLM provider (gemini)
	Models   map[string]string `json:"models,omitempty" mapstructure:"models"`     // Model name per tier (lite, standard, advanced)

	// Run
	Family            string   `json:"family,omitempty" mapstructure:"family"`                         // compliance or marketing
	OutputDir         string   `json:"output_dir,omitempty" mapstructure:"output_dir"`                 // Where rendered files go
	MaxConcurrency    int      `json:"max_concurrency,omitempty" mapstructure:"max_concurrency"`       // In-flight generation calls per round
	ParallelThreshold int      `json:"parallel_threshold,omitempty" mapstructure:"parallel_threshold"` // Item count above which independent items run as one batch
	MaxRetries        int      `json:"max_retries,omitempty" mapstructure:"max_retries"`               // Stage failures tolerated per run
	DetailedPlans     bool     `json:"detailed_plans,omitempty" mapstructure:"detailed_plans"`         // Ask the LLM for a per-item outline first
	DefaultFrameworks []string `json:"default_frameworks,omitempty" mapstructure:"default_frameworks"` // Last step of the framework cascade
	PDFTimeoutSeconds int      `json:"render_pdf_timeout_seconds,omitempty" mapstructure:"render_pdf_timeout_seconds"`

	// Infrastructure
	DatabaseURL string `json:"database_url,omitempty" mapstructure:"database_url"` // PostgreSQL connection URL
	LogLevel    string `json:"log_level,omitempty" mapstructure:"log_level"`       // DEBUG, INFO, WARN, ERROR
	LogDir      string `json:"log_dir,omitempty" mapstructure:"log_dir"`           // Empty logs to stderr
	Verbose     bool   `json:"verbose,omitempty" mapstructure:"verbose"`           // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	models := make(map[string]string)
	for tier, name := range llm.DefaultGeminiConfig().Models {
		models[string(tier)] = name
	}
	return Config{
		Provider:          string(llm.ProviderGemini),
		Models:            models,
		Family:            string(types.FamilyCompliance),
		OutputDir:         "output",
		MaxConcurrency:    4,
		ParallelThreshold: 3,
		MaxRetries:        3,
		DefaultFrameworks: []string{string(types.FrameworkSOC2), string(types.FrameworkISO27001)},
		PDFTimeoutSeconds: 60,
		LogLevel:          logging.LevelInfo,
	}
}

// LoadConfig loads configuration from a file, applying COMPLIANCE_AGENT_* environment overrides.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a Config from COMPLIANCE_AGENT_* environment variables only.
func FromEnv() (*Config, error) {
	v := newViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment config: %w", err)
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only consults keys viper already knows about
	for _, key := range []string{
		"api_key", "provider", "family", "output_dir", "max_concurrency", "parallel_threshold",
		"max_retries", "detailed_plans", "default_frameworks", "render_pdf_timeout_seconds",
		"database_url", "log_level", "log_dir", "verbose",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// Validate checks that the configuration has valid values.
// Zero values are accepted since MergeWithDefaults fills them.
func (c *Config) Validate() error {
	if c.Family != "" {
		if _, err := types.ParseDocumentFamily(c.Family); err != nil {
			return fmt.Errorf("config error: 'family': %w", err)
		}
	}
	if c.Provider != "" && llm.Provider(c.Provider) != llm.ProviderGemini {
		return fmt.Errorf("config error: unsupported provider %q", c.Provider)
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("config error: 'max_concurrency' must be non-negative")
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("config error: 'parallel_threshold' must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.PDFTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'render_pdf_timeout_seconds' must be non-negative")
	}
	for _, fw := range c.DefaultFrameworks {
		if _, err := types.ParseFramework(fw); err != nil {
			return fmt.Errorf("config error: 'default_frameworks': %w", err)
		}
	}
	if c.LogLevel != "" && logging.ParseLevel(c.LogLevel) != strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
		return fmt.Errorf("config error: invalid log level %q (valid: %s)", c.LogLevel, strings.Join(logging.ValidLevels(), ", "))
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// The API key and database URL fall back to GEMINI_API_KEY and DATABASE_URL.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}
	if result.Family == "" {
		result.Family = defaults.Family
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogDir == "" {
		result.LogDir = defaults.LogDir
	}
	if len(result.DefaultFrameworks) == 0 {
		result.DefaultFrameworks = defaults.DefaultFrameworks
	}

	if result.MaxConcurrency == 0 {
		result.MaxConcurrency = defaults.MaxConcurrency
	}
	if result.ParallelThreshold == 0 {
		result.ParallelThreshold = defaults.ParallelThreshold
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.PDFTimeoutSeconds == 0 {
		result.PDFTimeoutSeconds = defaults.PDFTimeoutSeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig converts the model settings into an llm.Config.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Provider != "" {
		cfg.Provider = llm.Provider(c.Provider)
	}
	for tier, name := range c.Models {
		if name != "" {
			cfg = cfg.WithModel(llm.ModelTier(tier), name)
		}
	}
	return cfg
}

// Frameworks parses DefaultFrameworks, skipping entries Validate would reject.
func (c *Config) Frameworks() []types.Framework {
	out := make([]types.Framework, 0, len(c.DefaultFrameworks))
	for _, raw := range c.DefaultFrameworks {
		if fw, err := types.ParseFramework(raw); err == nil {
			out = append(out, fw)
		}
	}
	return out
}

// DocumentFamily returns the configured family, defaulting to compliance.
func (c *Config) DocumentFamily() types.DocumentFamily {
	if fam, err := types.ParseDocumentFamily(c.Family); err == nil {
		return fam
	}
	return types.FamilyCompliance
}
