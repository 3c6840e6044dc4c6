package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"family": "marketing",
		"output_dir": "out",
		"max_concurrency": 8,
		"default_frameworks": ["gdpr"],
		"models": {"advanced": "gemini-custom"},
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "marketing", cfg.Family)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, []string{"gdpr"}, cfg.DefaultFrameworks)
	assert.Equal(t, "gemini-custom", cfg.Models["advanced"])
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_YAML(t *testing.T) {
	content := "family: compliance\nmax_retries: 5\nlog_level: debug\n"
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"max_retries": 2}`), 0644))
	t.Setenv("COMPLIANCE_AGENT_MAX_RETRIES", "7")
	t.Setenv("COMPLIANCE_AGENT_OUTPUT_DIR", "/tmp/deliverables")

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, "/tmp/deliverables", cfg.OutputDir)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("COMPLIANCE_AGENT_FAMILY", "marketing")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "marketing", cfg.Family)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"bad family", Config{Family: "legal"}, "family"},
		{"bad provider", Config{Provider: "openai"}, "provider"},
		{"bad tier", Config{Models: map[string]string{"huge": "x"}}, "tier"},
		{"negative concurrency", Config{MaxConcurrency: -1}, "max_concurrency"},
		{"negative retries", Config{MaxRetries: -1}, "max_retries"},
		{"bad framework", Config{DefaultFrameworks: []string{"nope"}}, "default_frameworks"},
		{"bad log level", Config{LogLevel: "chatty"}, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	defaults := Defaults()
	assert.NoError(t, defaults.Validate())
	assert.NoError(t, (&Config{LogLevel: "warn"}).Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "")

	partial := Config{Family: "marketing", MaxRetries: 5}
	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "marketing", merged.Family)
	assert.Equal(t, 5, merged.MaxRetries)
	assert.Equal(t, 3, merged.ParallelThreshold)
	assert.Equal(t, 4, merged.MaxConcurrency)
	assert.Equal(t, "output", merged.OutputDir)
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Empty(t, merged.DatabaseURL)
	assert.Equal(t, []types.Framework{types.FrameworkSOC2, types.FrameworkISO27001}, merged.Frameworks())
	assert.Equal(t, types.FamilyMarketing, merged.DocumentFamily())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := Config{OutputDir: "x"}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "x", merged.OutputDir)
	assert.Zero(t, merged.MaxRetries)
	assert.Empty(t, merged.APIKey)
	assert.Equal(t, types.FamilyCompliance, merged.DocumentFamily())
}

func TestLLMConfig(t *testing.T) {
	cfg := Config{Models: map[string]string{"advanced": "custom-pro"}}
	llmCfg := cfg.LLMConfig()

	assert.Equal(t, llm.ProviderGemini, llmCfg.Provider)
	assert.Equal(t, "custom-pro", llmCfg.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash", llmCfg.GetModel(llm.TierStandard))
}
