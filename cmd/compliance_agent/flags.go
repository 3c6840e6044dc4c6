package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WeBuildYourAi/compliance-agent/internal/config"
)

// runFlags are shared by the commands that execute (part of) a run
type runFlags struct {
	configPath     string
	request        string
	outDir         string
	family         string
	apiKey         string
	databaseURL    string
	maxConcurrency int
	maxRetries     int
	detailedPlans  bool
	jsonOutput     bool
	verbose        bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a config file (JSON, YAML or TOML; values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.request, "request", "r", "", "Path to the project request (YAML or JSON)")
	cmd.Flags().StringVar(&f.family, "family", "", "Document family: compliance or marketing (overrides the request)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().BoolVar(&f.detailedPlans, "detailed-plans", false, "Ask the model for a per-document outline before generating")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the result as JSON instead of formatted text")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolveConfig loads the config file (or the environment when none is given), applies
// flags that were explicitly set and fills the remaining zero values with defaults.
func (f *runFlags) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stderr, "Loaded config from: %s\n", f.configPath)
		}
	} else {
		loaded, err := config.FromEnv()
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir = f.outDir
	}
	if flags.Changed("family") {
		cfg.Family = f.family
	}
	if flags.Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if flags.Changed("max-concurrency") {
		cfg.MaxConcurrency = f.maxConcurrency
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = f.maxRetries
	}
	if flags.Changed("detailed-plans") {
		cfg.DetailedPlans = f.detailedPlans
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(config.Defaults()), nil
}
