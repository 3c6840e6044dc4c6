package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/WeBuildYourAi/compliance-agent/internal/config"
	"github.com/WeBuildYourAi/compliance-agent/internal/ingestion"
	"github.com/WeBuildYourAi/compliance-agent/internal/pipeline"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full document generation pipeline end-to-end",
	Long: `Orchestrates the entire run: analyze -> plan -> generate -> render -> validate (individual,
cross-document, requirements) -> consolidate.

Configuration can be loaded from a JSON, YAML or TOML file using --config. Command-line arguments
override config file values.`,
	RunE: runPipelineCmd,
}

var runOpts runFlags

func init() {
	runOpts.register(runCommand)
	runCommand.Flags().StringVarP(&runOpts.outDir, "out", "o", "", "Output directory for rendered documents")
	runCommand.Flags().IntVar(&runOpts.maxConcurrency, "max-concurrency", 0, "Maximum generation calls in flight per round")
	runCommand.Flags().IntVar(&runOpts.maxRetries, "max-retries", 0, "Stage failures tolerated before the run is marked failed")

	// Database URL for run persistence
	runCommand.Flags().StringVar(&runOpts.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := runOpts.resolveConfig(cmd)
	if err != nil {
		return err
	}
	if runOpts.request == "" {
		return fmt.Errorf("--request must be provided")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	opts, err := buildRunOptions(cmd, cfg)
	if err != nil {
		return err
	}
	// JSON output keeps stdout machine-readable
	if runOpts.jsonOutput {
		opts.Out = os.Stderr
	}

	result, err := pipeline.RunPipeline(ctx, opts)
	if err != nil {
		return err
	}

	if runOpts.jsonOutput {
		if err := writeJSON(os.Stdout, result.Response); err != nil {
			return err
		}
	}
	if result.State.Status == types.RunFailed {
		return fmt.Errorf("run %s failed: %s", result.State.RunID, result.State.LastError)
	}
	return nil
}

// buildRunOptions turns resolved flags and config into pipeline options. An explicit
// --family replaces the family named in the request.
func buildRunOptions(cmd *cobra.Command, cfg config.Config) (pipeline.RunOptions, error) {
	opts := pipeline.RunOptions{
		RequestPath: runOpts.request,
		Config:      cfg,
		APIKey:      cfg.APIKey,
		DatabaseURL: cfg.DatabaseURL,
		Verbose:     cfg.Verbose,
	}
	if cmd.Flags().Changed("family") {
		req, err := loadRequestWithFamily(runOpts.request, cfg.DocumentFamily())
		if err != nil {
			return pipeline.RunOptions{}, err
		}
		opts.Request = req
	}
	return opts, nil
}

func loadRequestWithFamily(path string, family types.DocumentFamily) (*types.ProjectRequest, error) {
	req, _, err := ingestion.LoadRequest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	req.Family = family
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
