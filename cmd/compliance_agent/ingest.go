package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WeBuildYourAi/compliance-agent/internal/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate and normalize a project request",
	Long:  "Load a project request from a YAML or JSON file, validate it, clean its text and write the normalized request with metadata.",
	RunE:  runIngest,
}

var (
	ingestRequest string
	ingestOutDir  string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestRequest, "request", "r", "", "Path to the project request (required)")
	ingestCmd.Flags().StringVarP(&ingestOutDir, "out", "o", "", "Output directory (required)")

	if err := ingestCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}
	if err := ingestCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	req, meta, err := ingestion.LoadRequest(ingestRequest)
	if err != nil {
		return fmt.Errorf("failed to ingest request: %w", err)
	}

	if err := ingestion.WriteOutput(ingestOutDir, req, meta); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully ingested project request %s\n", req.RequestID)
	_, _ = fmt.Fprintf(os.Stdout, "Request: %s/request.normalized.json\n", ingestOutDir)
	_, _ = fmt.Fprintf(os.Stdout, "Metadata: %s/request.meta.json\n", ingestOutDir)
	return nil
}
