package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/observability"
	"github.com/WeBuildYourAi/compliance-agent/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Analyze a project request and print the planned work items",
	Long: `Runs the analysis and planning stages only: detects frameworks, turns the blueprint into
work items, resolves dependencies and prints the generation order. No documents are generated.
Without an API key the analysis uses its keyword and default fallbacks.`,
	RunE: runPlan,
}

var planOpts runFlags

func init() {
	planOpts.register(planCmd)
	if err := planCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

type planOutput struct {
	RunID   string   `json:"run_id"`
	Family  string   `json:"family"`
	Mode    string   `json:"mode"`
	Order   []string `json:"order"`
	Blocked []string `json:"blocked,omitempty"`
	Items   any      `json:"work_items"`
	Cycles  any      `json:"cycles,omitempty"`
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := planOpts.resolveConfig(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{RequestPath: planOpts.request, Config: cfg, Out: os.Stdout}
	if cmd.Flags().Changed("family") {
		req, err := loadRequestWithFamily(planOpts.request, cfg.DocumentFamily())
		if err != nil {
			return err
		}
		opts.Request = req
	}
	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
		opts.Client = client
	}

	out, err := pipeline.PlanOnly(ctx, opts)
	if err != nil {
		return err
	}

	if planOpts.jsonOutput {
		return writeJSON(os.Stdout, planOutput{
			RunID:   out.State.RunID,
			Family:  string(out.State.Family),
			Mode:    out.Plan.Mode,
			Order:   out.Plan.Order,
			Blocked: out.Plan.Blocked,
			Items:   out.State.Items(),
			Cycles:  out.Plan.Cycles,
		})
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintAnalysis(out.State.Analysis)
	printer.PrintWorkItems(out.State.Items(), out.Plan.Order)
	_, _ = fmt.Fprintf(os.Stdout, "Planned %d work items (%s).\n", out.State.ItemCount(), out.Plan.Mode)
	if len(out.Plan.Blocked) > 0 {
		_, _ = fmt.Fprintf(os.Stdout, "Blocked by dependency cycles: %v\n", out.Plan.Blocked)
	}
	return nil
}
