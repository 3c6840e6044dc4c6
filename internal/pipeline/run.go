// Package pipeline provides the high-level orchestration of a document generation run:
// the stage driver, the standard stage layouts and the run entry points.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/WeBuildYourAi/compliance-agent/internal/config"
	"github.com/WeBuildYourAi/compliance-agent/internal/consolidation"
	"github.com/WeBuildYourAi/compliance-agent/internal/db"
	"github.com/WeBuildYourAi/compliance-agent/internal/ingestion"
	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/observability"
	"github.com/WeBuildYourAi/compliance-agent/internal/planning"
	"github.com/WeBuildYourAi/compliance-agent/internal/rendering"
	"github.com/WeBuildYourAi/compliance-agent/internal/scheduler"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
	"github.com/WeBuildYourAi/compliance-agent/internal/validation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	RequestPath string
	// Request takes precedence over RequestPath.
	Request *types.ProjectRequest
	RunID   string
	Config  config.Config
	APIKey  string
	// Client replaces the LLM client built from APIKey.
	Client      llm.Client
	DatabaseURL string
	Verbose     bool
	OnProgress  ProgressCallback
	// Out receives progress lines; defaults to stdout.
	Out    io.Writer
	Logger *logging.Logger
}

// RunResult is everything a finished run produced
type RunResult struct {
	State    *state.RunState
	Outcome  *Outcome
	Response *types.Response
	// StoredID is the database id of the run, uuid.Nil when it was not persisted.
	StoredID uuid.UUID
}

// PlanOutput is the result of analysis and planning without generation
type PlanOutput struct {
	State *state.RunState
	Plan  *planning.PlanResult
}

type runEnv struct {
	req     *types.ProjectRequest
	family  types.DocumentFamily
	cfg     config.Config
	log     *logging.Logger
	out     io.Writer
	cleanup []func()
}

func (e *runEnv) close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
}

// prepare loads and validates the request, resolves the family and opens the logger.
// Request problems are returned before any stage runs.
func prepare(opts *RunOptions) (*runEnv, error) {
	cfg := opts.Config.MergeWithDefaults(config.Defaults())
	env := &runEnv{cfg: cfg, out: opts.Out}
	if env.out == nil {
		env.out = os.Stdout
	}

	req := opts.Request
	if req == nil {
		if opts.RequestPath == "" {
			return nil, &planning.InputError{Message: "no project request given"}
		}
		loaded, _, err := ingestion.LoadRequest(opts.RequestPath)
		if err != nil {
			return nil, &planning.InputError{Message: "invalid project request", Cause: err}
		}
		req = loaded
	} else {
		ingestion.Normalize(req)
		if err := req.Validate(); err != nil {
			return nil, &planning.InputError{Message: "invalid project request", Cause: err}
		}
	}
	env.req = req

	env.family = cfg.DocumentFamily()
	if req.Family != "" {
		env.family = req.Family
	}

	env.log = opts.Logger
	if env.log == nil {
		l, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		env.log = l
		env.cleanup = append(env.cleanup, func() { _ = l.Close() })
	}
	return env, nil
}

func newPlanner(client llm.Client, cfg config.Config, log *logging.Logger) *planning.Planner {
	return planning.NewPlanner(client, planning.Options{
		DefaultFrameworks: cfg.Frameworks(),
		ParallelThreshold: cfg.ParallelThreshold,
		DetailedPlans:     cfg.DetailedPlans,
		MaxConcurrency:    cfg.MaxConcurrency,
		Logger:            log,
	})
}

// RunPipeline orchestrates a full run: analysis, planning, generation, rendering,
// validation and consolidation. Stage failures are reflected in the returned state;
// the error is reserved for problems that prevent the run from starting.
//
//nolint:errcheck // progress lines go to a terminal
func RunPipeline(ctx context.Context, opts RunOptions) (*RunResult, error) {
	env, err := prepare(&opts)
	if err != nil {
		return nil, err
	}
	defer env.close()
	cfg := env.cfg

	client := opts.Client
	if client == nil {
		if opts.APIKey == "" {
			return nil, fmt.Errorf("an API key is required to generate documents")
		}
		client, err = llm.NewClient(ctx, cfg.LLMConfig(), opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	st := state.New(runID, env.req, env.family)
	log := env.log.WithRun(runID)
	log.Info("run started", "family", env.family, "blueprint", len(env.req.Blueprint), "request_id", env.req.RequestID)

	components := Components{
		Planner: newPlanner(client, cfg, log),
		Client:  client,
		Scheduler: scheduler.Options{
			MaxConcurrency:    cfg.MaxConcurrency,
			ParallelThreshold: cfg.ParallelThreshold,
			Logger:            log,
		},
		Renderer: rendering.NewService(rendering.Options{
			OutputDir:      cfg.OutputDir,
			MaxConcurrency: cfg.MaxConcurrency,
			PDFTimeout:     time.Duration(cfg.PDFTimeoutSeconds) * time.Second,
			Logger:         log,
		}),
		Validator: validation.New(client, validation.Options{MaxConcurrency: cfg.MaxConcurrency, Logger: log}),
		Logger:    log,
	}
	stages, err := Stages(env.family, components)
	if err != nil {
		return nil, err
	}

	p := New(stages, Options{
		MaxRetries: cfg.MaxRetries,
		Logger:     log,
		OnProgress: opts.OnProgress,
		Out:        env.out,
	})
	outcome := p.Run(ctx, st)

	if opts.Verbose {
		printer := observability.NewPrinter(env.out)
		printer.PrintAnalysis(st.Analysis)
		printer.PrintWorkItems(st.Items(), nil)
		printer.PrintSummary(st.Summary)
		if st.Summary != nil {
			printer.PrintActionItems(st.Summary.ActionItems)
		}
	}

	result := &RunResult{State: st, Outcome: outcome, Response: consolidation.Response(st)}

	databaseURL := opts.DatabaseURL
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL != "" {
		id, err := persist(ctx, databaseURL, st, outcome)
		if err != nil {
			fmt.Fprintf(env.out, "Warning: Failed to store run in database: %v\n", err)
			log.Warn("persisting run failed", "error", err)
		} else {
			result.StoredID = id
			if opts.Verbose {
				fmt.Fprintf(env.out, "[VERBOSE] Stored run as %s\n", id)
			}
		}
	}

	fmt.Fprintf(env.out, "Done! Run %s finished with status %s.\n", runID, st.Status)
	return result, nil
}

// persist saves the finished run and its stage records.
func persist(ctx context.Context, databaseURL string, st *state.RunState, outcome *Outcome) (uuid.UUID, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return uuid.Nil, err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return uuid.Nil, err
	}
	return database.SaveRun(ctx, st, StageRecords(outcome))
}

// StageRecords converts stage results into database records.
func StageRecords(outcome *Outcome) []db.RunStepInput {
	if outcome == nil {
		return nil
	}
	out := make([]db.RunStepInput, 0, len(outcome.Stages))
	for _, s := range outcome.Stages {
		out = append(out, db.RunStepInput{
			Step:      s.Stage,
			Category:  s.Category,
			Status:    s.Status,
			Attempts:  s.Attempts,
			StartedAt: s.StartedAt,
			Duration:  s.Duration,
			Error:     s.Error,
		})
	}
	return out
}

// PlanOnly runs analysis and planning without generating anything. Client may be nil,
// in which case model-backed planning steps use their fallbacks.
func PlanOnly(ctx context.Context, opts RunOptions) (*PlanOutput, error) {
	env, err := prepare(&opts)
	if err != nil {
		return nil, err
	}
	defer env.close()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	st := state.New(runID, env.req, env.family)
	planner := newPlanner(opts.Client, env.cfg, env.log.WithRun(runID))

	if err := planner.Analyze(ctx, st); err != nil {
		return nil, err
	}
	plan, err := planner.Plan(ctx, st)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer := observability.NewPrinter(env.out)
		printer.PrintAnalysis(st.Analysis)
		printer.PrintWorkItems(st.Items(), plan.Order)
	}
	return &PlanOutput{State: st, Plan: plan}, nil
}
