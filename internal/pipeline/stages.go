package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/consolidation"
	"github.com/WeBuildYourAi/compliance-agent/internal/generation"
	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/pipeline/steps"
	"github.com/WeBuildYourAi/compliance-agent/internal/planning"
	"github.com/WeBuildYourAi/compliance-agent/internal/rendering"
	"github.com/WeBuildYourAi/compliance-agent/internal/scheduler"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
	"github.com/WeBuildYourAi/compliance-agent/internal/validation"
)

// Components are the collaborators the standard stages delegate to
type Components struct {
	Planner   *planning.Planner
	Client    llm.Client
	Scheduler scheduler.Options
	Renderer  *rendering.Service
	Validator *validation.Validator
	Logger    *logging.Logger
}

// Stages builds the stage layout of family: compliance runs all eight stages,
// marketing leaves out requirements validation.
func Stages(family types.DocumentFamily, c Components) ([]Stage, error) {
	defs := steps.Sequence(family)
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	if err := steps.ValidateOrder(names, family); err != nil {
		return nil, fmt.Errorf("invalid stage layout: %w", err)
	}

	out := make([]Stage, 0, len(defs))
	for _, def := range defs {
		run, err := c.stageFunc(def.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, Stage{
			Name:        def.Name,
			Category:    def.Category,
			Description: def.Description,
			Always:      def.Always,
			Run:         run,
		})
	}
	return out, nil
}

func (c Components) stageFunc(name string) (StageFunc, error) {
	switch name {
	case steps.StageAnalyze:
		return c.analyze, nil
	case steps.StagePlan:
		return c.plan, nil
	case steps.StageGenerate:
		return c.generate, nil
	case steps.StageRender:
		return c.render, nil
	case steps.StageValidateIndividual:
		return c.validateIndividual, nil
	case steps.StageValidateCross:
		return c.validateCross, nil
	case steps.StageValidateRequirements:
		return c.validateRequirements, nil
	case steps.StageConsolidate:
		return consolidate, nil
	default:
		return nil, fmt.Errorf("no implementation for stage %s", name)
	}
}

func (c Components) analyze(ctx context.Context, st *state.RunState) error {
	if c.Planner == nil {
		return &StageError{Stage: steps.StageAnalyze, Message: "no planner configured", Fatal: true}
	}
	if err := c.Planner.Analyze(ctx, st); err != nil {
		return err
	}
	a := st.Analysis
	st.AddMessage(steps.StageAnalyze, state.LevelInfo, fmt.Sprintf("Identified %d documents for a %s project (%s complexity); frameworks: %s.",
		len(a.RequiredDocuments), a.ProjectType, a.Complexity, frameworkNames(a.Frameworks)))
	st.AddTrace(steps.StageAnalyze, map[string]any{
		"project_type":     a.ProjectType,
		"frameworks":       a.Frameworks,
		"framework_source": a.FrameworkSource,
		"documents":        len(a.RequiredDocuments),
		"parallel":         a.ParallelExecution,
	})
	return nil
}

func (c Components) plan(ctx context.Context, st *state.RunState) error {
	if c.Planner == nil {
		return &StageError{Stage: steps.StagePlan, Message: "no planner configured", Fatal: true}
	}
	// A retried run keeps the items of the first successful plan.
	if n := st.ItemCount(); n > 0 {
		st.AddMessage(steps.StagePlan, state.LevelInfo, fmt.Sprintf("Plan already present; keeping %d work items.", n))
		return nil
	}
	result, err := c.Planner.Plan(ctx, st)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Planned %d work items (%s).", st.ItemCount(), result.Mode)
	if len(result.Blocked) > 0 {
		msg += fmt.Sprintf(" %d blocked by dependency cycles: %s.", len(result.Blocked), strings.Join(result.Blocked, ", "))
	}
	st.AddMessage(steps.StagePlan, state.LevelInfo, msg)
	st.AddTrace(steps.StagePlan, result)
	return nil
}

func (c Components) generate(ctx context.Context, st *state.RunState) error {
	gen := generation.NewGenerator(c.Client, generation.ProjectFromState(st))
	opts := c.Scheduler
	if opts.Logger == nil {
		opts.Logger = c.Logger
	}
	report, err := scheduler.New(gen, opts).Run(ctx, st)
	if err != nil {
		return err
	}
	counts := st.Counts()
	level := state.LevelInfo
	if counts.Failed > 0 {
		level = state.LevelWarn
	}
	st.AddMessage(steps.StageGenerate, level, fmt.Sprintf("%d/%d documents generated in %d rounds (%s).",
		counts.Succeeded, counts.Attempted, report.Rounds, report.Mode))
	st.AddTrace(steps.StageGenerate, report)
	return nil
}

func (c Components) render(ctx context.Context, st *state.RunState) error {
	if c.Renderer == nil {
		st.AddMessage(steps.StageRender, state.LevelWarn, "No renderer configured; skipping file output.")
		return nil
	}
	report, err := c.Renderer.RenderAll(ctx, st)
	if err != nil {
		return err
	}
	level := state.LevelInfo
	if len(report.Failed) > 0 || len(report.Fallbacks) > 0 {
		level = state.LevelWarn
	}
	st.AddMessage(steps.StageRender, level, fmt.Sprintf("%d artifacts rendered, %d fallbacks, %d failed.",
		report.Artifacts, len(report.Fallbacks), len(report.Failed)))
	st.AddTrace(steps.StageRender, report)
	return nil
}

func (c Components) validateIndividual(ctx context.Context, st *state.RunState) error {
	if c.Validator == nil {
		return &StageError{Stage: steps.StageValidateIndividual, Message: "no validator configured", Fatal: true}
	}
	report := c.Validator.ValidateItems(ctx, st)
	status := validation.Aggregate(st)
	st.AddMessage(steps.StageValidateIndividual, state.LevelInfo, fmt.Sprintf("%d/%d documents passed validation; %d require review (%s).",
		report.Passed, report.Validated, len(report.RequiresReview), status))
	st.AddTrace(steps.StageValidateIndividual, report)
	return nil
}

func (c Components) validateCross(ctx context.Context, st *state.RunState) error {
	if c.Validator == nil {
		return &StageError{Stage: steps.StageValidateCross, Message: "no validator configured", Fatal: true}
	}
	cv := c.Validator.CrossValidate(ctx, st)
	validation.Aggregate(st)
	switch cv.Status {
	case types.PassSkipped:
		st.AddMessage(steps.StageValidateCross, state.LevelInfo, "Cross-document validation skipped: "+cv.Reason)
	case types.PassError:
		st.AddMessage(steps.StageValidateCross, state.LevelWarn, "Cross-document validation failed: "+cv.Reason)
	case types.PassCompleted:
		st.AddMessage(steps.StageValidateCross, state.LevelInfo, fmt.Sprintf("Consistency score %.0f with %d conflicts.", cv.ConsistencyScore, len(cv.Conflicts)))
	}
	st.AddTrace(steps.StageValidateCross, cv)
	return nil
}

func (c Components) validateRequirements(ctx context.Context, st *state.RunState) error {
	if c.Validator == nil {
		return &StageError{Stage: steps.StageValidateRequirements, Message: "no validator configured", Fatal: true}
	}
	rv := c.Validator.ValidateRequirements(ctx, st)
	validation.Aggregate(st)
	ready := "not ready"
	if rv.Ready {
		ready = "ready"
	}
	st.AddMessage(steps.StageValidateRequirements, state.LevelInfo, fmt.Sprintf("Requirements score %.0f, %s for delivery.", rv.OverallScore, ready))
	st.AddTrace(steps.StageValidateRequirements, rv)
	return nil
}

func consolidate(_ context.Context, st *state.RunState) error {
	summary := consolidation.Consolidate(st)
	st.AddMessage(steps.StageConsolidate, state.LevelInfo, fmt.Sprintf("Delivered %s documents, %d action items.",
		summary.ExecutiveSummary.DocumentsDelivered, len(summary.ActionItems)))
	return nil
}

func frameworkNames(fws []types.Framework) string {
	if len(fws) == 0 {
		return "none"
	}
	names := make([]string, len(fws))
	for i, fw := range fws {
		names[i] = string(fw)
	}
	return strings.Join(names, ", ")
}
