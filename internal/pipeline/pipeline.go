package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/WeBuildYourAi/compliance-agent/internal/consolidation"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// DefaultMaxRetries is the run-level ceiling of stage failures.
const DefaultMaxRetries = 3

// Stage result statuses
const (
	StageCompleted = "completed"
	StageFailed    = "failed"
	StageSkipped   = "skipped"
)

// StageFunc transforms the Run State. A returned error is a stage-level failure.
type StageFunc func(ctx context.Context, st *state.RunState) error

// Stage is one named step of the pipeline
type Stage struct {
	Name        string
	Category    string
	Description string
	// Always stages run even after the run has been abandoned.
	Always bool
	Run    StageFunc
}

// StageResult records how one stage went
type StageResult struct {
	Stage     string        `json:"stage"`
	Category  string        `json:"category"`
	Status    string        `json:"status"`
	Attempts  int           `json:"attempts"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Options configures a Pipeline
type Options struct {
	MaxRetries int
	Logger     *logging.Logger
	OnProgress ProgressCallback
	// Out receives the "Stage N/M" progress lines. Nil discards them.
	Out io.Writer
}

// Outcome is the result of one pipeline run
type Outcome struct {
	State     *state.RunState `json:"-"`
	Stages    []StageResult   `json:"stages"`
	Abandoned bool            `json:"abandoned"`
	// Err is the stage error that abandoned the run, if any.
	Err error `json:"-"`
}

// Pipeline runs a fixed, ordered list of stages over one Run State
type Pipeline struct {
	stages []Stage
	opts   Options
	log    *logging.Logger
}

// New creates a Pipeline.
func New(stages []Stage, opts Options) *Pipeline {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Pipeline{stages: stages, opts: opts, log: logging.OrNop(opts.Logger)}
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name
	}
	return out
}

// Run executes every stage in order. A failing stage is retried until the run-level
// retry counter reaches MaxRetries; the run is then abandoned, the remaining stages are
// skipped except the Always ones, and the status is set to failed. Run never returns
// an error: failures are recorded on the state and in the Outcome.
//
//nolint:errcheck // progress lines go to a terminal
func (p *Pipeline) Run(ctx context.Context, st *state.RunState) *Outcome {
	st.Init()
	st.Status = types.RunRunning
	log := p.log.WithRun(st.RunID)
	out := &Outcome{State: st}
	total := len(p.stages)

	for i, stage := range p.stages {
		if out.Abandoned && !stage.Always {
			out.Stages = append(out.Stages, StageResult{Stage: stage.Name, Category: stage.Category, Status: StageSkipped})
			continue
		}

		fmt.Fprintf(p.opts.Out, "Stage %d/%d: %s...\n", i+1, total, stage.Description)
		p.emit(st, stage, fmt.Sprintf("%s...", stage.Description), nil)

		res := StageResult{Stage: stage.Name, Category: stage.Category, StartedAt: time.Now()}
		for {
			res.Attempts++
			err := p.runStage(ctx, st, stage)
			if err == nil {
				res.Status = StageCompleted
				res.Error = ""
				break
			}

			se := newStageError(stage.Name, res.Attempts, err)
			count := HandleError(st, stage.Name, se, p.opts.MaxRetries)
			res.Error = se.Error()
			log.WithStage(stage.Name).Warn("stage failed", "attempt", res.Attempts, "retry_count", count, "fatal", se.Fatal, "error", se)

			if out.Abandoned {
				res.Status = StageFailed
				break
			}
			if se.Fatal || count >= p.opts.MaxRetries || ctx.Err() != nil {
				res.Status = StageFailed
				out.Abandoned = true
				out.Err = se
				st.Status = types.RunFailed
				fmt.Fprintf(p.opts.Out, "Stage %d/%d: %s, abandoning run\n", i+1, total, st.LastError)
				p.emit(st, stage, st.LastError, se.Error())
				break
			}
			fmt.Fprintf(p.opts.Out, "Stage %d/%d: %s, retrying (%d/%d)...\n", i+1, total, st.LastError, count, p.opts.MaxRetries)
		}
		res.Duration = time.Since(res.StartedAt)
		out.Stages = append(out.Stages, res)
		if res.Status == StageCompleted {
			log.WithStage(stage.Name).Debug("stage completed", "attempts", res.Attempts, "duration_ms", res.Duration.Milliseconds())
		}
	}

	p.finish(st, out)
	return out
}

// runStage initializes the state and runs stage, converting a panic into an error.
func (p *Pipeline) runStage(ctx context.Context, st *state.RunState, stage Stage) error {
	st.Init()
	st.Touch(stage.Name)
	if stage.Run == nil {
		return &StageError{Stage: stage.Name, Message: "stage has no implementation", Fatal: true}
	}
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage.Name, Message: "run cancelled", Cause: err, Fatal: true}
	}

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = stage.Run(ctx, st)
	})
	if r := pc.Recovered(); r != nil {
		return &StageError{Stage: stage.Name, Message: "stage panicked", Cause: r.AsError()}
	}
	return err
}

// finish settles the run status from the consolidated summary.
func (p *Pipeline) finish(st *state.RunState, out *Outcome) {
	switch {
	case out.Abandoned:
		st.Status = types.RunFailed
	case st.Summary != nil:
		st.Status = st.Summary.ExecutiveSummary.ProjectStatus
	default:
		st.Status = consolidation.ProjectStatus(st)
	}
	st.UpdatedAt = time.Now()
	p.log.WithRun(st.RunID).Info("run finished", "status", st.Status, "retry_count", st.RetryCount,
		"duration_ms", st.Duration().Milliseconds())
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{
			Step:     "complete",
			Category: "lifecycle",
			Message:  fmt.Sprintf("Run %s", st.Status),
			RunID:    st.RunID,
			Content:  st.Summary,
		})
	}
}

func (p *Pipeline) emit(st *state.RunState, stage Stage, message string, content any) {
	if p.opts.OnProgress == nil {
		return
	}
	p.opts.OnProgress(ProgressEvent{
		Step:     stage.Name,
		Category: stage.Category,
		Message:  message,
		RunID:    st.RunID,
		Content:  content,
	})
}
