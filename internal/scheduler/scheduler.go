package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"

	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Mode is how a set of work items is dispatched
type Mode string

const (
	// ModeIndependent issues every item in one concurrent batch.
	ModeIndependent Mode = "independent"
	// ModeRounds dispatches dependency-ready items in concurrent rounds.
	ModeRounds Mode = "rounds"
	// ModeSequential dispatches ready items one at a time.
	ModeSequential Mode = "sequential"
)

// Default limits
const (
	DefaultMaxConcurrency    = 4
	DefaultParallelThreshold = 3
	upstreamSummaryLimit     = 1000
)

// Upstream is the summary of a completed dependency handed to a downstream item
type Upstream struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Kind    types.DocumentKind `json:"kind"`
	Summary string             `json:"summary"`
}

// Task is everything a generator needs for one work item.
// Item is a copy; generators must not reach back into the run state.
type Task struct {
	Item     types.WorkItem
	Upstream []Upstream
}

// Generator produces content for one task. It is called concurrently for distinct items.
type Generator interface {
	Generate(ctx context.Context, task Task) (*types.Content, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, task Task) (*types.Content, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, task Task) (*types.Content, error) {
	return f(ctx, task)
}

// Event reports an item status change while scheduling
type Event struct {
	Round  int
	ItemID string
	Status types.Status
	Error  string
}

// Options configures a Scheduler
type Options struct {
	MaxConcurrency    int
	ParallelThreshold int
	Logger            *logging.Logger
	OnEvent           func(Event)
}

// Report summarizes one scheduling pass
type Report struct {
	Mode       Mode     `json:"mode"`
	Rounds     int      `json:"rounds"`
	Dispatched int      `json:"dispatched"`
	Completed  int      `json:"completed"`
	Failed     int      `json:"failed"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// Scheduler runs generation over the pending work items of a run
type Scheduler struct {
	gen  Generator
	opts Options
	log  *logging.Logger
}

// New creates a Scheduler, filling unset options with defaults.
func New(gen Generator, opts Options) *Scheduler {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	return &Scheduler{gen: gen, opts: opts, log: logging.OrNop(opts.Logger)}
}

// SelectMode picks the dispatch mode for items.
func SelectMode(items []*types.WorkItem, threshold int) Mode {
	if len(items) <= threshold {
		return ModeSequential
	}
	for _, item := range items {
		if len(item.Dependencies) > 0 {
			return ModeRounds
		}
	}
	return ModeIndependent
}

// failureReasoner is implemented by errors that carry their own failure reason.
type failureReasoner interface {
	FailureReason() types.FailureReason
}

// rawOutputer is implemented by errors that kept the raw generator output.
type rawOutputer interface {
	RawOutput() string
}

type outcome struct {
	content  *types.Content
	err      error
	duration time.Duration
}

// Run generates every pending item of st. Item failures are recorded on the items;
// the returned error covers only problems that prevent scheduling at all.
func (s *Scheduler) Run(ctx context.Context, st *state.RunState) (*Report, error) {
	if s.gen == nil {
		return nil, errors.New("scheduler has no generator")
	}
	if st == nil {
		return nil, errors.New("run state is nil")
	}
	st.Init()

	items := st.Items()
	graph, err := BuildGraph(items)
	if err != nil {
		return nil, err
	}
	if blocked := FailBlocked(st, graph); len(blocked) > 0 {
		s.log.Warn("items blocked by dependency cycle", "items", blocked)
		for _, id := range blocked {
			s.emit(0, id, types.StatusFailed, "dependency cycle")
		}
	}

	report := &Report{Mode: SelectMode(items, s.opts.ParallelThreshold)}
	s.log.Info("scheduling generation", "mode", report.Mode, "items", len(items))

	if report.Mode == ModeIndependent {
		batch := st.ItemsWithStatus(types.StatusPending)
		report.Rounds = 1
		s.dispatch(ctx, st, 1, batch, false)
		report.Dispatched += len(batch)
	} else {
		s.runRounds(ctx, st, report)
	}

	c := st.Counts()
	report.Completed = c.Succeeded
	report.Failed = c.Failed
	for _, item := range st.ItemsWithStatus(types.StatusFailed) {
		if item.FailureReason == types.FailureDependencyUnresolved {
			report.Unresolved = append(report.Unresolved, item.ID)
		}
	}
	return report, nil
}

func (s *Scheduler) runRounds(ctx context.Context, st *state.RunState, report *Report) {
	sequential := report.Mode == ModeSequential
	maxRounds := 2 * st.ItemCount()

	for round := 1; round <= maxRounds; round++ {
		s.propagateFailures(st, round)

		pending := st.ItemsWithStatus(types.StatusPending)
		if len(pending) == 0 {
			return
		}

		var ready []*types.WorkItem
		for _, item := range pending {
			if s.dependenciesMet(st, item) {
				ready = append(ready, item)
			}
		}
		if len(ready) == 0 {
			s.log.Warn("no items ready, dependencies cannot be resolved", "round", round, "pending", len(pending))
			s.failRemaining(st, round, "no dependency could be resolved")
			return
		}

		report.Rounds = round
		report.Dispatched += len(ready)
		s.log.Debug("dispatching round", "round", round, "batch", len(ready))
		s.dispatch(ctx, st, round, ready, sequential)
	}

	s.failRemaining(st, maxRounds, fmt.Sprintf("round limit %d reached", maxRounds))
}

func (s *Scheduler) dependenciesMet(st *state.RunState, item *types.WorkItem) bool {
	for _, dep := range item.Dependencies {
		d, ok := st.Item(dep)
		if !ok || !d.Status.HasContent() {
			return false
		}
	}
	return true
}

// propagateFailures fails pending items with a dependency that already failed.
// Repeats until stable so chains are resolved in one call.
func (s *Scheduler) propagateFailures(st *state.RunState, round int) {
	for changed := true; changed; {
		changed = false
		for _, item := range st.ItemsWithStatus(types.StatusPending) {
			for _, dep := range item.Dependencies {
				d, ok := st.Item(dep)
				if ok && d.Status == types.StatusFailed {
					item.Fail(types.FailureDependencyUnresolved, fmt.Sprintf("dependency not resolved: %s failed", dep))
					s.emit(round, item.ID, types.StatusFailed, item.Error)
					changed = true
					break
				}
			}
		}
	}
}

func (s *Scheduler) failRemaining(st *state.RunState, round int, why string) {
	for _, item := range st.ItemsWithStatus(types.StatusPending, types.StatusInProgress) {
		item.Fail(types.FailureDependencyUnresolved, "dependency not resolved: "+why)
		s.emit(round, item.ID, types.StatusFailed, item.Error)
	}
}

// dispatch generates one batch and waits for all of it. Outcomes are keyed by item id
// and applied to the run state only after the batch resolves.
func (s *Scheduler) dispatch(ctx context.Context, st *state.RunState, round int, batch []*types.WorkItem, sequential bool) {
	tasks := make(map[string]Task, len(batch))
	for _, item := range batch {
		tasks[item.ID] = s.buildTask(st, item)
	}

	if sequential {
		for _, item := range batch {
			item.Status = types.StatusInProgress
			s.emit(round, item.ID, types.StatusInProgress, "")
			out := s.execute(ctx, tasks[item.ID])
			s.apply(st, item, round, out)
		}
		return
	}

	for _, item := range batch {
		item.Status = types.StatusInProgress
		s.emit(round, item.ID, types.StatusInProgress, "")
	}

	var mu sync.Mutex
	outcomes := make(map[string]outcome, len(batch))

	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)
	for id, task := range tasks {
		g.Go(func() error {
			out := s.execute(ctx, task)
			mu.Lock()
			outcomes[id] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range batch {
		s.apply(st, item, round, outcomes[item.ID])
	}
}

// execute calls the generator with panic capture so one task cannot take down its batch.
func (s *Scheduler) execute(ctx context.Context, task Task) outcome {
	start := time.Now()
	var out outcome

	var pc panics.Catcher
	pc.Try(func() {
		out.content, out.err = s.gen.Generate(ctx, task)
	})
	if r := pc.Recovered(); r != nil {
		out.content = nil
		out.err = fmt.Errorf("generation panicked: %w", r.AsError())
	}
	if out.err == nil && out.content == nil {
		out.err = errors.New("generator returned no content")
	}

	out.duration = time.Since(start)
	return out
}

func (s *Scheduler) apply(st *state.RunState, item *types.WorkItem, round int, out outcome) {
	log := s.log.WithItem(item.ID)
	res := &types.GenerationResult{
		ItemID:    item.ID,
		Duration:  out.duration,
		Round:     round,
		Completed: time.Now(),
	}

	if out.err != nil {
		reason := types.FailureGeneration
		var fr failureReasoner
		if errors.As(out.err, &fr) && fr.FailureReason() != types.FailureNone {
			reason = fr.FailureReason()
		}
		var ro rawOutputer
		if errors.As(out.err, &ro) {
			res.Raw = ro.RawOutput()
		}
		res.Error = out.err.Error()
		item.Fail(reason, out.err.Error())
		log.Warn("generation failed", "reason", reason, "error", out.err)
		s.emit(round, item.ID, types.StatusFailed, item.Error)
	} else {
		res.Success = true
		res.Content = out.content
		item.Complete(out.content)
		log.Info("generation completed", "duration", out.duration)
		s.emit(round, item.ID, types.StatusCompleted, "")
	}

	st.RecordResult(res)
}

// buildTask copies the item and attaches summaries of its completed direct dependencies.
func (s *Scheduler) buildTask(st *state.RunState, item *types.WorkItem) Task {
	task := Task{Item: *item}
	task.Item.Dependencies = append([]string(nil), item.Dependencies...)
	task.Item.QualityRequirements = append([]string(nil), item.QualityRequirements...)
	task.Item.Frameworks = append([]types.Framework(nil), item.Frameworks...)

	for _, dep := range uniq(item.Dependencies) {
		d, ok := st.Item(dep)
		if !ok || !d.Status.HasContent() {
			continue
		}
		task.Upstream = append(task.Upstream, Upstream{
			ID:      d.ID,
			Title:   d.Title,
			Kind:    d.Kind,
			Summary: types.Truncated(strings.TrimSpace(d.Content.Summary()), upstreamSummaryLimit),
		})
	}
	return task
}

func (s *Scheduler) emit(round int, id string, status types.Status, msg string) {
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(Event{Round: round, ItemID: id, Status: status, Error: msg})
	}
}
