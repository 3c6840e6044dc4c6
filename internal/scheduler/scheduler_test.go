package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func okContent(id string) *types.Content {
	return &types.Content{
		ExecutiveSummary: "summary of " + id,
		Sections:         []types.Section{{Title: "Body", Content: "text"}},
	}
}

// recordingGenerator succeeds for every item unless listed in fail, recording call order.
type recordingGenerator struct {
	mu    sync.Mutex
	calls []string
	tasks map[string]Task
	fail  map[string]error
}

func (g *recordingGenerator) Generate(_ context.Context, task Task) (*types.Content, error) {
	g.mu.Lock()
	g.calls = append(g.calls, task.Item.ID)
	if g.tasks == nil {
		g.tasks = make(map[string]Task)
	}
	g.tasks[task.Item.ID] = task
	g.mu.Unlock()

	if err, ok := g.fail[task.Item.ID]; ok {
		return nil, err
	}
	return okContent(task.Item.ID), nil
}

func statuses(st *state.RunState) map[string]types.Status {
	out := make(map[string]types.Status)
	for _, it := range st.Items() {
		out[it.ID] = it.Status
	}
	return out
}

func TestSelectMode(t *testing.T) {
	three := []*types.WorkItem{item("a"), item("b"), item("c")}
	five := []*types.WorkItem{item("a"), item("b"), item("c"), item("d"), item("e")}
	chained := []*types.WorkItem{item("a"), item("b", "a"), item("c"), item("d"), item("e")}

	assert.Equal(t, ModeSequential, SelectMode(three, 3))
	assert.Equal(t, ModeIndependent, SelectMode(five, 3))
	assert.Equal(t, ModeRounds, SelectMode(chained, 3))
}

func TestRun_TwoItemsSequential(t *testing.T) {
	st := newState(t, item("doc_001"), item("doc_002"))
	gen := &recordingGenerator{}

	var events []Event
	s := New(gen, Options{OnEvent: func(e Event) { events = append(events, e) }})
	report, err := s.Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, ModeSequential, report.Mode)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, []string{"doc_001", "doc_002"}, gen.calls)
	assert.Equal(t, map[string]types.Status{"doc_001": types.StatusCompleted, "doc_002": types.StatusCompleted}, statuses(st))

	// each item is marked in progress right before its own call
	require.Len(t, events, 4)
	assert.Equal(t, Event{Round: 1, ItemID: "doc_001", Status: types.StatusInProgress}, events[0])
	assert.Equal(t, types.StatusCompleted, events[1].Status)
	assert.Equal(t, Event{Round: 1, ItemID: "doc_002", Status: types.StatusInProgress}, events[2])

	res := st.Results["doc_001"]
	require.NotNil(t, res)
	assert.True(t, res.Success)
}

func TestRun_SequentialStatusVisibleDuringCall(t *testing.T) {
	st := newState(t, item("doc_001"), item("doc_002"))
	seen := make(map[string]types.Status)
	gen := GeneratorFunc(func(_ context.Context, task Task) (*types.Content, error) {
		for _, it := range st.Items() {
			if it.ID != task.Item.ID {
				seen[task.Item.ID+">"+it.ID] = it.Status
			}
		}
		cur, _ := st.Item(task.Item.ID)
		seen[task.Item.ID] = cur.Status
		return okContent(task.Item.ID), nil
	})

	_, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, types.StatusInProgress, seen["doc_001"])
	assert.Equal(t, types.StatusPending, seen["doc_001>doc_002"])
	assert.Equal(t, types.StatusCompleted, seen["doc_002>doc_001"])
}

func TestRun_FailureIsIsolated(t *testing.T) {
	st := newState(t, item("doc_001"), item("doc_002"))
	gen := &recordingGenerator{fail: map[string]error{"doc_002": errors.New("backend unavailable")}}

	report, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)

	d2, _ := st.Item("doc_002")
	assert.Equal(t, types.StatusFailed, d2.Status)
	assert.Equal(t, types.FailureGeneration, d2.FailureReason)
	assert.Nil(t, d2.Content)
	assert.Equal(t, "backend unavailable", st.Results["doc_002"].Error)

	d1, _ := st.Item("doc_001")
	assert.Equal(t, types.StatusCompleted, d1.Status)
}

type reasonError struct{ raw string }

func (e *reasonError) Error() string                      { return "bad content" }
func (e *reasonError) FailureReason() types.FailureReason { return types.FailureInvalidContent }
func (e *reasonError) RawOutput() string                  { return e.raw }

func TestRun_ErrorCarriesReasonAndRaw(t *testing.T) {
	st := newState(t, item("doc_001"))
	gen := GeneratorFunc(func(context.Context, Task) (*types.Content, error) {
		return nil, fmt.Errorf("wrapped: %w", &reasonError{raw: "not json"})
	})

	_, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	d1, _ := st.Item("doc_001")
	assert.Equal(t, types.FailureInvalidContent, d1.FailureReason)
	assert.Equal(t, "not json", st.Results["doc_001"].Raw)
}

func TestRun_PanicAndNilContentBecomeItemFailures(t *testing.T) {
	items := []*types.WorkItem{item("a"), item("b"), item("c"), item("d"), item("e")}
	st := newState(t, items...)
	gen := GeneratorFunc(func(_ context.Context, task Task) (*types.Content, error) {
		switch task.Item.ID {
		case "b":
			panic("boom")
		case "c":
			return nil, nil
		}
		return okContent(task.Item.ID), nil
	})

	report, err := New(gen, Options{MaxConcurrency: 2}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, ModeIndependent, report.Mode)
	assert.Equal(t, 1, report.Rounds)
	assert.Equal(t, 3, report.Completed)

	b, _ := st.Item("b")
	assert.Equal(t, types.StatusFailed, b.Status)
	assert.Contains(t, b.Error, "generation panicked")
	c, _ := st.Item("c")
	assert.Contains(t, c.Error, "no content")
}

func TestRun_IndependentBatchRespectsConcurrencyLimit(t *testing.T) {
	var items []*types.WorkItem
	for i := 1; i <= 8; i++ {
		items = append(items, item(fmt.Sprintf("doc_%03d", i)))
	}
	st := newState(t, items...)

	var inFlight, peak int32
	gen := GeneratorFunc(func(_ context.Context, task Task) (*types.Content, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return okContent(task.Item.ID), nil
	})

	report, err := New(gen, Options{MaxConcurrency: 3}).Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 8, report.Completed)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRun_RoundsRespectDependencies(t *testing.T) {
	st := newState(t,
		item("doc_001"),
		item("doc_002", "doc_001"),
		item("doc_003", "doc_001"),
		item("doc_004", "doc_002", "doc_003"),
		item("doc_005"),
	)
	gen := &recordingGenerator{}

	report, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, ModeRounds, report.Mode)
	assert.Equal(t, 3, report.Rounds)
	assert.LessOrEqual(t, report.Rounds, 2*st.ItemCount())
	for id, s := range statuses(st) {
		assert.Equal(t, types.StatusCompleted, s, id)
	}

	assert.Equal(t, 1, st.Results["doc_001"].Round)
	assert.Equal(t, 2, st.Results["doc_003"].Round)
	assert.Equal(t, 3, st.Results["doc_004"].Round)

	task := gen.tasks["doc_004"]
	require.Len(t, task.Upstream, 2)
	assert.Equal(t, "doc_002", task.Upstream[0].ID)
	assert.Equal(t, "summary of doc_002", task.Upstream[0].Summary)
	assert.Empty(t, gen.tasks["doc_001"].Upstream)
}

func TestRun_CycleFailsMembersAndDependents(t *testing.T) {
	st := newState(t,
		item("A", "B"),
		item("B", "A"),
		item("C", "B"),
		item("D"),
	)
	gen := &recordingGenerator{}

	report, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, []string{"D"}, gen.calls)
	for _, id := range []string{"A", "B", "C"} {
		it, _ := st.Item(id)
		assert.Equal(t, types.StatusFailed, it.Status, id)
		assert.Equal(t, types.FailureDependencyUnresolved, it.FailureReason, id)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, report.Unresolved)
}

func TestRun_DependentsOfFailedItemFail(t *testing.T) {
	st := newState(t,
		item("doc_001"),
		item("doc_002", "doc_001"),
		item("doc_003", "doc_002"),
		item("doc_004"),
	)
	gen := &recordingGenerator{fail: map[string]error{"doc_001": errors.New("timeout")}}

	report, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"doc_001", "doc_004"}, gen.calls)
	for _, id := range []string{"doc_002", "doc_003"} {
		it, _ := st.Item(id)
		assert.Equal(t, types.FailureDependencyUnresolved, it.FailureReason, id)
	}
	assert.Empty(t, st.ItemsWithStatus(types.StatusPending, types.StatusInProgress))
	assert.Equal(t, 1, report.Completed)
}

func TestRun_AcyclicGraphsLeaveNothingPending(t *testing.T) {
	graphs := map[string][]*types.WorkItem{
		"chain":   {item("a"), item("b", "a"), item("c", "b"), item("d", "c"), item("e", "d")},
		"diamond": {item("a"), item("b", "a"), item("c", "a"), item("d", "b", "c")},
		"reverse": {item("e", "d"), item("d", "c"), item("c", "b"), item("b", "a"), item("a")},
		"single":  {item("a")},
	}
	for name, items := range graphs {
		t.Run(name, func(t *testing.T) {
			st := newState(t, items...)
			report, err := New(&recordingGenerator{}, Options{}).Run(context.Background(), st)
			require.NoError(t, err)
			assert.Empty(t, st.ItemsWithStatus(types.StatusPending, types.StatusInProgress))
			assert.LessOrEqual(t, report.Rounds, 2*len(items))
			assert.Equal(t, len(items), report.Completed)
		})
	}
}

func TestRun_UnknownDependencyIsAnError(t *testing.T) {
	st := newState(t, item("a", "zzz"))
	_, err := New(&recordingGenerator{}, Options{}).Run(context.Background(), st)
	var ge *GraphError
	assert.True(t, errors.As(err, &ge))
}

func TestRun_NoGenerator(t *testing.T) {
	_, err := New(nil, Options{}).Run(context.Background(), newState(t))
	assert.ErrorContains(t, err, "no generator")
}

func TestRun_TaskIsACopy(t *testing.T) {
	st := newState(t, &types.WorkItem{ID: "a", Status: types.StatusPending, Frameworks: []types.Framework{types.FrameworkGDPR}})
	gen := GeneratorFunc(func(_ context.Context, task Task) (*types.Content, error) {
		task.Item.Frameworks[0] = types.FrameworkSOX
		task.Item.Title = "changed"
		return okContent("a"), nil
	})
	_, err := New(gen, Options{}).Run(context.Background(), st)
	require.NoError(t, err)

	a, _ := st.Item("a")
	assert.Equal(t, types.FrameworkGDPR, a.Frameworks[0])
	assert.Empty(t, a.Title)
}
