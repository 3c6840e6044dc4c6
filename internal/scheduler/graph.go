// Package scheduler resolves the dependency order among work items and drives
// their generation in concurrent rounds.
package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// GraphError kinds
const (
	ErrKindUnknownDependency = "unknown_dependency"
	ErrKindCycle             = "cycle"
)

// GraphError reports a structural problem in the dependency graph
type GraphError struct {
	Kind    string
	ItemIDs []string
	Message string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("dependency graph %s: %s", e.Kind, e.Message)
}

// Graph is the checked dependency structure of one run
type Graph struct {
	// Order is a topological order of every item not blocked by a cycle, ties broken by planning order.
	Order []string
	// Cycles lists each dependency cycle found, as a closed path of ids.
	Cycles [][]string
	// Blocked holds cycle members and every item transitively depending on one.
	Blocked map[string]bool
	// Levels maps each ordered item to its depth (0 = no dependencies).
	Levels map[string]int
}

// HasCycles reports whether any cycle was found.
func (g *Graph) HasCycles() bool {
	return len(g.Cycles) > 0
}

// BuildGraph checks the dependencies of items given in planning order.
// A reference to an id outside items is an error; cycles are reported in the Graph, not as an error.
func BuildGraph(items []*types.WorkItem) (*Graph, error) {
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}

	var unknown []string
	for _, item := range items {
		for _, dep := range item.Dependencies {
			if _, ok := index[dep]; !ok {
				unknown = append(unknown, fmt.Sprintf("%s -> %s", item.ID, dep))
			}
		}
	}
	if len(unknown) > 0 {
		return nil, &GraphError{
			Kind:    ErrKindUnknownDependency,
			ItemIDs: unknown,
			Message: "references to unknown work items: " + strings.Join(unknown, ", "),
		}
	}

	// Kahn's algorithm; whatever never reaches in-degree zero is on or behind a cycle
	inDegree := make(map[string]int, len(items))
	dependents := make(map[string][]string, len(items))
	for _, item := range items {
		deps := uniq(item.Dependencies)
		inDegree[item.ID] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], item.ID)
		}
	}

	g := &Graph{Blocked: make(map[string]bool), Levels: make(map[string]int)}
	var queue []string
	for _, item := range items {
		if inDegree[item.ID] == 0 {
			queue = append(queue, item.ID)
		}
	}
	for len(queue) > 0 {
		sort.SliceStable(queue, func(a, b int) bool { return index[queue[a]] < index[queue[b]] })
		id := queue[0]
		queue = queue[1:]
		g.Order = append(g.Order, id)
		level := g.Levels[id]
		g.Levels[id] = level
		for _, next := range dependents[id] {
			if lvl := level + 1; lvl > g.Levels[next] {
				g.Levels[next] = lvl
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(g.Order) == len(items) {
		return g, nil
	}

	for _, item := range items {
		if inDegree[item.ID] > 0 {
			g.Blocked[item.ID] = true
			delete(g.Levels, item.ID)
		}
	}
	g.Cycles = findCycles(items, index)
	return g, nil
}

// findCycles walks the graph depth-first, reconstructing each back edge as a cycle path.
func findCycles(items []*types.WorkItem, index map[string]int) [][]string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	parent := make(map[string]string)
	var cycles [][]string
	seen := make(map[string]bool)

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		onStack[id] = true
		for _, dep := range uniq(items[index[id]].Dependencies) {
			if !visited[dep] {
				parent[dep] = id
				dfs(dep)
			} else if onStack[dep] {
				cycle := []string{dep}
				for cur := id; cur != dep; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, dep)
				// reverse into dependency direction: a depends on b depends on ... a
				for l, r := 0, len(cycle)-1; l < r; l, r = l+1, r-1 {
					cycle[l], cycle[r] = cycle[r], cycle[l]
				}
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}
		onStack[id] = false
	}

	for _, item := range items {
		if !visited[item.ID] {
			dfs(item.ID)
		}
	}
	return cycles
}

func cycleKey(cycle []string) string {
	members := append([]string(nil), cycle[:len(cycle)-1]...)
	sort.Strings(members)
	return strings.Join(members, ",")
}

// CycleError describes the cycles of g as a GraphError, or nil when there are none.
func (g *Graph) CycleError() error {
	if !g.HasCycles() {
		return nil
	}
	paths := make([]string, 0, len(g.Cycles))
	var ids []string
	for _, c := range g.Cycles {
		paths = append(paths, strings.Join(c, " -> "))
		ids = append(ids, c[:len(c)-1]...)
	}
	return &GraphError{Kind: ErrKindCycle, ItemIDs: ids, Message: strings.Join(paths, "; ")}
}

// FailBlocked marks every blocked, non-terminal item Failed with FailureDependencyUnresolved
// and returns the ids it changed, in planning order.
func FailBlocked(st *state.RunState, g *Graph) []string {
	var failed []string
	cycleOf := make(map[string]string)
	for _, c := range g.Cycles {
		desc := strings.Join(c, " -> ")
		for _, id := range c {
			cycleOf[id] = desc
		}
	}
	for _, item := range st.Items() {
		if !g.Blocked[item.ID] || item.Status.IsTerminal() {
			continue
		}
		msg := "dependency not resolved: blocked by a dependency cycle"
		if desc, ok := cycleOf[item.ID]; ok {
			msg = "dependency not resolved: member of cycle " + desc
		}
		item.Fail(types.FailureDependencyUnresolved, msg)
		failed = append(failed, item.ID)
	}
	return failed
}

func uniq(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
