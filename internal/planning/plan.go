package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/prompts"
	"github.com/WeBuildYourAi/compliance-agent/internal/scheduler"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// ItemID returns the work item id for the i-th required document (zero-based).
func ItemID(i int) string {
	return fmt.Sprintf("doc_%03d", i+1)
}

// PlanResult describes the planned work items
type PlanResult struct {
	Order   []string       `json:"order"`
	Levels  map[string]int `json:"levels"`
	Blocked []string       `json:"blocked,omitempty"`
	Cycles  [][]string     `json:"cycles,omitempty"`
	Mode    string         `json:"mode"`
}

// Plan creates one work item per required document, in order, resolves dependencies,
// and fails items caught in dependency cycles before any generation happens.
func (p *Planner) Plan(ctx context.Context, st *state.RunState) (*PlanResult, error) {
	st.Init()
	if st.Analysis == nil {
		return nil, fmt.Errorf("plan requires a project analysis")
	}
	if st.ItemCount() > 0 {
		return nil, fmt.Errorf("run already has %d work items", st.ItemCount())
	}
	docs := st.Analysis.RequiredDocuments
	if len(docs) == 0 {
		return nil, &InputError{Message: "no documents to plan"}
	}

	refs := make(map[string]string, len(docs)*3)
	for i, doc := range docs {
		id := ItemID(i)
		refs[id] = id
		if doc.Ref != "" {
			refs[doc.Ref] = id
		}
		key := strings.ToLower(strings.TrimSpace(doc.Title))
		if _, taken := refs[key]; !taken {
			refs[key] = id
		}
	}

	// Unknown references in a blueprint are the requester's mistake; in a model
	// analysis they are dropped so the rest of the run can proceed.
	strict := st.Analysis.BlueprintDriven
	items := make([]*types.WorkItem, 0, len(docs))
	for i, doc := range docs {
		deps, dropped, err := resolveDependencies(doc, refs, strict)
		if err != nil {
			return nil, err
		}
		for _, ref := range dropped {
			p.log.WithItem(ItemID(i)).Warn("dropping unknown dependency", "title", doc.Title, "depends_on", ref)
			st.AddMessage("plan", state.LevelWarn, fmt.Sprintf("%q depends on unknown document %q; dependency ignored.", doc.Title, ref))
		}

		blueprintIndex := -1
		if st.Analysis.BlueprintDriven {
			blueprintIndex = i
		}
		item := &types.WorkItem{
			ID:                  ItemID(i),
			Title:               doc.Title,
			Kind:                doc.Kind,
			Format:              doc.Format,
			Priority:            doc.Priority,
			Complexity:          doc.Complexity,
			TargetAudience:      doc.Audience,
			Description:         doc.Description,
			QualityRequirements: append([]string(nil), doc.Quality...),
			Frameworks:          append([]types.Framework(nil), st.Analysis.Frameworks...),
			Dependencies:        deps,
			BlueprintIndex:      blueprintIndex,
			Status:              types.StatusPending,
		}
		if item.Complexity == "" {
			item.Complexity = types.ComplexityMedium
		}
		if item.Priority == "" {
			item.Priority = types.PriorityMedium
		}
		items = append(items, item)
	}

	// Items reach the state only once the whole plan resolved.
	for _, item := range items {
		if err := st.AddItem(item); err != nil {
			return nil, err
		}
	}

	graph, err := scheduler.BuildGraph(items)
	if err != nil {
		return nil, &InputError{Message: "invalid dependency graph", Cause: err}
	}
	result := &PlanResult{
		Order:  graph.Order,
		Levels: graph.Levels,
		Cycles: graph.Cycles,
		Mode:   string(scheduler.SelectMode(items, p.opts.ParallelThreshold)),
	}
	if graph.HasCycles() {
		result.Blocked = scheduler.FailBlocked(st, graph)
		p.log.Warn("dependency cycle detected", "error", graph.CycleError(), "blocked", result.Blocked)
		st.AddMessage("plan", state.LevelWarn, fmt.Sprintf("%v; %d item(s) will not be generated.", graph.CycleError(), len(result.Blocked)))
	}

	if p.opts.DetailedPlans {
		p.planItems(ctx, st)
	}
	return result, nil
}

// resolveDependencies maps the references of doc to item ids. Unknown references are an
// InputError when strict, otherwise they are returned as dropped.
func resolveDependencies(doc types.RequiredDocument, refs map[string]string, strict bool) (deps, dropped []string, err error) {
	seen := make(map[string]bool)
	for _, raw := range doc.DependsOn {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			continue
		}
		id, ok := refs[ref]
		if !ok {
			id, ok = refs[strings.ToLower(ref)]
		}
		if !ok {
			if strict {
				return nil, nil, &InputError{Message: fmt.Sprintf("%q depends on unknown document %q", doc.Title, raw)}
			}
			dropped = append(dropped, raw)
			continue
		}
		if !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}
	return deps, dropped, nil
}

// planItems asks the model for a section outline per pending item, concurrently.
// Any failure falls back to the standard outline for that item.
func (p *Planner) planItems(ctx context.Context, st *state.RunState) {
	pending := st.ItemsWithStatus(types.StatusPending)

	var mu sync.Mutex
	plans := make(map[string]*types.ExecutionPlan, len(pending))

	var g errgroup.Group
	g.SetLimit(p.opts.MaxConcurrency)
	for _, item := range pending {
		snapshot := *item
		g.Go(func() error {
			plan, err := p.executionPlan(ctx, snapshot)
			if err != nil {
				p.log.WithItem(snapshot.ID).Warn("execution plan failed, using standard outline", "error", err)
				plan = types.StandardPlan()
			}
			mu.Lock()
			plans[snapshot.ID] = plan
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	fallbacks := 0
	for _, item := range pending {
		item.Plan = plans[item.ID]
		if item.Plan != nil && item.Plan.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		st.AddMessage("plan", state.LevelWarn, fmt.Sprintf("%d of %d execution plans used the standard outline.", fallbacks, len(pending)))
	}
}

func (p *Planner) executionPlan(ctx context.Context, item types.WorkItem) (*types.ExecutionPlan, error) {
	if p.client == nil {
		return nil, &AnalysisError{Message: "no LLM client configured"}
	}

	fws := make([]string, len(item.Frameworks))
	for i, f := range item.Frameworks {
		fws[i] = f.DisplayName()
	}
	desc, err := prompts.Render(prompts.AnalysisFile, "execution_plan", map[string]string{
		"ID":         item.ID,
		"Title":      item.Title,
		"Kind":       string(item.Kind),
		"Format":     string(item.Format),
		"Audience":   item.TargetAudience,
		"Frameworks": strings.Join(fws, ", "),
	})
	if err != nil {
		return nil, err
	}

	input := item.Description
	if len(item.QualityRequirements) > 0 {
		input += "\nQuality requirements:\n- " + strings.Join(item.QualityRequirements, "\n- ")
	}
	prompt := llm.BuildExtractionPrompt(llm.ExecutionPlanSchema().WithDescription(desc), strings.TrimSpace(input))

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, err
	}
	if msg, ok := llm.ErrorPayload(raw); ok {
		return nil, fmt.Errorf("model returned an error: %s", msg)
	}
	if err := schemas.Validate(schemas.ExecutionPlan, raw); err != nil {
		return nil, err
	}
	var plan types.ExecutionPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode execution plan: %w", err)
	}
	return &plan, nil
}
