package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// MinItemsForCross is the number of items with content needed before documents are compared.
const MinItemsForCross = 2

// crossVerdict is the structure returned by the cross-document review call
type crossVerdict struct {
	Consistent       bool    `json:"overall_consistency"`
	ConsistencyScore float64 `json:"consistency_score"`
	Conflicts        []struct {
		Type        string   `json:"type"`
		Severity    string   `json:"severity"`
		ItemIDs     []string `json:"documents_affected"`
		Description string   `json:"description"`
		Resolution  string   `json:"resolution"`
		Resolved    bool     `json:"resolved"`
	} `json:"inconsistencies_found"`
	Coverage []types.CriterionCoverage `json:"success_criteria_coverage"`
}

// CrossValidate compares summaries of every item with content for terminology, factual and
// procedural consistency, storing the result on st.CrossValidation.
// With fewer than MinItemsForCross items the pass is skipped. It never fails the run:
// a failed review is recorded with status error.
func (v *Validator) CrossValidate(ctx context.Context, st *state.RunState) *types.CrossValidation {
	st.Init()
	items := st.WithContent()

	if len(items) < MinItemsForCross {
		result := &types.CrossValidation{
			Status:        types.PassSkipped,
			ItemsCompared: len(items),
			Reason:        fmt.Sprintf("cross-document validation needs at least %d documents with content, have %d", MinItemsForCross, len(items)),
		}
		st.CrossValidation = result
		return result
	}

	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	var verdict crossVerdict
	err := v.ask(ctx, PassCross, "", "cross_validate",
		llm.CrossValidationSchema(), schemas.CrossValidation, crossInput(items, st.Request.SuccessCriteria), llm.TierStandard, &verdict)
	if err != nil {
		v.log.Warn("cross-document validation failed", "error", err)
		result := &types.CrossValidation{
			Status:        types.PassError,
			ItemsCompared: len(items),
			Reason:        err.Error(),
		}
		st.CrossValidation = result
		return result
	}

	result := &types.CrossValidation{
		Status:           types.PassCompleted,
		Consistent:       verdict.Consistent,
		ConsistencyScore: percent(verdict.ConsistencyScore),
		CriteriaCoverage: verdict.Coverage,
		ItemsCompared:    len(items),
	}
	for _, c := range verdict.Conflicts {
		var ids []string
		for _, id := range c.ItemIDs {
			id = strings.TrimSpace(id)
			if known[id] {
				ids = append(ids, id)
			} else {
				v.log.Debug("conflict names an unknown document", "id", id)
			}
		}
		result.Conflicts = append(result.Conflicts, types.Conflict{
			Type:        c.Type,
			Severity:    types.ParseSeverity(c.Severity),
			ItemIDs:     ids,
			Description: c.Description,
			Resolution:  c.Resolution,
			Resolved:    c.Resolved,
		})
	}
	st.CrossValidation = result
	return result
}

func crossInput(items []*types.WorkItem, criteria []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Documents compared: %d\n\n", len(items))
	for _, item := range items {
		var doc strings.Builder
		fmt.Fprintf(&doc, "Document id: %s\nTitle: %s\nKind: %s\n", item.ID, item.Title, item.Kind)
		summary := strings.TrimSpace(item.Content.Summary())
		if summary == "" {
			summary = "(no summary available)"
		}
		fmt.Fprintf(&doc, "Summary: %s\n", Neutralize(types.Truncated(summary, 1000)))
		if item.Content != nil {
			writeList(&doc, "Key takeaways", item.Content.KeyTakeaways)
		}
		sb.WriteString(Quote("document summary", strings.TrimRight(doc.String(), "\n")))
		sb.WriteString("\n\n")
	}
	writeList(&sb, "Project success criteria", criteria)
	return strings.TrimRight(sb.String(), "\n")
}
