package consolidation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Action item sources
const (
	SourceRequirements = "requirements_validation"
	SourceGeneration   = "generation"
	SourceReview       = "individual_validation"
	SourceConsistency  = "cross_validation"
	SourceDefault      = "default"
)

// DefaultActions returns the action items used when validation produced no recommendations.
func DefaultActions(family types.DocumentFamily) []types.ActionItem {
	second := "Implement the compliance measures described in the documents"
	if family == types.FamilyMarketing {
		second = "Schedule the launch of the approved deliverables"
	}
	return []types.ActionItem{
		{Priority: types.PriorityCritical, Action: "Review the generated documents", Source: SourceDefault},
		{Priority: types.PriorityHigh, Action: second, Source: SourceDefault},
		{Priority: types.PriorityMedium, Action: "Schedule a follow-up assessment", Source: SourceDefault},
	}
}

// ActionItems ranks follow-ups by priority. Recommendations from requirements validation are
// used when present, else the default set; failed items, items requiring review and unresolved
// critical conflicts are always included.
func ActionItems(st *state.RunState) []types.ActionItem {
	var out []types.ActionItem
	seen := make(map[string]bool)
	add := func(a types.ActionItem) {
		key := strings.ToLower(strings.TrimSpace(a.Action))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, a)
	}

	for _, item := range st.Items() {
		switch item.Status {
		case types.StatusFailed:
			reason := item.Error
			if reason == "" {
				reason = string(item.FailureReason)
			}
			add(types.ActionItem{
				Priority: types.PriorityHigh,
				Action:   fmt.Sprintf("Regenerate %s (%s): %s", item.Title, item.ID, reason),
				Source:   SourceGeneration,
				ItemID:   item.ID,
			})
		case types.StatusRequiresReview:
			add(types.ActionItem{
				Priority: types.PriorityCritical,
				Action:   fmt.Sprintf("Resolve critical issues in %s (%s): %s", item.Title, item.ID, criticalIssues(item.Validation)),
				Source:   SourceReview,
				ItemID:   item.ID,
			})
		}
	}

	if cv := st.CrossValidation; cv != nil {
		for _, c := range cv.Conflicts {
			if c.Severity != types.SeverityCritical || c.Resolved {
				continue
			}
			add(types.ActionItem{
				Priority: types.PriorityCritical,
				Action:   fmt.Sprintf("Reconcile %s: %s", strings.Join(c.ItemIDs, ", "), c.Description),
				Source:   SourceConsistency,
			})
		}
	}

	if rv := st.RequirementsValidation; rv != nil && len(rv.Recommendations) > 0 {
		for _, r := range rv.Recommendations {
			add(types.ActionItem{Priority: r.Priority, Action: r.Action, Source: SourceRequirements})
		}
	} else {
		for _, a := range DefaultActions(st.Family) {
			add(a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

func criticalIssues(v *types.ItemValidation) string {
	if v == nil {
		return "see validation results"
	}
	var descs []string
	for _, is := range v.Issues {
		if is.Severity == types.SeverityCritical {
			descs = append(descs, is.Description)
		}
	}
	if len(descs) == 0 {
		return "see validation results"
	}
	return strings.Join(descs, "; ")
}
