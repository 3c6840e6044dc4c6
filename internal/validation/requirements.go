package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// requirementsVerdict is the structure returned by the readiness review call
type requirementsVerdict struct {
	Ready           bool     `json:"ready_for_delivery"`
	OverallScore    float64  `json:"overall_score"`
	UnmetCriteria   []string `json:"unmet_criteria"`
	Recommendations []struct {
		Priority string `json:"priority"`
		Action   string `json:"action"`
		Category string `json:"category"`
	} `json:"recommendations"`
}

// ValidateRequirements compares the individual and cross-document results with the project's
// success criteria and decides delivery readiness, storing the result on st.RequirementsValidation.
// When the review call fails the verdict is derived from the recorded results instead.
// An unresolved critical conflict always blocks readiness.
func (v *Validator) ValidateRequirements(ctx context.Context, st *state.RunState) *types.RequirementsValidation {
	st.Init()
	rate := ValidationRate(st)

	if len(st.WithContent()) == 0 {
		result := &types.RequirementsValidation{
			Status:         types.PassSkipped,
			ValidationRate: rate,
			Reason:         "no documents with content to validate",
		}
		st.RequirementsValidation = result
		return result
	}

	var verdict requirementsVerdict
	err := v.ask(ctx, PassRequirements, "", "requirements_validate",
		llm.RequirementsValidationSchema(), schemas.RequirementsValidation, requirementsInput(st, rate), llm.TierStandard, &verdict)

	var result *types.RequirementsValidation
	if err != nil {
		v.log.Warn("requirements validation failed, deriving verdict from recorded results", "error", err)
		result = derivedVerdict(st, rate)
		result.Reason = err.Error()
	} else {
		result = &types.RequirementsValidation{
			Status:        types.PassCompleted,
			Ready:         verdict.Ready,
			OverallScore:  percent(verdict.OverallScore),
			UnmetCriteria: verdict.UnmetCriteria,
		}
		for _, r := range verdict.Recommendations {
			if strings.TrimSpace(r.Action) == "" {
				continue
			}
			result.Recommendations = append(result.Recommendations, types.Recommendation{
				Priority: types.ParsePriority(r.Priority),
				Action:   r.Action,
				Category: r.Category,
			})
		}
	}

	result.ValidationRate = rate
	if st.CrossValidation.HasUnresolvedCritical() {
		result.Ready = false
	}
	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].Priority.Rank() < result.Recommendations[j].Priority.Rank()
	})
	st.RequirementsValidation = result
	return result
}

// derivedVerdict scores the package from recorded results when no review is available.
func derivedVerdict(st *state.RunState, rate float64) *types.RequirementsValidation {
	scores := []float64{rate * 100}
	cross := st.CrossValidation
	if cross != nil && cross.Status == types.PassCompleted {
		scores = append(scores, cross.ConsistencyScore)
	}
	if q, ok := AverageQuality(st); ok {
		scores = append(scores, q*100)
	}
	total := 0.0
	for _, s := range scores {
		total += s
	}

	counts := st.Counts()
	result := &types.RequirementsValidation{
		Status:       types.PassCompleted,
		Fallback:     true,
		OverallScore: total / float64(len(scores)),
		Ready:        rate == 1 && counts.Failed == 0 && !cross.HasUnresolvedCritical(),
	}

	if cross != nil {
		for _, cov := range cross.CriteriaCoverage {
			if !cov.Covered {
				result.UnmetCriteria = append(result.UnmetCriteria, cov.Criterion)
			}
		}
	}
	for _, c := range result.UnmetCriteria {
		result.Recommendations = append(result.Recommendations, types.Recommendation{
			Priority: types.PriorityHigh,
			Action:   "Address unmet success criterion: " + c,
			Category: "requirements",
		})
	}
	for _, item := range st.Items() {
		switch item.Status {
		case types.StatusRequiresReview:
			result.Recommendations = append(result.Recommendations, types.Recommendation{
				Priority: types.PriorityCritical,
				Action:   fmt.Sprintf("Review critical issues in %s (%s)", item.Title, item.ID),
				Category: "quality",
			})
		case types.StatusFailed:
			result.Recommendations = append(result.Recommendations, types.Recommendation{
				Priority: types.PriorityHigh,
				Action:   fmt.Sprintf("Regenerate %s (%s): %s", item.Title, item.ID, item.Error),
				Category: "generation",
			})
		}
	}
	return result
}

type itemResult struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Passed   bool     `json:"passed"`
	Score    *float64 `json:"quality_score,omitempty"`
	Critical int      `json:"critical_issues"`
	Issues   int      `json:"issues"`
	Error    string   `json:"error,omitempty"`
}

func requirementsInput(st *state.RunState, rate float64) string {
	var results []itemResult
	for _, item := range st.Items() {
		r := itemResult{ID: item.ID, Title: item.Title, Status: string(item.Status), Score: item.QualityScore, Error: item.Error}
		if item.Validation != nil {
			r.Passed = item.Validation.Passed
			r.Issues = len(item.Validation.Issues)
			for _, is := range item.Validation.Issues {
				if is.Severity == types.SeverityCritical {
					r.Critical++
				}
			}
			if item.Validation.Error != "" {
				r.Error = item.Validation.Error
			}
		}
		results = append(results, r)
	}

	var sb strings.Builder
	writeList(&sb, "Project success criteria", st.Request.SuccessCriteria)
	if len(st.Request.SuccessCriteria) == 0 {
		sb.WriteString("Project success criteria: none supplied\n")
	}
	fmt.Fprintf(&sb, "\nValidation rate: %.2f\n", rate)
	if data, err := json.MarshalIndent(results, "", "  "); err == nil {
		fmt.Fprintf(&sb, "\nIndividual results:\n%s\n", data)
	}
	if st.CrossValidation != nil {
		if data, err := json.MarshalIndent(st.CrossValidation, "", "  "); err == nil {
			fmt.Fprintf(&sb, "\nCross-document result:\n%s\n", data)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
