package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm/llmtest"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func validated(item *types.WorkItem, passed bool, score float64) *types.WorkItem {
	item.Validation = &types.ItemValidation{Passed: passed, QualityScore: score}
	item.QualityScore = &score
	return item
}

func TestValidateRequirements_ModelVerdict(t *testing.T) {
	st := newState(t,
		validated(completed("doc_001", "Privacy Policy"), true, 0.9),
		validated(completed("doc_002", "ROPA Register"), true, 0.8))
	st.CrossValidation = &types.CrossValidation{Status: types.PassCompleted, Consistent: true, ConsistencyScore: 90}
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.ByTask(map[string]llmtest.Handler{
		"requirements_validate": llmtest.Static(`{
			"ready_for_delivery": true,
			"overall_score": 88,
			"recommendations": [
				{"priority": "low", "action": "Add a glossary"},
				{"priority": "Critical", "action": "Name the DPO", "category": "legal"},
				{"action": "Link the cookie policy"}
			]
		}`),
	})}

	result := New(client, Options{}).ValidateRequirements(context.Background(), st)

	assert.Equal(t, types.PassCompleted, result.Status)
	assert.True(t, result.Ready)
	assert.False(t, result.Fallback)
	assert.InDelta(t, 88, result.OverallScore, 1e-9)
	assert.Equal(t, 1.0, result.ValidationRate)
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "Name the DPO", result.Recommendations[0].Action)
	assert.Equal(t, types.PriorityMedium, result.Recommendations[1].Priority)
	assert.Equal(t, types.PriorityLow, result.Recommendations[2].Priority)
	assert.Same(t, result, st.RequirementsValidation)

	prompt := client.PromptsForTask("requirements_validate")[0]
	assert.Contains(t, prompt, "- Covers Article 30")
	assert.Contains(t, prompt, "Validation rate: 1.00")
	assert.Contains(t, prompt, `"consistency_score": 90`)
}

func TestValidateRequirements_UnresolvedCriticalConflictBlocksReadiness(t *testing.T) {
	st := newState(t,
		validated(completed("doc_001", "Privacy Policy"), true, 0.9),
		validated(completed("doc_002", "ROPA Register"), true, 0.9))
	st.CrossValidation = &types.CrossValidation{
		Status:           types.PassCompleted,
		ConsistencyScore: 60,
		Conflicts: []types.Conflict{
			{Severity: types.SeverityCritical, ItemIDs: []string{"doc_001", "doc_002"}, Description: "retention differs"},
		},
	}
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.ByTask(map[string]llmtest.Handler{
		"requirements_validate": llmtest.Static(`{"ready_for_delivery": true, "overall_score": 95}`),
	})}

	result := New(client, Options{}).ValidateRequirements(context.Background(), st)
	assert.False(t, result.Ready)

	st.CrossValidation.Conflicts[0].Resolved = true
	result = New(client, Options{}).ValidateRequirements(context.Background(), st)
	assert.True(t, result.Ready)
}

func TestValidateRequirements_DerivedVerdictOnFailure(t *testing.T) {
	failed := &types.WorkItem{ID: "doc_002", Title: "ROPA Register", Status: types.StatusFailed, Error: "generation error: timeout"}
	review := validated(completed("doc_003", "DPIA"), false, 0.4)
	review.Status = types.StatusRequiresReview
	st := newState(t, validated(completed("doc_001", "Privacy Policy"), true, 0.8), failed, review)
	st.CrossValidation = &types.CrossValidation{
		Status:           types.PassCompleted,
		ConsistencyScore: 70,
		CriteriaCoverage: []types.CriterionCoverage{{Criterion: "Covers Article 30", Covered: false}, {Criterion: "Plain language", Covered: true}},
	}
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.ByTask(map[string]llmtest.Handler{
		"requirements_validate": llmtest.Failing(errors.New("unavailable")),
	})}

	result := New(client, Options{}).ValidateRequirements(context.Background(), st)

	assert.True(t, result.Fallback)
	assert.Equal(t, types.PassCompleted, result.Status)
	assert.False(t, result.Ready)
	assert.Contains(t, result.Reason, "unavailable")
	assert.InDelta(t, 1.0/3, result.ValidationRate, 1e-9)
	// mean of rate 33.3, consistency 70 and quality 60
	assert.InDelta(t, (100.0/3+70+60)/3, result.OverallScore, 1e-6)
	assert.Equal(t, []string{"Covers Article 30"}, result.UnmetCriteria)

	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, types.PriorityCritical, result.Recommendations[0].Priority)
	assert.Contains(t, result.Recommendations[0].Action, "DPIA (doc_003)")
	var actions []string
	for _, r := range result.Recommendations {
		actions = append(actions, r.Action)
	}
	assert.Contains(t, actions, "Address unmet success criterion: Covers Article 30")
	assert.Contains(t, actions, "Regenerate ROPA Register (doc_002): generation error: timeout")
}

func TestValidateRequirements_SkippedWithoutContent(t *testing.T) {
	st := newState(t, &types.WorkItem{ID: "doc_001", Title: "Privacy Policy", Status: types.StatusFailed})
	client := &llmtest.MockClient{}

	result := New(client, Options{}).ValidateRequirements(context.Background(), st)

	assert.Equal(t, types.PassSkipped, result.Status)
	assert.False(t, result.Ready)
	assert.Empty(t, client.Prompts())
}

func TestValidationRate_OneOfTwoFailed(t *testing.T) {
	st := newState(t,
		validated(completed("doc_001", "Privacy Policy"), true, 0.9),
		&types.WorkItem{ID: "doc_002", Title: "ROPA Register", Status: types.StatusFailed})

	assert.Equal(t, 0.5, ValidationRate(st))
	avg, ok := AverageQuality(st)
	assert.True(t, ok)
	assert.InDelta(t, 0.9, avg, 1e-9)

	assert.Equal(t, 0.0, ValidationRate(newState(t)))
	_, ok = AverageQuality(newState(t))
	assert.False(t, ok)
}

func TestOverallStatus(t *testing.T) {
	consistent := &types.CrossValidation{Status: types.PassCompleted, Consistent: true, ConsistencyScore: 85}
	critical := &types.CrossValidation{
		Status:    types.PassCompleted,
		Conflicts: []types.Conflict{{Severity: types.SeverityCritical}},
	}

	tests := []struct {
		name  string
		items []*types.WorkItem
		cross *types.CrossValidation
		want  types.ValidationStatus
	}{
		{"nothing validated", []*types.WorkItem{completed("doc_001", "A")}, nil, types.ValidationNotValidated},
		{"single item passed, cross skipped", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9)},
			&types.CrossValidation{Status: types.PassSkipped}, types.ValidationPassed},
		{"all passed and consistent", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9), validated(completed("doc_002", "B"), true, 0.9)},
			consistent, types.ValidationPassed},
		{"all passed, low consistency", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9), validated(completed("doc_002", "B"), true, 0.9)},
			&types.CrossValidation{Status: types.PassCompleted, Consistent: true, ConsistencyScore: 70}, types.ValidationPartial},
		{"cross errored", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9), validated(completed("doc_002", "B"), true, 0.9)},
			&types.CrossValidation{Status: types.PassError}, types.ValidationPartial},
		{"half passed", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9), validated(completed("doc_002", "B"), false, 0.5)},
			consistent, types.ValidationPartial},
		{"none passed", []*types.WorkItem{validated(completed("doc_001", "A"), false, 0.5)}, nil, types.ValidationFailed},
		{"critical conflict", []*types.WorkItem{validated(completed("doc_001", "A"), true, 0.9), validated(completed("doc_002", "B"), true, 0.9)},
			critical, types.ValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t, tt.items...)
			st.CrossValidation = tt.cross
			assert.Equal(t, tt.want, Aggregate(st))
			assert.Equal(t, tt.want, st.ValidationStatus)
		})
	}
}
