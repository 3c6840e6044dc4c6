package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkItem_FailDropsContent(t *testing.T) {
	item := &WorkItem{ID: "doc_001", Status: StatusInProgress}
	item.Complete(&Content{ExecutiveSummary: "ok"})
	assert.Equal(t, StatusCompleted, item.Status)
	require.NotNil(t, item.Content)

	item.Fail(FailureDependencyUnresolved, "dependency doc_002 not resolved")
	assert.Equal(t, StatusFailed, item.Status)
	assert.Equal(t, FailureDependencyUnresolved, item.FailureReason)
	assert.Nil(t, item.Content)
}

func TestWorkItem_JSONMarshaling(t *testing.T) {
	score := 0.85
	item := WorkItem{
		ID:             "doc_001",
		Title:          "Privacy Policy",
		Kind:           KindPrivacyPolicy,
		Format:         FormatHTML,
		Priority:       PriorityHigh,
		Status:         StatusCompleted,
		BlueprintIndex: 0,
		QualityScore:   &score,
		Dependencies:   []string{"doc_000"},
	}

	jsonBytes, err := json.MarshalIndent(item, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"id": "doc_001"`)
	assert.Contains(t, string(jsonBytes), `"kind": "privacy_policy"`)
	assert.Contains(t, string(jsonBytes), `"status": "completed"`)
	assert.Contains(t, string(jsonBytes), `"quality_score": 0.85`)
	assert.NotContains(t, string(jsonBytes), `"failure_reason"`)
}

func TestContent_Summary(t *testing.T) {
	var nilContent *Content
	assert.Equal(t, "", nilContent.Summary())

	c := &Content{Sections: []Section{{Title: "Intro", Content: "  "}, {Title: "Body", Content: "first text"}}}
	assert.Equal(t, "first text", c.Summary())

	c.ExecutiveSummary = "headline"
	assert.Equal(t, "headline", c.Summary())
}

func TestTruncated(t *testing.T) {
	assert.Equal(t, "short", Truncated("short", 10))
	assert.Equal(t, "abc...", Truncated("abcdef", 3))
}

func TestValidationHelpers(t *testing.T) {
	v := &ItemValidation{Issues: []Issue{{Severity: SeverityMajor}, {Severity: SeverityCritical}}}
	assert.True(t, v.HasCritical())

	var nilV *ItemValidation
	assert.False(t, nilV.HasCritical())

	cv := &CrossValidation{Conflicts: []Conflict{{Severity: SeverityCritical, Resolved: true}}}
	assert.False(t, cv.HasUnresolvedCritical())
	cv.Conflicts = append(cv.Conflicts, Conflict{Severity: SeverityCritical})
	assert.True(t, cv.HasUnresolvedCritical())
}

func TestProjectRequest_Validate(t *testing.T) {
	valid := &ProjectRequest{
		Prompt: "Build a GDPR pack",
		Blueprint: []BlueprintEntry{
			{Title: "Privacy Policy", Format: "html"},
			{Title: "ROPA Register", Format: "xlsx", Priority: "high"},
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  *ProjectRequest
		want string
	}{
		{"nil", nil, "nil"},
		{"empty prompt", &ProjectRequest{Prompt: "  "}, "prompt is empty"},
		{"missing title", &ProjectRequest{Prompt: "x", Blueprint: []BlueprintEntry{{Format: "html"}}}, "Title"},
		{"bad priority", &ProjectRequest{Prompt: "x", Blueprint: []BlueprintEntry{{Title: "A", Priority: "urgent"}}}, "Priority"},
		{"bad format", &ProjectRequest{Prompt: "x", Blueprint: []BlueprintEntry{{Title: "A", Format: "pptx"}}}, "unknown format"},
		{"bad family", &ProjectRequest{Prompt: "x", Family: "legal"}, "Family"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
