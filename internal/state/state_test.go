package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

func TestInit_ZeroValue(t *testing.T) {
	var s RunState
	s.Init()

	assert.NotNil(t, s.Results)
	assert.NotNil(t, s.Artifacts)
	assert.NotNil(t, s.Messages)
	assert.NotNil(t, s.Request)
	assert.Equal(t, types.FamilyCompliance, s.Family)
	assert.Equal(t, types.ValidationNotValidated, s.ValidationStatus)
	assert.Equal(t, types.RunInitiated, s.Status)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Empty(t, s.Items())

	// Idempotent
	s.AddMessage("analyze", LevelInfo, "hello")
	s.Init()
	assert.Len(t, s.Messages, 1)
}

func TestAddItem_OrderAndDuplicates(t *testing.T) {
	s := New("run-1", &types.ProjectRequest{Prompt: "p"}, types.FamilyCompliance)

	require.NoError(t, s.AddItem(&types.WorkItem{ID: "doc_002", Title: "B"}))
	require.NoError(t, s.AddItem(&types.WorkItem{ID: "doc_001", Title: "A"}))
	assert.Error(t, s.AddItem(&types.WorkItem{ID: "doc_001"}))
	assert.Error(t, s.AddItem(&types.WorkItem{}))

	assert.Equal(t, []string{"doc_002", "doc_001"}, s.ItemIDs())
	item, ok := s.Item("doc_001")
	require.True(t, ok)
	assert.Equal(t, types.StatusPending, item.Status)
}

func TestCountsAndFilters(t *testing.T) {
	s := New("run-1", nil, "")
	statuses := []types.Status{types.StatusCompleted, types.StatusFailed, types.StatusRequiresReview, types.StatusPending}
	for i, st := range statuses {
		require.NoError(t, s.AddItem(&types.WorkItem{ID: string(rune('a' + i)), Status: st}))
	}

	c := s.Counts()
	assert.Equal(t, 4, c.Attempted)
	assert.Equal(t, 2, c.Succeeded)
	assert.Equal(t, 1, c.Failed)
	assert.Equal(t, 1, c.RequiresReview)

	assert.Len(t, s.WithContent(), 2)
	assert.Len(t, s.ItemsWithStatus(types.StatusPending), 1)
}

func TestArtifactsAndResults(t *testing.T) {
	s := New("run-1", nil, types.FamilyMarketing)
	require.NoError(t, s.AddItem(&types.WorkItem{ID: "doc_001"}))
	require.NoError(t, s.AddItem(&types.WorkItem{ID: "doc_002"}))

	s.AddArtifact(types.Artifact{ItemID: "doc_002", Format: types.FormatJSON})
	s.AddArtifact(types.Artifact{ItemID: "doc_001", Format: types.FormatHTML})
	s.AddArtifact(types.Artifact{ItemID: "doc_001", Format: types.FormatPDF})

	all := s.AllArtifacts()
	require.Len(t, all, 3)
	assert.Equal(t, "doc_001", all[0].ItemID)
	assert.Equal(t, "doc_002", all[2].ItemID)

	s.RecordResult(nil)
	s.RecordResult(&types.GenerationResult{ItemID: "doc_001", Success: true})
	assert.True(t, s.Results["doc_001"].Success)
}

func TestTouchAndTrace(t *testing.T) {
	s := New("run-1", nil, "")
	before := s.UpdatedAt
	s.Touch("plan_items")
	s.AddTrace("plan_items", map[string]int{"items": 2})

	assert.Equal(t, "plan_items", s.CurrentStage)
	assert.False(t, s.UpdatedAt.Before(before))
	require.Len(t, s.Trace, 1)
	assert.Equal(t, "plan_items", s.Trace[0].Stage)
}

func TestMarshalJSON_IncludesWorkItems(t *testing.T) {
	s := New("run-1", &types.ProjectRequest{Prompt: "p"}, types.FamilyCompliance)
	require.NoError(t, s.AddItem(&types.WorkItem{ID: "doc_001", Title: "Privacy Policy"}))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"work_items":[{"id":"doc_001"`)
	assert.Contains(t, string(data), `"run_id":"run-1"`)
}
