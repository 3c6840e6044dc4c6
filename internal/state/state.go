// Package state holds the Run State shared by every stage of one project run.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Message levels
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Message is one entry of the observable message log
type Message struct {
	Stage string    `json:"stage"`
	Level string    `json:"level"`
	Text  string    `json:"text"`
	Time  time.Time `json:"time"`
}

// TraceEntry records stage-specific data for later inspection
type TraceEntry struct {
	Stage string    `json:"stage"`
	Time  time.Time `json:"time"`
	Data  any       `json:"data,omitempty"`
}

// RunState is the single mutable record for one run.
// It is owned by the goroutine driving the pipeline; concurrent generation tasks never touch it.
type RunState struct {
	RunID   string                `json:"run_id"`
	Request *types.ProjectRequest `json:"request"`
	Family  types.DocumentFamily  `json:"family"`

	Analysis *types.ProjectAnalysis `json:"analysis,omitempty"`

	order []string
	items map[string]*types.WorkItem

	Results   map[string]*types.GenerationResult `json:"results"`
	Artifacts map[string][]types.Artifact        `json:"artifacts"`

	RetryCount             int                           `json:"retry_count"`
	CrossValidation        *types.CrossValidation        `json:"cross_validation,omitempty"`
	RequirementsValidation *types.RequirementsValidation `json:"requirements_validation,omitempty"`
	ValidationStatus       types.ValidationStatus        `json:"validation_status"`
	Summary                *types.Summary                `json:"summary,omitempty"`

	Messages     []Message       `json:"messages"`
	Trace        []TraceEntry    `json:"trace"`
	CurrentStage string          `json:"current_stage"`
	Status       types.RunStatus `json:"status"`
	LastError    string          `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates the Run State for a request.
func New(runID string, req *types.ProjectRequest, family types.DocumentFamily) *RunState {
	now := time.Now()
	s := &RunState{
		RunID:     runID,
		Request:   req,
		Family:    family,
		Status:    types.RunInitiated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Init()
	return s
}

// Init fills every collection with an empty default. It is safe to call at the top of every stage.
func (s *RunState) Init() {
	if s.items == nil {
		s.items = make(map[string]*types.WorkItem)
	}
	if s.Results == nil {
		s.Results = make(map[string]*types.GenerationResult)
	}
	if s.Artifacts == nil {
		s.Artifacts = make(map[string][]types.Artifact)
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if s.Trace == nil {
		s.Trace = []TraceEntry{}
	}
	if s.Request == nil {
		s.Request = &types.ProjectRequest{}
	}
	if s.Family == "" {
		s.Family = types.FamilyCompliance
	}
	if s.ValidationStatus == "" {
		s.ValidationStatus = types.ValidationNotValidated
	}
	if s.Status == "" {
		s.Status = types.RunInitiated
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
}

// Touch marks stage as current and bumps UpdatedAt.
func (s *RunState) Touch(stage string) {
	s.CurrentStage = stage
	s.UpdatedAt = time.Now()
}

// AddMessage appends to the message log.
func (s *RunState) AddMessage(stage, level, text string) {
	s.Messages = append(s.Messages, Message{Stage: stage, Level: level, Text: text, Time: time.Now()})
}

// AddTrace appends stage data to the trace.
func (s *RunState) AddTrace(stage string, data any) {
	s.Trace = append(s.Trace, TraceEntry{Stage: stage, Time: time.Now(), Data: data})
}

// AddItem registers a work item. Ids are never reused within a run.
func (s *RunState) AddItem(item *types.WorkItem) error {
	s.Init()
	if item == nil || item.ID == "" {
		return fmt.Errorf("work item must have an id")
	}
	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("duplicate work item id %q", item.ID)
	}
	if item.Status == "" {
		item.Status = types.StatusPending
	}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return nil
}

// Item looks up a work item by id.
func (s *RunState) Item(id string) (*types.WorkItem, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Items returns the work items in planning order.
func (s *RunState) Items() []*types.WorkItem {
	out := make([]*types.WorkItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// ItemIDs returns work item ids in planning order.
func (s *RunState) ItemIDs() []string {
	return append([]string(nil), s.order...)
}

// ItemCount returns the number of work items.
func (s *RunState) ItemCount() int {
	return len(s.order)
}

// ItemsWithStatus returns items in any of the given states, in planning order.
func (s *RunState) ItemsWithStatus(statuses ...types.Status) []*types.WorkItem {
	var out []*types.WorkItem
	for _, item := range s.Items() {
		for _, st := range statuses {
			if item.Status == st {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// WithContent returns items whose generation succeeded (Completed or RequiresReview).
func (s *RunState) WithContent() []*types.WorkItem {
	return s.ItemsWithStatus(types.StatusCompleted, types.StatusRequiresReview)
}

// RecordResult stores the raw generation outcome for an item.
func (s *RunState) RecordResult(res *types.GenerationResult) {
	s.Init()
	if res == nil {
		return
	}
	s.Results[res.ItemID] = res
}

// AddArtifact records a rendered artifact.
func (s *RunState) AddArtifact(a types.Artifact) {
	s.Init()
	s.Artifacts[a.ItemID] = append(s.Artifacts[a.ItemID], a)
}

// AllArtifacts returns artifacts grouped by item in planning order.
func (s *RunState) AllArtifacts() []types.Artifact {
	var out []types.Artifact
	for _, id := range s.order {
		out = append(out, s.Artifacts[id]...)
	}
	return out
}

// Counts tallies item outcomes.
func (s *RunState) Counts() types.Counts {
	c := types.Counts{Attempted: len(s.order)}
	for _, item := range s.Items() {
		switch item.Status {
		case types.StatusCompleted:
			c.Succeeded++
		case types.StatusRequiresReview:
			c.Succeeded++
			c.RequiresReview++
		case types.StatusFailed:
			c.Failed++
		case types.StatusPending, types.StatusInProgress:
		}
	}
	return c
}

// Duration is the elapsed time since the run was created.
func (s *RunState) Duration() time.Duration {
	return time.Since(s.CreatedAt)
}

// Frameworks returns the analyzed frameworks, if any.
func (s *RunState) Frameworks() []types.Framework {
	if s.Analysis == nil {
		return nil
	}
	return s.Analysis.Frameworks
}

// MarshalJSON includes the work items in planning order.
func (s *RunState) MarshalJSON() ([]byte, error) {
	type alias RunState
	return json.Marshal(struct {
		*alias
		WorkItems []*types.WorkItem `json:"work_items"`
	}{alias: (*alias)(s), WorkItems: s.Items()})
}
