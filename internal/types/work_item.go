package types

// WorkItem is one deliverable scheduled and tracked through a run
type WorkItem struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Kind                DocumentKind    `json:"kind"`
	Format              Format          `json:"format"`
	Priority            Priority        `json:"priority"`
	Complexity          Complexity      `json:"complexity"`
	TargetAudience      string          `json:"target_audience,omitempty"`
	Description         string          `json:"description,omitempty"`
	QualityRequirements []string        `json:"quality_requirements,omitempty"`
	Frameworks          []Framework     `json:"frameworks,omitempty"`
	Dependencies        []string        `json:"dependencies,omitempty"`
	BlueprintIndex      int             `json:"blueprint_index"` // -1 when not planned from a blueprint entry
	Status              Status          `json:"status"`
	FailureReason       FailureReason   `json:"failure_reason,omitempty"`
	Error               string          `json:"error,omitempty"`
	Content             *Content        `json:"content,omitempty"`
	QualityScore        *float64        `json:"quality_score,omitempty"`
	Validation          *ItemValidation `json:"validation_result,omitempty"`
	Plan                *ExecutionPlan  `json:"execution_plan,omitempty"`
}

// Fail moves the item to StatusFailed with a reason and message, dropping any content.
func (w *WorkItem) Fail(reason FailureReason, msg string) {
	w.Status = StatusFailed
	w.FailureReason = reason
	w.Error = msg
	w.Content = nil
}

// Complete stores generated content and moves the item to StatusCompleted.
func (w *WorkItem) Complete(content *Content) {
	w.Status = StatusCompleted
	w.FailureReason = FailureNone
	w.Error = ""
	w.Content = content
}

// ExecutionPlan is an optional outline produced before generating an item
type ExecutionPlan struct {
	Approach        string        `json:"approach"`
	Sections        []PlanSection `json:"sections"`
	KeyRequirements []string      `json:"key_requirements,omitempty"`
	Fallback        bool          `json:"fallback,omitempty"`
}

// PlanSection is one planned section of a deliverable
type PlanSection struct {
	Title   string `json:"title"`
	Purpose string `json:"purpose,omitempty"`
}

// StandardPlan returns the outline used when no detailed plan could be produced.
func StandardPlan() *ExecutionPlan {
	return &ExecutionPlan{
		Approach: "standard",
		Sections: []PlanSection{
			{Title: "Introduction"},
			{Title: "Main Content"},
			{Title: "Recommendations"},
			{Title: "Next Steps"},
		},
		Fallback: true,
	}
}
