package types

import "time"

// RequiredDocument is a deliverable identified by project analysis, from the blueprint or the model
type RequiredDocument struct {
	Ref         string       `json:"ref,omitempty"` // blueprint entry id, when one was given
	Title       string       `json:"title"`
	Kind        DocumentKind `json:"kind"`
	Format      Format       `json:"format"`
	Priority    Priority     `json:"priority"`
	Description string       `json:"description,omitempty"`
	Complexity  Complexity   `json:"complexity,omitempty"`
	Audience    string       `json:"target_audience,omitempty"`
	Quality     []string     `json:"quality_requirements,omitempty"`
	DependsOn   []string     `json:"depends_on,omitempty"`
}

// ProjectAnalysis is the output of the analyze-requirements stage
type ProjectAnalysis struct {
	ProjectType       ProjectType        `json:"project_type"`
	Frameworks        []Framework        `json:"frameworks"`
	FrameworkSource   string             `json:"framework_source"`
	Complexity        Complexity         `json:"complexity"`
	TargetAudience    string             `json:"target_audience,omitempty"`
	RequiredDocuments []RequiredDocument `json:"required_documents,omitempty"`
	ParallelExecution bool               `json:"parallel_execution"`
	BlueprintDriven   bool               `json:"blueprint_driven"`
	Fallback          bool               `json:"fallback,omitempty"`
}

// GenerationResult is the raw outcome of one generation call, kept apart from the work item
type GenerationResult struct {
	ItemID    string        `json:"item_id"`
	Success   bool          `json:"success"`
	Content   *Content      `json:"content,omitempty"`
	Raw       string        `json:"raw,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Round     int           `json:"round"`
	Completed time.Time     `json:"completed_at"`
}
