package types

import "time"

// Artifact is a rendered file produced for a work item
type Artifact struct {
	ItemID   string `json:"item_id"`
	Format   Format `json:"format"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Counts summarizes item outcomes
type Counts struct {
	Attempted      int `json:"attempted"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	RequiresReview int `json:"requires_review"`
}

// ManifestEntry describes one delivered artifact
type ManifestEntry struct {
	ItemID   string `json:"id"`
	Title    string `json:"title"`
	Format   Format `json:"format"`
	Location string `json:"location"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
	Status   Status `json:"status"`
	Fallback bool   `json:"fallback,omitempty"`
}

// ExecutiveSummary is the headline view of a run
type ExecutiveSummary struct {
	ProjectStatus      RunStatus        `json:"project_status"`
	DocumentsDelivered string           `json:"documents_delivered"`
	AverageQuality     float64          `json:"average_quality"`
	ValidationRate     float64          `json:"validation_rate"`
	ValidationStatus   ValidationStatus `json:"validation_status"`
	ConsistencyScore   float64          `json:"consistency_score"`
	ReadinessScore     float64          `json:"readiness_score"`
	Ready              bool             `json:"ready_for_delivery"`
	Frameworks         []Framework      `json:"frameworks_covered,omitempty"`
	KeyDeliverables    []string         `json:"key_deliverables,omitempty"`
}

// ActionItem is a ranked follow-up surfaced to the requester
type ActionItem struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Source   string   `json:"source"`
	ItemID   string   `json:"item_id,omitempty"`
}

// Summary is the consolidated delivery package of a run
type Summary struct {
	RunID            string           `json:"run_id"`
	RequestID        string           `json:"request_id,omitempty"`
	Counts           Counts           `json:"counts"`
	Manifest         []ManifestEntry  `json:"manifest"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	ActionItems      []ActionItem     `json:"action_items"`
	Duration         time.Duration    `json:"processing_duration"`
	CompletedAt      time.Time        `json:"completed_at"`
}

// Response is the projection of a finished run returned to callers
type Response struct {
	RequestID          string           `json:"request_id,omitempty"`
	CorrelationID      string           `json:"correlation_id,omitempty"`
	RunID              string           `json:"run_id"`
	Status             RunStatus        `json:"status"`
	CurrentStage       string           `json:"current_stage"`
	ExecutiveSummary   ExecutiveSummary `json:"executive_summary"`
	ActionItems        []ActionItem     `json:"action_items"`
	Manifest           []ManifestEntry  `json:"manifest"`
	ProcessingDuration float64          `json:"processing_duration_seconds"`
	Messages           []string         `json:"messages,omitempty"`
}
