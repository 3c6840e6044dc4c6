package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a pipeline run record
type Run struct {
	ID               uuid.UUID  `json:"id"`
	RunKey           string     `json:"run_key"`
	RequestID        string     `json:"request_id,omitempty"`
	CorrelationID    string     `json:"correlation_id,omitempty"`
	Family           string     `json:"family"`
	Status           string     `json:"status"`
	CurrentStage     string     `json:"current_stage,omitempty"`
	RetryCount       int        `json:"retry_count"`
	LastError        string     `json:"last_error,omitempty"`
	ValidationStatus string     `json:"validation_status,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ArtifactStep constants for the JSON artifacts stored per run
const (
	StepAnalysis               = "project_analysis"
	StepCrossValidation        = "cross_validation"
	StepRequirementsValidation = "requirements_validation"
	StepSummary                = "summary"
)

// WorkItemRecord is the stored form of one work item
type WorkItemRecord struct {
	ItemID        string   `json:"item_id"`
	Position      int      `json:"position"`
	Title         string   `json:"title"`
	Kind          string   `json:"kind"`
	Format        string   `json:"format"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	FailureReason string   `json:"failure_reason,omitempty"`
	Error         string   `json:"error,omitempty"`
	QualityScore  *float64 `json:"quality_score,omitempty"`
	Dependencies  []byte   `json:"-"`
	Content       []byte   `json:"-"`
	Validation    []byte   `json:"-"`
}
