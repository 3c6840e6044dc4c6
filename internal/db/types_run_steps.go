package db

import (
	"time"

	"github.com/google/uuid"
)

// StepStatus constants
const (
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
	StepStatusSkipped   = "skipped"
)

// StepCategory constants
const (
	CategoryPlanning      = "planning"
	CategoryGeneration    = "generation"
	CategoryRendering     = "rendering"
	CategoryValidation    = "validation"
	CategoryConsolidation = "consolidation"
)

// RunStep represents a single stage execution for a run
type RunStep struct {
	ID           uuid.UUID  `json:"id"`
	RunID        uuid.UUID  `json:"run_id"`
	Step         string     `json:"step"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	DurationMs   *int       `json:"duration_ms,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RunStepInput represents input for recording a stage execution
type RunStepInput struct {
	Step      string
	Category  string
	Status    string
	Attempts  int
	StartedAt time.Time
	Duration  time.Duration
	Error     string
}
