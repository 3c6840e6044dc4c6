package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProjectRequest is the input of one run
type ProjectRequest struct {
	RequestID       string           `json:"request_id" yaml:"request_id" validate:"omitempty,max=128"`
	CorrelationID   string           `json:"correlation_id" yaml:"correlation_id" validate:"omitempty,max=128"`
	Prompt          string           `json:"prompt" yaml:"prompt" validate:"required"`
	Family          DocumentFamily   `json:"family,omitempty" yaml:"family,omitempty" validate:"omitempty,oneof=compliance marketing"`
	Blueprint       []BlueprintEntry `json:"blueprint,omitempty" yaml:"blueprint,omitempty" validate:"omitempty,dive"`
	Brief           *ProjectBrief    `json:"brief,omitempty" yaml:"brief,omitempty"`
	ProjectPlan     *ProjectPlan     `json:"project_plan,omitempty" yaml:"project_plan,omitempty"`
	UserAnswers     map[string]any   `json:"user_answers,omitempty" yaml:"user_answers,omitempty"`
	UserQuestions   []string         `json:"user_questions,omitempty" yaml:"user_questions,omitempty"`
	SuccessCriteria []string         `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
}

// BlueprintEntry describes one requested deliverable
type BlueprintEntry struct {
	ID                  string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title               string   `json:"title" yaml:"title" validate:"required"`
	Format              string   `json:"format" yaml:"format"`
	Kind                string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
	QualityRequirements []string `json:"quality_requirements,omitempty" yaml:"quality_requirements,omitempty"`
	Priority            string   `json:"priority,omitempty" yaml:"priority,omitempty" validate:"omitempty,oneof=critical high medium low"`
	Complexity          string   `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	DependsOn           []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ProjectBrief carries structured context supplied alongside the prompt
type ProjectBrief struct {
	Frameworks       []string `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	Industry         string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	Geography        []string `json:"geography,omitempty" yaml:"geography,omitempty"`
	OrganizationSize string   `json:"organization_size,omitempty" yaml:"organization_size,omitempty"`
	Objectives       []string `json:"objectives,omitempty" yaml:"objectives,omitempty"`
}

// ProjectPlan is an upstream plan that may already name frameworks
type ProjectPlan struct {
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Frameworks []string `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	Phases     []string `json:"phases,omitempty" yaml:"phases,omitempty"`
}

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field-level constraints on the request.
func (r *ProjectRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("project request is nil")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("project request prompt is empty")
	}
	if err := requestValidator.Struct(r); err != nil {
		return formatValidationErrors(err)
	}
	for i, entry := range r.Blueprint {
		if strings.TrimSpace(entry.Format) == "" {
			continue
		}
		if _, err := ParseFormat(entry.Format); err != nil {
			return fmt.Errorf("blueprint[%d] %q: %w", i, entry.Title, err)
		}
	}
	return nil
}

func formatValidationErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid project request: %s", strings.Join(msgs, "; "))
}
