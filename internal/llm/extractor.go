// Package llm - extractor.go builds prompts that ask for a fixed JSON structure.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON structure a structured call must return.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "DocumentValidation")
	Description string        // Task preamble placed before the output structure
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "number", "[]string", ...
	Description string // Description for the model
	Required    bool   // Whether this field is required
}

// WithDescription returns a copy of the schema with a different task preamble.
func (s ExtractionSchema) WithDescription(description string) ExtractionSchema {
	s.Description = description
	return s
}

// BuildExtractionPrompt renders the task preamble, the output structure and the input.
func BuildExtractionPrompt(schema ExtractionSchema, input string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Base every judgment on the input below; do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(input)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ProjectAnalysisSchema is the structure returned by project analysis.
func ProjectAnalysisSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ProjectAnalysis",
		Fields: []SchemaField{
			{Name: "project_type", Type: "string", Description: "privacy_policy_pack | compliance_assessment | audit_preparation | risk_analysis | policy_review | implementation_plan | multi_document_pack", Required: true},
			{Name: "complexity", Type: "string", Description: "low | medium | high | very_high"},
			{Name: "frameworks", Type: "[]string", Description: "Applicable frameworks, e.g. gdpr, hipaa, soc2"},
			{Name: "target_audience", Type: "string"},
			{Name: "required_documents", Type: "[]{title, kind, format, priority, description, depends_on}", Description: "Deliverables the project needs, depends_on lists titles", Required: true},
		},
	}
}

// ExecutionPlanSchema is the structure of a per-item outline.
func ExecutionPlanSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ExecutionPlan",
		Fields: []SchemaField{
			{Name: "approach", Type: "string", Required: true},
			{Name: "sections", Type: "[]{title, purpose}", Required: true},
			{Name: "key_requirements", Type: "[]string"},
		},
	}
}

// DocumentValidationSchema is the structure of an individual validation verdict.
func DocumentValidationSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "DocumentValidation",
		Fields: []SchemaField{
			{Name: "overall_pass", Type: "boolean", Required: true},
			{Name: "quality_score", Type: "number", Description: "0.0 to 1.0", Required: true},
			{Name: "issues_found", Type: "[]{severity, description, location}", Description: "severity is minor | major | critical"},
			{Name: "criteria_met", Type: "[]string"},
			{Name: "strengths", Type: "[]string"},
			{Name: "recommendations", Type: "[]string"},
		},
	}
}

// CrossValidationSchema is the structure of a cross-document consistency verdict.
func CrossValidationSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CrossValidation",
		Fields: []SchemaField{
			{Name: "overall_consistency", Type: "boolean", Required: true},
			{Name: "consistency_score", Type: "number", Description: "0 to 100", Required: true},
			{Name: "inconsistencies_found", Type: "[]{type, severity, documents_affected, description, resolution, resolved}", Description: "documents_affected lists document ids"},
			{Name: "success_criteria_coverage", Type: "[]{criterion, covered, documents}"},
		},
	}
}

// RequirementsValidationSchema is the structure of the final readiness verdict.
func RequirementsValidationSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "RequirementsValidation",
		Fields: []SchemaField{
			{Name: "ready_for_delivery", Type: "boolean", Required: true},
			{Name: "overall_score", Type: "number", Description: "0 to 100", Required: true},
			{Name: "unmet_criteria", Type: "[]string"},
			{Name: "recommendations", Type: "[]{priority, action, category}", Description: "priority is critical | high | medium | low"},
		},
	}
}
