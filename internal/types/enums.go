// Package types provides type definitions for structured data used throughout the compliance-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a work item
type Status string

// Status constants
const (
	StatusPending        Status = "pending"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusRequiresReview Status = "requires_review"
)

// IsTerminal reports whether the scheduler will never dispatch an item in this state again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRequiresReview:
		return true
	case StatusPending, StatusInProgress:
		return false
	}
	return false
}

// HasContent reports whether generation succeeded for an item in this state.
func (s Status) HasContent() bool {
	switch s {
	case StatusCompleted, StatusRequiresReview:
		return true
	case StatusPending, StatusInProgress, StatusFailed:
		return false
	}
	return false
}

// FailureReason classifies why a work item ended in StatusFailed
type FailureReason string

// FailureReason constants
const (
	FailureNone                 FailureReason = ""
	FailureGeneration           FailureReason = "generation_failed"
	FailureInvalidContent       FailureReason = "invalid_content"
	FailureDependencyUnresolved FailureReason = "dependency_unresolved"
)

// DocumentFamily selects the stage layout of a run
type DocumentFamily string

// DocumentFamily constants
const (
	FamilyCompliance DocumentFamily = "compliance"
	FamilyMarketing  DocumentFamily = "marketing"
)

// ParseDocumentFamily converts a raw string into a DocumentFamily.
func ParseDocumentFamily(s string) (DocumentFamily, error) {
	switch DocumentFamily(strings.ToLower(strings.TrimSpace(s))) {
	case FamilyCompliance:
		return FamilyCompliance, nil
	case FamilyMarketing:
		return FamilyMarketing, nil
	}
	return "", fmt.Errorf("unknown document family %q", s)
}

// Format is the target output format of a deliverable
type Format string

// Format constants
const (
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatXLSX     Format = "xlsx"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
)

// AllFormats lists every known format in a stable order.
var AllFormats = []Format{FormatHTML, FormatPDF, FormatDOCX, FormatXLSX, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat converts a raw format string (case-insensitive, common aliases accepted) into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word", "doc":
		return FormatDOCX, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Extension returns the file extension (without dot) used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatHTML, FormatPDF, FormatDOCX, FormatXLSX, FormatJSON, FormatYAML, FormatMarkdown:
		return string(f)
	}
	return "bin"
}

// Framework is a compliance framework a deliverable must address
type Framework string

// Framework constants
const (
	FrameworkGDPR     Framework = "gdpr"
	FrameworkSOX      Framework = "sox"
	FrameworkHIPAA    Framework = "hipaa"
	FrameworkCCPA     Framework = "ccpa"
	FrameworkPCIDSS   Framework = "pci_dss"
	FrameworkISO27001 Framework = "iso_27001"
	FrameworkNIST     Framework = "nist"
	FrameworkSOC2     Framework = "soc2"
	FrameworkFERPA    Framework = "ferpa"
	FrameworkGLBA     Framework = "glba"
	FrameworkPIPEDA   Framework = "pipeda"
	FrameworkLGPD     Framework = "lgpd"
)

// AllFrameworks lists every supported framework in a stable order.
var AllFrameworks = []Framework{
	FrameworkGDPR, FrameworkSOX, FrameworkHIPAA, FrameworkCCPA, FrameworkPCIDSS, FrameworkISO27001,
	FrameworkNIST, FrameworkSOC2, FrameworkFERPA, FrameworkGLBA, FrameworkPIPEDA, FrameworkLGPD,
}

// ParseFramework normalizes names such as "PCI-DSS" or "ISO 27001" into a Framework.
func ParseFramework(s string) (Framework, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, fw := range AllFrameworks {
		if Framework(norm) == fw {
			return fw, nil
		}
	}
	switch norm {
	case "iso27001":
		return FrameworkISO27001, nil
	case "pcidss", "pci":
		return FrameworkPCIDSS, nil
	case "soc_2":
		return FrameworkSOC2, nil
	}
	return "", fmt.Errorf("unknown framework %q", s)
}

// DisplayName returns the conventional written form, e.g. "PCI DSS" or "ISO 27001".
func (f Framework) DisplayName() string {
	switch f {
	case FrameworkGDPR, FrameworkSOX, FrameworkHIPAA, FrameworkCCPA, FrameworkNIST,
		FrameworkFERPA, FrameworkGLBA, FrameworkPIPEDA, FrameworkLGPD:
		return strings.ToUpper(string(f))
	case FrameworkPCIDSS:
		return "PCI DSS"
	case FrameworkISO27001:
		return "ISO 27001"
	case FrameworkSOC2:
		return "SOC 2"
	}
	return string(f)
}

// DocumentKind identifies the kind of deliverable
type DocumentKind string

// Compliance document kinds
const (
	KindPrivacyPolicy       DocumentKind = "privacy_policy"
	KindPrivacyNotice       DocumentKind = "privacy_notice"
	KindROPA                DocumentKind = "ropa"
	KindDPIA                DocumentKind = "dpia"
	KindDSARWorkflow        DocumentKind = "dsar_workflow"
	KindCookiePolicy        DocumentKind = "cookie_policy"
	KindDPATemplate         DocumentKind = "dpa_template"
	KindBreachResponse      DocumentKind = "breach_response"
	KindVendorAssessment    DocumentKind = "vendor_assessment"
	KindComplianceChecklist DocumentKind = "compliance_checklist"
	KindTrainingMaterials   DocumentKind = "training_materials"
	KindAuditReport         DocumentKind = "audit_report"
)

// Marketing document kinds
const (
	KindBrief         DocumentKind = "brief"
	KindSchema        DocumentKind = "schema"
	KindChecklist     DocumentKind = "checklist"
	KindGuide         DocumentKind = "guide"
	KindCalendar      DocumentKind = "calendar"
	KindMatrix        DocumentKind = "matrix"
	KindSpecification DocumentKind = "specification"
	KindDashboard     DocumentKind = "dashboard"
	KindPlaybook      DocumentKind = "playbook"
)

// ParseDocumentKind converts a raw kind string into a DocumentKind.
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindPrivacyPolicy, KindPrivacyNotice, KindROPA, KindDPIA, KindDSARWorkflow, KindCookiePolicy,
		KindDPATemplate, KindBreachResponse, KindVendorAssessment, KindComplianceChecklist,
		KindTrainingMaterials, KindAuditReport,
		KindBrief, KindSchema, KindChecklist, KindGuide, KindCalendar, KindMatrix, KindSpecification,
		KindDashboard, KindPlaybook:
		return k, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// Family returns the document family a kind belongs to.
func (k DocumentKind) Family() DocumentFamily {
	switch k {
	case KindPrivacyPolicy, KindPrivacyNotice, KindROPA, KindDPIA, KindDSARWorkflow, KindCookiePolicy,
		KindDPATemplate, KindBreachResponse, KindVendorAssessment, KindComplianceChecklist,
		KindTrainingMaterials, KindAuditReport:
		return FamilyCompliance
	case KindBrief, KindSchema, KindChecklist, KindGuide, KindCalendar, KindMatrix, KindSpecification,
		KindDashboard, KindPlaybook:
		return FamilyMarketing
	}
	return ""
}

// Priority of a deliverable or action item
type Priority string

// Priority constants
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities, lower is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// ParsePriority normalizes a priority, mapping unknown values to medium.
func ParsePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p
	}
	return PriorityMedium
}

// Complexity of a deliverable or project
type Complexity string

// Complexity constants
const (
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

// ParseComplexity normalizes a complexity, mapping unknown values to medium.
func ParseComplexity(s string) Complexity {
	switch c := Complexity(strings.ToLower(strings.TrimSpace(s))); c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh, ComplexityVeryHigh:
		return c
	}
	return ComplexityMedium
}

// Severity of a validation issue or cross-document conflict
type Severity string

// Severity constants
const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes a severity, mapping unknown values to minor.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return sev
	}
	return SeverityMinor
}

// ProjectType describes the overall shape of a project
type ProjectType string

// ProjectType constants
const (
	ProjectPrivacyPolicyPack    ProjectType = "privacy_policy_pack"
	ProjectComplianceAssessment ProjectType = "compliance_assessment"
	ProjectAuditPreparation     ProjectType = "audit_preparation"
	ProjectRiskAnalysis         ProjectType = "risk_analysis"
	ProjectPolicyReview         ProjectType = "policy_review"
	ProjectImplementationPlan   ProjectType = "implementation_plan"
	ProjectMultiDocumentPack    ProjectType = "multi_document_pack"
)

// ParseProjectType converts a raw string into a ProjectType, defaulting to a compliance assessment.
func ParseProjectType(s string) ProjectType {
	switch p := ProjectType(strings.ToLower(strings.TrimSpace(s))); p {
	case ProjectPrivacyPolicyPack, ProjectComplianceAssessment, ProjectAuditPreparation, ProjectRiskAnalysis,
		ProjectPolicyReview, ProjectImplementationPlan, ProjectMultiDocumentPack:
		return p
	}
	return ProjectComplianceAssessment
}

// RunStatus is the status of a whole run
type RunStatus string

// RunStatus constants
const (
	RunInitiated RunStatus = "initiated"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partially_completed"
	RunFailed    RunStatus = "failed"
)

// ValidationStatus summarizes cross-document validation
type ValidationStatus string

// ValidationStatus constants
const (
	ValidationNotValidated ValidationStatus = "not_validated"
	ValidationPassed       ValidationStatus = "passed"
	ValidationPartial      ValidationStatus = "partial"
	ValidationFailed       ValidationStatus = "failed"
)

// PassStatus records whether a validation pass ran
type PassStatus string

// PassStatus constants
const (
	PassCompleted PassStatus = "completed"
	PassSkipped   PassStatus = "skipped"
	PassError     PassStatus = "error"
)
