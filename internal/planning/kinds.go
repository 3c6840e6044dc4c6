package planning

import (
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

var complianceTitleKinds = []struct {
	kind     types.DocumentKind
	keywords []string
}{
	{types.KindPrivacyPolicy, []string{"privacy policy", "data protection policy"}},
	{types.KindPrivacyNotice, []string{"privacy notice", "privacy statement"}},
	{types.KindROPA, []string{"ropa", "records of processing"}},
	{types.KindDPIA, []string{"dpia", "data protection impact"}},
	{types.KindDSARWorkflow, []string{"dsar", "data subject access"}},
	{types.KindCookiePolicy, []string{"cookie"}},
	{types.KindDPATemplate, []string{"dpa", "data processing agreement"}},
	{types.KindBreachResponse, []string{"breach"}},
	{types.KindVendorAssessment, []string{"vendor", "processor"}},
	{types.KindTrainingMaterials, []string{"training"}},
	{types.KindAuditReport, []string{"audit report"}},
	{types.KindComplianceChecklist, []string{"audit", "compliance checklist", "checklist"}},
}

var marketingTitleKinds = []struct {
	kind     types.DocumentKind
	keywords []string
}{
	{types.KindBrief, []string{"brief"}},
	{types.KindSchema, []string{"schema", "taxonomy"}},
	{types.KindChecklist, []string{"checklist"}},
	{types.KindCalendar, []string{"calendar", "schedule"}},
	{types.KindMatrix, []string{"matrix"}},
	{types.KindSpecification, []string{"specification", "spec"}},
	{types.KindDashboard, []string{"dashboard", "kpi"}},
	{types.KindPlaybook, []string{"playbook"}},
	{types.KindGuide, []string{"guide", "guidelines"}},
}

// KindForTitle maps a deliverable title to a document kind of the family.
// Compliance titles default to a compliance checklist, marketing titles to a guide.
func KindForTitle(title string, family types.DocumentFamily) types.DocumentKind {
	t := " " + strings.ToLower(title) + " "
	table, fallback := complianceTitleKinds, types.KindComplianceChecklist
	if family == types.FamilyMarketing {
		table, fallback = marketingTitleKinds, types.KindGuide
	}
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(t, kw) {
				return entry.kind
			}
		}
	}
	return fallback
}

// ResolveKind prefers an explicit kind of the right family and falls back to the title mapping.
func ResolveKind(raw, title string, family types.DocumentFamily) types.DocumentKind {
	if raw != "" {
		if kind, err := types.ParseDocumentKind(raw); err == nil && kind.Family() == family {
			return kind
		}
	}
	return KindForTitle(title, family)
}

// AudienceFor extracts the target audience from a deliverable description.
func AudienceFor(description string, family types.DocumentFamily) string {
	d := strings.ToLower(description)
	if family == types.FamilyMarketing {
		switch {
		case containsAny(d, "executive", "leadership", "c-suite"):
			return "executive"
		case containsAny(d, "sales"):
			return "sales"
		case containsAny(d, "developer", "engineering", "technical"):
			return "technical"
		case containsAny(d, "customer", "prospect", "buyer"):
			return "customers"
		}
		return "marketing team"
	}

	switch {
	case containsAny(d, "legal", "counsel"):
		return "legal"
	case containsAny(d, "technical", "engineering"):
		return "technical"
	case containsAny(d, "executive", "c-suite"):
		return "executive"
	case containsAny(d, "customer", "public"):
		return "end_users"
	case containsAny(d, "auditor", "compliance"):
		return "auditors"
	}
	return "legal"
}
