package types

// Issue is a single problem found by individual validation
type Issue struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
}

// ItemValidation is the result of validating one work item against its own requirements
type ItemValidation struct {
	Passed          bool     `json:"overall_pass"`
	QualityScore    float64  `json:"quality_score"`
	Issues          []Issue  `json:"issues_found,omitempty"`
	CriteriaMet     []string `json:"criteria_met,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// HasCritical reports whether any issue is critical.
func (v *ItemValidation) HasCritical() bool {
	if v == nil {
		return false
	}
	for _, is := range v.Issues {
		if is.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Conflict is an inconsistency between two or more work items
type Conflict struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	ItemIDs     []string `json:"documents_affected"`
	Description string   `json:"description"`
	Resolution  string   `json:"resolution,omitempty"`
	Resolved    bool     `json:"resolved"`
}

// CriterionCoverage records how well one success criterion is covered
type CriterionCoverage struct {
	Criterion string   `json:"criterion"`
	Covered   bool     `json:"covered"`
	ItemIDs   []string `json:"documents,omitempty"`
}

// CrossValidation is the aggregate cross-document consistency judgment
type CrossValidation struct {
	Status           PassStatus          `json:"status"`
	Consistent       bool                `json:"overall_consistency"`
	ConsistencyScore float64             `json:"consistency_score"`
	Conflicts        []Conflict          `json:"inconsistencies_found,omitempty"`
	CriteriaCoverage []CriterionCoverage `json:"success_criteria_coverage,omitempty"`
	ItemsCompared    int                 `json:"documents_compared"`
	Reason           string              `json:"reason,omitempty"`
}

// HasUnresolvedCritical reports whether any conflict is critical and unresolved.
func (c *CrossValidation) HasUnresolvedCritical() bool {
	if c == nil {
		return false
	}
	for _, cf := range c.Conflicts {
		if cf.Severity == SeverityCritical && !cf.Resolved {
			return true
		}
	}
	return false
}

// Recommendation is a prioritized follow-up suggested by requirements validation
type Recommendation struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Category string   `json:"category,omitempty"`
}

// RequirementsValidation compares the aggregate results with the project's success criteria
type RequirementsValidation struct {
	Status          PassStatus       `json:"status"`
	Ready           bool             `json:"ready_for_delivery"`
	OverallScore    float64          `json:"overall_score"`
	ValidationRate  float64          `json:"validation_rate"`
	UnmetCriteria   []string         `json:"unmet_criteria,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Fallback        bool             `json:"fallback,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}
