package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// IndividualReport summarizes one individual validation pass
type IndividualReport struct {
	Validated      int      `json:"validated"`
	Passed         int      `json:"passed"`
	RequiresReview []string `json:"requires_review,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	Flagged        []string `json:"flagged,omitempty"`
}

// itemVerdict is the structure returned by the individual review call
type itemVerdict struct {
	OverallPass  bool    `json:"overall_pass"`
	QualityScore float64 `json:"quality_score"`
	Issues       []struct {
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Location    string `json:"location"`
	} `json:"issues_found"`
	CriteriaMet     []string `json:"criteria_met"`
	Strengths       []string `json:"strengths"`
	Recommendations []string `json:"recommendations"`
}

type itemOutcome struct {
	validation *types.ItemValidation
	scan       InjectionScan
}

// ValidateItems reviews every Completed item against its own specification, concurrently.
// A critical issue moves the item to RequiresReview. A failed review leaves the item Completed,
// not passed, with FallbackQualityScore and the error recorded.
func (v *Validator) ValidateItems(ctx context.Context, st *state.RunState) *IndividualReport {
	st.Init()
	items := st.ItemsWithStatus(types.StatusCompleted)
	report := &IndividualReport{}
	if len(items) == 0 {
		return report
	}

	criteria := st.Request.SuccessCriteria
	inputs := make(map[string]string, len(items))
	scans := make(map[string]InjectionScan, len(items))
	for _, item := range items {
		text := contentText(item.Content)
		scans[item.ID] = ScanForInjection(text)
		inputs[item.ID] = itemInput(item, criteria, Neutralize(types.Truncated(text, v.opts.ContentLimit)))
	}

	var mu sync.Mutex
	outcomes := make(map[string]*types.ItemValidation, len(items))

	var g errgroup.Group
	g.SetLimit(v.opts.MaxConcurrency)
	for _, item := range items {
		id, input := item.ID, inputs[item.ID]
		g.Go(func() error {
			result, err := v.reviewItem(ctx, id, input)
			if err != nil {
				v.log.WithItem(id).Warn("individual validation failed", "error", err)
				result = &types.ItemValidation{QualityScore: FallbackQualityScore, Error: err.Error()}
			}
			mu.Lock()
			outcomes[id] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range items {
		result := outcomes[item.ID]
		score := result.QualityScore
		item.Validation = result
		item.QualityScore = &score
		report.Validated++

		if result.Error != "" {
			report.Errors = append(report.Errors, item.ID)
		}
		if result.Passed {
			report.Passed++
		}
		if result.HasCritical() {
			item.Status = types.StatusRequiresReview
			report.RequiresReview = append(report.RequiresReview, item.ID)
		}
		if scan := scans[item.ID]; !scan.Safe {
			report.Flagged = append(report.Flagged, item.ID)
			v.log.WithItem(item.ID).Warn("generated content contains instruction-like text", "matches", scan.Matches)
		}
	}
	return report
}

func (v *Validator) reviewItem(ctx context.Context, itemID, input string) (*types.ItemValidation, error) {
	var verdict itemVerdict
	err := v.ask(ctx, PassIndividual, itemID, "validate_document",
		llm.DocumentValidationSchema(), schemas.ItemValidation, input, llm.TierLite, &verdict)
	if err != nil {
		return nil, err
	}

	result := &types.ItemValidation{
		QualityScore:    fraction(verdict.QualityScore),
		CriteriaMet:     verdict.CriteriaMet,
		Strengths:       verdict.Strengths,
		Recommendations: verdict.Recommendations,
	}
	for _, is := range verdict.Issues {
		result.Issues = append(result.Issues, types.Issue{
			Severity:    types.ParseSeverity(is.Severity),
			Description: is.Description,
			Location:    is.Location,
		})
	}
	// a document with a critical issue never counts as passed
	result.Passed = verdict.OverallPass && !result.HasCritical()
	return result, nil
}

// contentText renders content for review, without the raw model output.
func contentText(c *types.Content) string {
	if c == nil {
		return "{}"
	}
	clean := *c
	clean.Raw = ""
	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func itemInput(item *types.WorkItem, criteria []string, content string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Document id: %s\n", item.ID)
	fmt.Fprintf(&sb, "Title: %s\n", item.Title)
	fmt.Fprintf(&sb, "Kind: %s\n", item.Kind)
	fmt.Fprintf(&sb, "Format: %s\n", item.Format)
	if item.TargetAudience != "" {
		fmt.Fprintf(&sb, "Target audience: %s\n", item.TargetAudience)
	}
	if item.Description != "" {
		fmt.Fprintf(&sb, "Specification: %s\n", item.Description)
	}
	if len(item.Frameworks) > 0 {
		names := make([]string, len(item.Frameworks))
		for i, f := range item.Frameworks {
			names[i] = f.DisplayName()
		}
		fmt.Fprintf(&sb, "Frameworks: %s\n", strings.Join(names, ", "))
	}
	writeList(&sb, "Quality requirements", item.QualityRequirements)
	writeList(&sb, "Project success criteria", criteria)
	sb.WriteString("\n")
	sb.WriteString(Quote("generated document", content))
	return sb.String()
}

func writeList(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for _, v := range values {
		fmt.Fprintf(sb, "- %s\n", v)
	}
}
