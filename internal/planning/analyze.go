package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/prompts"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// DefaultDocumentTitle is the single deliverable planned when analysis is impossible.
const DefaultDocumentTitle = "Compliance Assessment"

// Options configures the planning stages
type Options struct {
	DefaultFrameworks []types.Framework
	ParallelThreshold int
	DetailedPlans     bool
	MaxConcurrency    int
	Logger            *logging.Logger
}

// Planner runs project analysis and work item planning
type Planner struct {
	client llm.Client
	opts   Options
	log    *logging.Logger
}

// NewPlanner creates a Planner. client may be nil; model-backed steps then use their fallbacks.
func NewPlanner(client llm.Client, opts Options) *Planner {
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = 3
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if len(opts.DefaultFrameworks) == 0 {
		opts.DefaultFrameworks = []types.Framework{types.FrameworkSOC2, types.FrameworkISO27001}
	}
	return &Planner{client: client, opts: opts, log: logging.OrNop(opts.Logger)}
}

// Analyze determines project type, frameworks, complexity and the required documents,
// storing the result on st.Analysis. Returned errors of type *InputError are fatal.
func (p *Planner) Analyze(ctx context.Context, st *state.RunState) error {
	st.Init()
	req := st.Request
	if strings.TrimSpace(req.Prompt) == "" {
		return &InputError{Message: "project prompt is empty"}
	}

	if len(req.Blueprint) > 0 {
		st.Analysis = p.analyzeBlueprint(st)
		p.log.Info("analysis from blueprint", "documents", len(st.Analysis.RequiredDocuments),
			"frameworks", st.Analysis.Frameworks, "source", st.Analysis.FrameworkSource)
		return nil
	}

	if st.Family == types.FamilyMarketing {
		return &InputError{Message: "marketing projects require a deliverable blueprint"}
	}

	analysis, err := p.analyzeWithModel(ctx, req)
	if err != nil {
		p.log.Warn("project analysis failed, using default assessment", "error", err)
		st.AddMessage("analyze", state.LevelWarn, fmt.Sprintf("Project analysis unavailable (%v); planning a default assessment.", err))
		analysis = p.fallbackAnalysis(req)
	}
	analysis.ParallelExecution = len(analysis.RequiredDocuments) > p.opts.ParallelThreshold
	st.Analysis = analysis
	return nil
}

func (p *Planner) analyzeBlueprint(st *state.RunState) *types.ProjectAnalysis {
	req := st.Request
	family := st.Family

	analysis := &types.ProjectAnalysis{
		ProjectType:     types.ProjectMultiDocumentPack,
		Complexity:      types.ComplexityVeryHigh,
		BlueprintDriven: true,
	}
	if family == types.FamilyCompliance {
		analysis.Frameworks, analysis.FrameworkSource = ResolveFrameworks(req, p.opts.DefaultFrameworks, p.log)
	}

	for _, entry := range req.Blueprint {
		format, err := types.ParseFormat(entry.Format)
		if err != nil {
			format = types.FormatHTML
		}
		priority := types.PriorityCritical
		if entry.Priority != "" {
			priority = types.ParsePriority(entry.Priority)
		}
		complexity := types.ComplexityHigh
		if entry.Complexity != "" {
			complexity = types.ParseComplexity(entry.Complexity)
		}
		analysis.RequiredDocuments = append(analysis.RequiredDocuments, types.RequiredDocument{
			Ref:         entry.ID,
			Title:       entry.Title,
			Kind:        ResolveKind(entry.Kind, entry.Title, family),
			Format:      format,
			Priority:    priority,
			Complexity:  complexity,
			Description: entry.Description,
			Audience:    AudienceFor(entry.Description, family),
			Quality:     entry.QualityRequirements,
			DependsOn:   entry.DependsOn,
		})
	}
	analysis.ParallelExecution = len(analysis.RequiredDocuments) > p.opts.ParallelThreshold
	return analysis
}

// modelAnalysis is the structure returned by the analysis call
type modelAnalysis struct {
	ProjectType       string   `json:"project_type"`
	Complexity        string   `json:"complexity"`
	Frameworks        []string `json:"frameworks"`
	TargetAudience    string   `json:"target_audience"`
	RequiredDocuments []struct {
		Title       string   `json:"title"`
		Kind        string   `json:"kind"`
		Format      string   `json:"format"`
		Priority    string   `json:"priority"`
		Description string   `json:"description"`
		DependsOn   []string `json:"depends_on"`
	} `json:"required_documents"`
}

func (p *Planner) analyzeWithModel(ctx context.Context, req *types.ProjectRequest) (*types.ProjectAnalysis, error) {
	if p.client == nil {
		return nil, &AnalysisError{Message: "no LLM client configured"}
	}

	tmpl, err := prompts.Get(prompts.AnalysisFile, "analyze_project")
	if err != nil {
		return nil, &AnalysisError{Message: "failed to load prompt", Cause: err}
	}
	prompt := llm.BuildExtractionPrompt(llm.ProjectAnalysisSchema().WithDescription(tmpl), analysisInput(req))

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &AnalysisError{Message: "LLM call failed", Cause: err}
	}
	if msg, ok := llm.ErrorPayload(raw); ok {
		return nil, &AnalysisError{Message: "model returned an error: " + msg}
	}
	if err := schemas.Validate(schemas.ProjectAnalysis, raw); err != nil {
		return nil, &AnalysisError{Message: "unexpected analysis structure", Cause: err}
	}

	var m modelAnalysis
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, &AnalysisError{Message: "failed to decode analysis", Cause: err}
	}

	analysis := &types.ProjectAnalysis{
		ProjectType:    types.ParseProjectType(m.ProjectType),
		Complexity:     types.ParseComplexity(m.Complexity),
		TargetAudience: m.TargetAudience,
	}
	analysis.Frameworks = ParseFrameworkList(m.Frameworks, p.log)
	analysis.FrameworkSource = SourceAnalysis
	if len(analysis.Frameworks) == 0 {
		analysis.Frameworks, analysis.FrameworkSource = ResolveFrameworks(req, p.opts.DefaultFrameworks, p.log)
	}

	for _, doc := range m.RequiredDocuments {
		format, err := types.ParseFormat(doc.Format)
		if err != nil {
			format = types.FormatHTML
		}
		audience := m.TargetAudience
		if audience == "" {
			audience = AudienceFor(doc.Description, types.FamilyCompliance)
		}
		analysis.RequiredDocuments = append(analysis.RequiredDocuments, types.RequiredDocument{
			Title:       doc.Title,
			Kind:        ResolveKind(doc.Kind, doc.Title, types.FamilyCompliance),
			Format:      format,
			Priority:    types.ParsePriority(doc.Priority),
			Complexity:  analysis.Complexity,
			Description: doc.Description,
			Audience:    audience,
			DependsOn:   doc.DependsOn,
		})
	}
	return analysis, nil
}

// fallbackAnalysis plans a single assessment checklist when the model cannot help.
func (p *Planner) fallbackAnalysis(req *types.ProjectRequest) *types.ProjectAnalysis {
	fws, source := ResolveFrameworks(req, p.opts.DefaultFrameworks, p.log)
	return &types.ProjectAnalysis{
		ProjectType:     types.ProjectComplianceAssessment,
		Frameworks:      fws,
		FrameworkSource: source,
		Complexity:      types.ComplexityMedium,
		Fallback:        true,
		RequiredDocuments: []types.RequiredDocument{{
			Title:       DefaultDocumentTitle,
			Kind:        types.KindComplianceChecklist,
			Format:      types.FormatHTML,
			Priority:    types.PriorityHigh,
			Complexity:  types.ComplexityMedium,
			Description: "Baseline assessment of the organization against the applicable frameworks.",
			Audience:    "auditors",
		}},
	}
}

// analysisInput renders the request context handed to the analysis call.
func analysisInput(req *types.ProjectRequest) string {
	var sb strings.Builder
	sb.WriteString("User request:\n")
	sb.WriteString(req.Prompt)
	sb.WriteString("\n")

	writeJSON := func(label string, v any) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n%s\n", label, data)
	}
	if req.Brief != nil {
		writeJSON("Project brief", req.Brief)
	}
	if req.ProjectPlan != nil {
		writeJSON("Project plan", req.ProjectPlan)
	}
	if len(req.UserAnswers) > 0 {
		writeJSON("User answers", req.UserAnswers)
	}
	if len(req.UserQuestions) > 0 {
		writeJSON("Questions asked", req.UserQuestions)
	}
	if len(req.SuccessCriteria) > 0 {
		writeJSON("Success criteria", req.SuccessCriteria)
	}
	return strings.TrimRight(sb.String(), "\n")
}
