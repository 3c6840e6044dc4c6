package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
	"github.com/WeBuildYourAi/compliance-agent/internal/prompts"
	"github.com/WeBuildYourAi/compliance-agent/internal/scheduler"
	"github.com/WeBuildYourAi/compliance-agent/internal/schemas"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Project is the shared, read-only context every generation call sees
type Project struct {
	Prompt          string
	Family          types.DocumentFamily
	Frameworks      []types.Framework
	SuccessCriteria []string
	UserAnswers     map[string]any
}

// ProjectFromState snapshots the shared project context of a run.
func ProjectFromState(st *state.RunState) Project {
	st.Init()
	return Project{
		Prompt:          st.Request.Prompt,
		Family:          st.Family,
		Frameworks:      append([]types.Framework(nil), st.Frameworks()...),
		SuccessCriteria: append([]string(nil), st.Request.SuccessCriteria...),
		UserAnswers:     st.Request.UserAnswers,
	}
}

// Generator produces document content through an LLM client. Safe for concurrent use.
type Generator struct {
	client  llm.Client
	project Project
	tier    llm.ModelTier
}

// NewGenerator creates a Generator. Documents are written with the advanced tier.
func NewGenerator(client llm.Client, project Project) *Generator {
	return &Generator{client: client, project: project, tier: llm.TierAdvanced}
}

// WithTier returns a copy of g using tier.
func (g *Generator) WithTier(tier llm.ModelTier) *Generator {
	c := *g
	c.tier = tier
	return &c
}

// Generate implements scheduler.Generator.
func (g *Generator) Generate(ctx context.Context, task scheduler.Task) (*types.Content, error) {
	id := task.Item.ID
	if g.client == nil {
		return nil, &GenerationError{ItemID: id, Message: "no LLM client configured"}
	}

	prompt, err := BuildPrompt(g.project, task)
	if err != nil {
		return nil, &GenerationError{ItemID: id, Message: "failed to build prompt", Cause: err}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return nil, &GenerationError{ItemID: id, Message: "LLM call failed", Cause: err}
	}

	content, err := ParseContent(id, raw)
	if err != nil {
		return nil, err
	}
	fillMetadata(content, task.Item)
	return content, nil
}

// BuildPrompt renders the generation prompt for one task.
func BuildPrompt(project Project, task scheduler.Task) (string, error) {
	item := task.Item
	key := "compliance_document"
	if project.Family == types.FamilyMarketing {
		key = "marketing_document"
	}

	audience := item.TargetAudience
	if audience == "" {
		audience = "general stakeholders"
	}
	description := item.Description
	if description == "" {
		description = "(none provided)"
	}

	return prompts.Render(prompts.GenerationFile, key, map[string]string{
		"ID":           item.ID,
		"Title":        item.Title,
		"Kind":         string(item.Kind),
		"Audience":     audience,
		"Frameworks":   frameworkList(itemFrameworks(project, item)),
		"Format":       string(item.Format),
		"Priority":     string(item.Priority),
		"Complexity":   string(item.Complexity),
		"Description":  description,
		"Requirements": bulletList(item.QualityRequirements, "- none specified"),
		"Prompt":       project.Prompt,
		"Context":      buildContext(project, task),
	})
}

func itemFrameworks(project Project, item types.WorkItem) []types.Framework {
	if len(item.Frameworks) > 0 {
		return item.Frameworks
	}
	return project.Frameworks
}

// buildContext assembles upstream summaries, the execution plan, and prior user input.
func buildContext(project Project, task scheduler.Task) string {
	var sb strings.Builder

	if len(task.Upstream) == 0 {
		sb.WriteString("Upstream documents: none.\n")
	} else {
		sb.WriteString("Upstream documents already produced:\n")
		for _, up := range task.Upstream {
			fmt.Fprintf(&sb, "- [%s] %s (%s): %s\n", up.ID, up.Title, up.Kind, up.Summary)
		}
	}

	if plan := task.Item.Plan; plan != nil && len(plan.Sections) > 0 {
		sb.WriteString("\nPlanned outline")
		if plan.Approach != "" {
			fmt.Fprintf(&sb, " (%s)", plan.Approach)
		}
		sb.WriteString(":\n")
		for i, sec := range plan.Sections {
			fmt.Fprintf(&sb, "%d. %s", i+1, sec.Title)
			if sec.Purpose != "" {
				fmt.Fprintf(&sb, ": %s", sec.Purpose)
			}
			sb.WriteString("\n")
		}
		if len(plan.KeyRequirements) > 0 {
			sb.WriteString("Key requirements:\n")
			sb.WriteString(bulletList(plan.KeyRequirements, ""))
			sb.WriteString("\n")
		}
	}

	if len(project.SuccessCriteria) > 0 {
		sb.WriteString("\nProject success criteria:\n")
		sb.WriteString(bulletList(project.SuccessCriteria, ""))
		sb.WriteString("\n")
	}

	if len(project.UserAnswers) > 0 {
		keys := make([]string, 0, len(project.UserAnswers))
		for k := range project.UserAnswers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\nAnswers previously given by the user:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %v\n", k, project.UserAnswers[k])
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// wireContent decodes rows whose cells may be numbers or booleans.
type wireContent struct {
	types.Content
	Rows []map[string]any `json:"rows,omitempty"`
}

// ParseContent turns a raw model response into Content. Error-shaped responses become a
// GenerationError; responses that do not match the content schema become a ContentError.
func ParseContent(itemID, raw string) (*types.Content, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &GenerationError{ItemID: itemID, Message: "empty response", Raw: raw}
	}

	if msg, ok := llm.ErrorPayload(cleaned); ok {
		return nil, &GenerationError{ItemID: itemID, Message: "model returned an error: " + msg, Raw: raw}
	}

	if err := schemas.Validate(schemas.Content, cleaned); err != nil {
		msg := "response does not match the content schema"
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			msg += ": " + ve.Summary(3)
		}
		return nil, &ContentError{ItemID: itemID, Message: msg, Raw: raw, Cause: err}
	}

	var wire wireContent
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, &ContentError{ItemID: itemID, Message: "failed to decode content", Raw: raw, Cause: err}
	}

	content := wire.Content
	content.Rows = stringRows(wire.Rows)
	content.Raw = cleaned
	return &content, nil
}

func stringRows(rows []map[string]any) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		r := make(map[string]string, len(row))
		for k, v := range row {
			switch val := v.(type) {
			case nil:
				r[k] = ""
			case string:
				r[k] = val
			default:
				r[k] = fmt.Sprint(val)
			}
		}
		out = append(out, r)
	}
	return out
}

// fillMetadata defaults metadata fields the model left blank from the work item.
func fillMetadata(c *types.Content, item types.WorkItem) {
	if c.Metadata.Title == "" {
		c.Metadata.Title = item.Title
	}
	if c.Metadata.DocumentKind == "" {
		c.Metadata.DocumentKind = string(item.Kind)
	}
	if c.Metadata.TargetAudience == "" {
		c.Metadata.TargetAudience = item.TargetAudience
	}
	if c.Metadata.Version == "" {
		c.Metadata.Version = "1.0"
	}
	if len(c.Metadata.Frameworks) == 0 {
		for _, f := range item.Frameworks {
			c.Metadata.Frameworks = append(c.Metadata.Frameworks, string(f))
		}
	}
}

func frameworkList(fws []types.Framework) string {
	if len(fws) == 0 {
		return "none specified"
	}
	names := make([]string, len(fws))
	for i, f := range fws {
		names[i] = f.DisplayName()
	}
	return strings.Join(names, ", ")
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
