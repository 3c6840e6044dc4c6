package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := DocumentValidationSchema().WithDescription("TASK: validate_document\nCheck the document.")
	prompt := BuildExtractionPrompt(schema, `{"title": "Privacy Policy"}`)

	assert.True(t, strings.HasPrefix(prompt, "TASK: validate_document"))
	assert.Contains(t, prompt, `"overall_pass": boolean (required)`)
	assert.Contains(t, prompt, `"quality_score": number (required) // 0.0 to 1.0`)
	assert.Contains(t, prompt, `{"title": "Privacy Policy"}`)
	assert.Contains(t, prompt, "Return ONLY the JSON object")
	// last field has no trailing comma
	assert.Contains(t, prompt, `"recommendations": []string`+"\n}")
}

func TestSchemas_HaveRequiredFields(t *testing.T) {
	for _, schema := range []ExtractionSchema{
		ProjectAnalysisSchema(),
		ExecutionPlanSchema(),
		DocumentValidationSchema(),
		CrossValidationSchema(),
		RequirementsValidationSchema(),
	} {
		t.Run(schema.Name, func(t *testing.T) {
			required := 0
			for _, f := range schema.Fields {
				assert.NotEmpty(t, f.Name)
				if f.Required {
					required++
				}
			}
			assert.Positive(t, required)
		})
	}
}
