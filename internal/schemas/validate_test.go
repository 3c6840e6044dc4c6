package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemasCompile(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			_, err := load(name)
			require.NoError(t, err)
		})
	}
}

func TestValidate_Content(t *testing.T) {
	valid := `{
		"metadata": {"title": "Privacy Policy"},
		"executive_summary": "How we process personal data.",
		"sections": [{"title": "Scope", "content": "All customers", "subsections": [{"title": "EU", "content": "GDPR"}]}],
		"rows": [{"activity": "Billing", "retention": 7}]
	}`
	assert.NoError(t, Validate(Content, valid))

	tests := []struct {
		name  string
		input string
		field string
	}{
		{"missing sections", `{"executive_summary": "x"}`, "(root)"},
		{"empty sections", `{"executive_summary": "x", "sections": []}`, "sections"},
		{"section without title", `{"executive_summary": "x", "sections": [{"content": "y"}]}`, "sections.0"},
		{"wrong type", `{"executive_summary": 3, "sections": [{"title": "a", "content": "b"}]}`, "executive_summary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Content, tt.input)
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, Content, ve.Schema)
			found := false
			for _, fe := range ve.Errors {
				if fe.Field == tt.field || len(fe.Field) >= len(tt.field) && fe.Field[:len(tt.field)] == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected an error on %s, got %v", tt.field, ve.Errors)
		})
	}
}

func TestValidate_ItemValidation(t *testing.T) {
	assert.NoError(t, Validate(ItemValidation, `{"overall_pass": true, "quality_score": 0.9, "issues_found": [{"severity": "minor", "description": "typo"}]}`))
	assert.Error(t, Validate(ItemValidation, `{"overall_pass": "yes", "quality_score": 0.9}`))
	assert.Error(t, Validate(ItemValidation, `{"overall_pass": true, "quality_score": 0.9, "issues_found": [{"severity": "fatal", "description": "x"}]}`))
	assert.Error(t, Validate(ItemValidation, `{"overall_pass": true, "quality_score": 92}`))
}

func TestValidate_UnknownSchemaAndBadJSON(t *testing.T) {
	err := Validate("nope", `{}`)
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "unknown schema")

	err = Validate(Content, `{not json`)
	assert.ErrorContains(t, err, "failed to parse document")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`
	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{"name": 1}`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "validation failed")

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
}

func TestValidationError_Summary(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{"a", "bad"}, {"b", "worse"}, {"c", "worst"}}}
	assert.Equal(t, "a: bad; b: worse; and 1 more", ve.Summary(2))
	assert.Equal(t, "a: bad; b: worse; c: worst", ve.Summary(5))
}
