package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	tests := []struct {
		file string
		key  string
		task string
	}{
		{GenerationFile, "compliance_document", "TASK: generate_document"},
		{GenerationFile, "marketing_document", "TASK: generate_document"},
		{AnalysisFile, "analyze_project", "TASK: analyze_project"},
		{AnalysisFile, "execution_plan", "TASK: plan_document"},
		{ValidationFile, "validate_document", "TASK: validate_document"},
		{ValidationFile, "cross_validate", "TASK: cross_validate"},
		{ValidationFile, "requirements_validate", "TASK: requirements_validate"},
	}
	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.key, func(t *testing.T) {
			p, err := Get(tt.file, tt.key)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(p, tt.task+"\n"), "prompt must start with its task line")
		})
	}
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("missing.json", "x")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get(GenerationFile, "nope")
	assert.ErrorContains(t, err, "not found")

	assert.Panics(t, func() { MustGet(GenerationFile, "nope") })
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, {{.Name}}! {{.Other}}", map[string]string{"Name": "DPO"})
	assert.Equal(t, "Hello DPO, DPO! {{.Other}}", out)
}

func TestRender(t *testing.T) {
	tmpl := MustGet(GenerationFile, "compliance_document")
	data := make(map[string]string)
	for _, name := range Placeholders(tmpl) {
		data[name] = "<" + name + ">"
	}

	out, err := Render(GenerationFile, "compliance_document", data)
	require.NoError(t, err)
	assert.Contains(t, out, "<Title>")
	assert.NotContains(t, out, "{{.")

	delete(data, "Title")
	_, err = Render(GenerationFile, "compliance_document", data)
	assert.ErrorContains(t, err, "missing values for Title")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}}"))
	assert.Empty(t, Placeholders("none"))
}

func TestListAndCache(t *testing.T) {
	ClearCache()
	keys, err := List(ValidationFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"cross_validate", "requirements_validate", "validate_document"}, keys)

	cacheMu.RLock()
	_, cached := cache[ValidationFile]
	cacheMu.RUnlock()
	assert.True(t, cached)
}
