package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"generic code block", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"code block with language", "```javascript\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"plain JSON", `{"key": "value"}`, `{"key": "value"}`},
		{"preamble before object", "Here is the document:\n{\"title\": \"DPIA\"}", `{"title": "DPIA"}`},
		{"preamble before array", "Items:\n[\"a\", \"b\"]", `["a", "b"]`},
		{"trailing text", "{\"key\": \"value\"}\n\nHope this helps!", `{"key": "value"}`},
		{"escaped quotes", `Result: {"m": "He said \"hi {x}\""}`, `{"m": "He said \"hi {x}\""}`},
		{"not json", "plain prose", "plain prose"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"outer": {"inner": "v"}}`, extractJSONObject(`{"outer": {"inner": "v"}} tail`))
	assert.Equal(t, `{"t": "Hello {name}!"}`, extractJSONObject(`{"t": "Hello {name}!"}`))
	assert.Equal(t, "", extractJSONObject("not json"))
	assert.Equal(t, "", extractJSONObject(`{"unterminated": 1`))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3, 4]]`, extractJSONArray(`[[1, 2], [3, 4]] extra`))
	assert.Equal(t, `[{"id": 1}]`, extractJSONArray(`[{"id": 1}]`))
	assert.Equal(t, "", extractJSONArray(""))
}

func TestErrorPayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		wantErr bool
	}{
		{"string error", `{"error": "quota exceeded"}`, "quota exceeded", true},
		{"nested error", `{"error": {"message": "bad request", "code": 400}}`, "bad request", true},
		{"null error", `{"error": null, "sections": []}`, "", false},
		{"empty error", `{"error": ""}`, "", false},
		{"content", `{"executive_summary": "ok"}`, "", false},
		{"not an object", `["error"]`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, isErr := ErrorPayload(tt.input)
			assert.Equal(t, tt.wantErr, isErr)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
