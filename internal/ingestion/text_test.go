package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"collapse inner spaces", "Line    with   spaces", "Line with spaces"},
		{"keep indentation", "List:\n  - item   one", "List:\n  - item one"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"zero width and control", "Pri\u200bvacy\u0007 Policy\ufeff", "Privacy Policy"},
		{"trailing spaces", "a   \nb\t", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "  # Heading\n\n\n\nBody   text  "
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"a b", "c"}, CleanList([]string{"a   b", "   ", "c"}))
	assert.Empty(t, CleanList(nil))
}
