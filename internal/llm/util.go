// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock strips markdown code fences and conversational text around a JSON value.
// Models often wrap JSON in ```json ... ``` blocks or add a preamble even when told not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			first := text[:idx]
			if len(first) < 20 && !strings.ContainsAny(first, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if text == "" || text[0] == '{' || text[0] == '[' {
		if obj := extractJSONObject(text); obj != "" {
			return obj
		}
		if arr := extractJSONArray(text); arr != "" {
			return arr
		}
		return text
	}

	// Preamble: take the first balanced value
	objIdx := strings.IndexByte(text, '{')
	arrIdx := strings.IndexByte(text, '[')
	switch {
	case objIdx >= 0 && (arrIdx < 0 || objIdx < arrIdx):
		if obj := extractJSONObject(text[objIdx:]); obj != "" {
			return obj
		}
	case arrIdx >= 0:
		if arr := extractJSONArray(text[arrIdx:]); arr != "" {
			return arr
		}
	}
	return text
}

// extractJSONObject returns the balanced {...} value at the start of s, or "".
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced [...] value at the start of s, or "".
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, closing byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// ErrorPayload reports whether a JSON object response is an error envelope
// such as {"error": "..."} rather than real content, returning the message.
func ErrorPayload(raw string) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", false
	}
	errField, ok := fields["error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(errField, &msg); err == nil {
		if msg == "" {
			return "", false
		}
		return msg, true
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(errField, &nested); err == nil && nested.Message != "" {
		return nested.Message, true
	}
	if string(errField) == "null" || string(errField) == "false" {
		return "", false
	}
	return string(errField), true
}
