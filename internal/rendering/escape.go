package rendering

import "strings"

// EscapeMarkdown escapes characters with inline meaning in Markdown: \ ` * _ [ ] < > | #
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '<', '>', '|', '#':
			result.WriteByte('\\')
			result.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeCell escapes text for a Markdown table cell, folding line breaks.
func EscapeCell(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(EscapeMarkdown(text), "\n", "<br>")
}

// Slug converts a title into a lowercase file-name fragment.
func Slug(title string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			underscore = false
		case !underscore && sb.Len() > 0:
			sb.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "_")
	if len(s) > 60 {
		s = strings.TrimSuffix(s[:60], "_")
	}
	if s == "" {
		return "document"
	}
	return s
}
