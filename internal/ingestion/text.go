package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	innerSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	blankLineRunRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes free text from a request (the prompt, blueprint descriptions):
// LF line endings, no control or zero-width characters, collapsed runs of spaces
// outside leading indentation, and at most one blank line between paragraphs.
func CleanText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff':
			return -1
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		body := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(body)]
		lines[i] = indent + innerSpaceRe.ReplaceAllString(body, " ")
	}

	out := blankLineRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

// CleanList cleans each entry and drops the empty ones.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := CleanText(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}
