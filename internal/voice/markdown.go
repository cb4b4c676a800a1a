package voice

import (
	"regexp"
	"strings"
)

var markdownRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "${1}"},
	{regexp.MustCompile(`\*([^*]+)\*`), "${1}"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "${1}"},
	{regexp.MustCompile("```[\\s\\S]*?```"), ""},
	{regexp.MustCompile("`([^`]+)`"), "${1}"},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`\n\s*\n\s*\n`), "\n\n"},
}

// StripMarkdown reduces markdown to text suitable for reading aloud or pasting:
// headings, emphasis, links, code and list markers are removed and runs of blank
// lines are collapsed.
func StripMarkdown(text string) string {
	for _, rule := range markdownRules {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}
