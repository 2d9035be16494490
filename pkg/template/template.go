// Package template provides placeholder substitution for workflow message templates.
package template

import (
	"regexp"
	"strings"
)

// tagPattern matches HTML-ish markup non-greedily, including a dangling open
// tag at the end of the input.
var tagPattern = regexp.MustCompile(`</?[^>]+(>|$)`)

// Render replaces every occurrence of {{key}} for each key in values.
// Placeholders with no matching key are left verbatim; rendering a template
// with no matching placeholders returns the input unchanged.
func Render(templateStr string, values map[string]string) string {
	out := templateStr
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	return out
}

// StripTags removes <...> markup from a rendered body, for channels that only
// carry plain text. Stripping plain text is a no-op.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
