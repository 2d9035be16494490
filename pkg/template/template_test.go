package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_ReplacesAllOccurrences(t *testing.T) {
	values := map[string]string{
		"customerName": "Alice",
		"customerCode": "4711",
	}

	result := Render("Hi {{customerName}}, your code is {{customerCode}} ({{customerCode}})", values)
	assert.Equal(t, "Hi Alice, your code is 4711 (4711)", result)
}

func TestRender_UnknownKeysLeftVerbatim(t *testing.T) {
	result := Render("Hi {{customerName}}, see you at {{venue}}", map[string]string{
		"customerName": "Alice",
	})
	assert.Equal(t, "Hi Alice, see you at {{venue}}", result)
}

func TestRender_NoPlaceholdersIsIdentity(t *testing.T) {
	input := "plain text, no substitutions"
	assert.Equal(t, input, Render(input, map[string]string{"key": "value"}))
}

func TestRender_EmptyValues(t *testing.T) {
	input := "your code is {{customerCode}}"
	assert.Equal(t, input, Render(input, nil))
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple markup",
			input:    "<p>Hello <b>world</b></p>",
			expected: "Hello world",
		},
		{
			name:     "plain text is a no-op",
			input:    "Hello world",
			expected: "Hello world",
		},
		{
			name:     "dangling open tag",
			input:    "Hello <br",
			expected: "Hello ",
		},
		{
			name:     "tags with attributes",
			input:    `<a href="https://example.com">link</a> text`,
			expected: "link text",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripTags(tc.input))
		})
	}
}

func TestRenderThenStrip_SMSBody(t *testing.T) {
	body := Render("<p>Hi {{customerName}}</p><br>Code: {{customerCode}}", map[string]string{
		"customerName": "Alice",
		"customerCode": "4711",
	})
	assert.Equal(t, "Hi AliceCode: 4711", StripTags(body))
}
