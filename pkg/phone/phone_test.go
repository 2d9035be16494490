package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already international",
			input:    "+3545551234",
			expected: "+3545551234",
		},
		{
			name:     "icelandic country code without plus",
			input:    "3545551234",
			expected: "+3545551234",
		},
		{
			name:     "ethiopian country code without plus",
			input:    "251911234567",
			expected: "+251911234567",
		},
		{
			name:     "seven digit local defaults to iceland",
			input:    "5551234",
			expected: "+3545551234",
		},
		{
			name:     "formatting noise is stripped",
			input:    " +354 555-1234 ",
			expected: "+3545551234",
		},
		{
			name:     "ten digit local defaults to ethiopia",
			input:    "0911234567",
			expected: "+2510911234567",
		},
		{
			name:     "unclassifiable number stays bare",
			input:    "12345",
			expected: "12345",
		},
		{
			name:     "letters only",
			input:    "not-a-phone",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.input))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("+3545551234"))
	assert.False(t, Valid("5551234"))
	assert.False(t, Valid(""))
}
