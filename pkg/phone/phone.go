// Package phone normalizes recipient phone numbers to an E.164-like form.
package phone

import "strings"

const (
	icelandicPrefix = "354"
	ethiopianPrefix = "251"
)

// Format cleans a raw phone number and, where possible, normalizes it to a
// +<country code><number> form. Numbers already carrying the Icelandic or
// Ethiopian country code get a leading plus; bare local numbers get a country
// code inferred from their length. Anything else is returned cleaned but
// unprefixed, which callers should treat as invalid.
func Format(raw string) string {
	cleaned := clean(raw)

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}

	if strings.HasPrefix(cleaned, icelandicPrefix) || strings.HasPrefix(cleaned, ethiopianPrefix) {
		return "+" + cleaned
	}

	switch len(cleaned) {
	case 7:
		return "+" + icelandicPrefix + cleaned
	case 9:
		// Ambiguous between the two; Icelandic numbers are the common case here.
		return "+" + icelandicPrefix + cleaned
	case 10:
		return "+" + ethiopianPrefix + cleaned
	}

	return cleaned
}

// Valid reports whether a formatted number normalized to an international form.
func Valid(formatted string) bool {
	return strings.HasPrefix(formatted, "+")
}

// clean drops everything except digits and a leading plus.
func clean(raw string) string {
	var b strings.Builder

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}

		if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}

	return b.String()
}
