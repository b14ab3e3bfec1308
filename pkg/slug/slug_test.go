package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "Go za pocetnike",
			expected: "go-za-pocetnike",
		},
		{
			name:     "special characters stripped",
			input:    "Hello   World!",
			expected: "hello-world",
		},
		{
			name:     "bosnian letters transliterated",
			input:    "Matematika Š Č",
			expected: "matematika-s-c",
		},
		{
			name:     "all transliterations",
			input:    "čćđšž",
			expected: "ccdsz",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  Napredni Go  ",
			expected: "napredni-go",
		},
		{
			name:     "punctuation collapses to single hyphen",
			input:    "Go: Web & API",
			expected: "go-web-api",
		},
		{
			name:     "already a slug",
			input:    "napredni-go",
			expected: "napredni-go",
		},
		{
			name:     "single word",
			input:    "Programiranje",
			expected: "programiranje",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}
