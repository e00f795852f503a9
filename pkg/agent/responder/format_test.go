package responder

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
			name:     "strips bold markers",
			input:    "Try a **consistent** bedtime and __calm__ wind-down.",
			expected: "Try a consistent bedtime and calm wind-down.",
		},
		{
			name:     "blank line before numbered list",
			input:    "A few things to try:\n1. Keep a routine\n2. Offer choices",
			expected: "A few things to try:\n\n1. Keep a routine\n2. Offer choices",
		},
		{
			name:     "blank line before bullets but not between them",
			input:    "Options:\n- a support group\n- a parent class",
			expected: "Options:\n\n- a support group\n- a parent class",
		},
		{
			name:     "blank line before transition phrase",
			input:    "First part of the answer.\nIn summary, routines help.",
			expected: "First part of the answer.\n\nIn summary, routines help.",
		},
		{
			name:     "blank line before references",
			input:    "Answer text.\nReferences:\n- AAP sleep guidance",
			expected: "Answer text.\n\nReferences:\n- AAP sleep guidance",
		},
		{
			name:     "collapses long blank runs",
			input:    "First.\n\n\n\nSecond.",
			expected: "First.\n\nSecond.",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  \n hello \n  ",
			expected: "hello",
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.input))
		})
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	input := "Plan:\n1. **Step one**\n2. Step two\n\n\nRemember, consistency matters."
	first := Format(input)
	assert.Equal(t, first, Format(input))
	assert.Equal(t, "Plan:\n\n1. Step one\n2. Step two\n\nRemember, consistency matters.", first)
}
