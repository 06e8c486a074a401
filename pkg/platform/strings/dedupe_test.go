package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "mixed case uuids collapse",
			input:    []string{"9F1C2A4E-0000-4000-8000-000000000001", " 9f1c2a4e-0000-4000-8000-000000000001"},
			expected: []string{"9f1c2a4e-0000-4000-8000-000000000001"},
		},
		{
			name:     "blanks dropped and order kept",
			input:    []string{"P-2", "  ", "p-1", "", "P-2"},
			expected: []string{"p-2", "p-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
