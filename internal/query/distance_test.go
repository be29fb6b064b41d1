package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRadiusKm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		mapped   bool
	}{
		{"integer with unit", "10 km", 10, true},
		{"bare integer", "15", 15, true},
		{"decimal with unit", "7.5 km", 7.5, true},
		{"unit glued to number", "25km", 25, true},
		{"leading text", "up to 30 km", 30, true},
		{"first token wins", "10 to 20 km", 10, true},
		{"no number", "garbage", 0, false},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"unit only", "km", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, ok := ParseRadiusKm(tt.input)
			assert.Equal(t, tt.mapped, ok)
			if tt.mapped {
				assert.Equal(t, tt.expected, km)
			}
		})
	}
}

func TestParseRadiusKm_Idempotent(t *testing.T) {
	inputs := []string{"10 km", "7.5", "roughly 12 kilometers", "n/a"}

	for _, input := range inputs {
		first, firstOK := ParseRadiusKm(input)
		second, secondOK := ParseRadiusKm(input)
		assert.Equal(t, first, second, "re-parsing %q changed the value", input)
		assert.Equal(t, firstOK, secondOK)
	}
}
