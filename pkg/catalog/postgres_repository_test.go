package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected string
	}{
		{name: "empty", input: []float32{}, expected: "[]"},
		{name: "single", input: []float32{0.5}, expected: "[0.5]"},
		{name: "multiple", input: []float32{0.1, -0.2, 1}, expected: "[0.1,-0.2,1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, encodeVector(tt.input))
		})
	}
}

func TestLowerAll(t *testing.T) {
	assert.Equal(t, []string{"crm", "sales"}, lowerAll([]string{"CRM", "Sales"}))
	assert.Equal(t, []string{}, lowerAll([]string{}))
}
