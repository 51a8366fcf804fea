package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundWithTwoDecimalPlace(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "zero", value: 0, want: 0},
		{name: "meio arredonda para cima", value: 1.005, want: 1.01},
		{name: "meio negativo arredonda para longe de zero", value: -2.345, want: -2.35},
		{name: "abaixo do meio", value: 1000.004, want: 1000},
		{name: "inteiro", value: 1500, want: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundWithTwoDecimalPlace(tt.value))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 100.0, Percentage(5, 5))
	assert.Equal(t, 0.0, Percentage(3, 0))
}
