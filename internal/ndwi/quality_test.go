package ndwi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToQuality(t *testing.T) {
	tests := []struct {
		name     string
		ndwi     float64
		expected int
	}{
		{name: "minimum", ndwi: -1, expected: 10},
		{name: "just below zero", ndwi: -0.0001, expected: 10},
		{name: "zero is poor", ndwi: 0, expected: 30},
		{name: "below 0.1", ndwi: 0.0999, expected: 30},
		{name: "0.1 is moderate", ndwi: 0.1, expected: 60},
		{name: "below 0.3", ndwi: 0.2999, expected: 60},
		{name: "0.3 is good", ndwi: 0.3, expected: 80},
		{name: "below 0.5", ndwi: 0.4999, expected: 80},
		{name: "0.5 is excellent", ndwi: 0.5, expected: 95},
		{name: "maximum", ndwi: 1, expected: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToQuality(tt.ndwi))
		})
	}
}

func TestToQuality_EqualInputsEqualOutputs(t *testing.T) {
	for v := -1.0; v <= 1.0; v += 0.05 {
		assert.Equal(t, ToQuality(v), NewSample(0, 0, v).Quality)
	}
}

func TestBand(t *testing.T) {
	assert.Equal(t, BandLand, Band(-0.2))
	assert.Equal(t, BandPoor, Band(0))
	assert.Equal(t, BandModerate, Band(0.1))
	assert.Equal(t, BandGood, Band(0.3))
	assert.Equal(t, BandExcellent, Band(0.5))
}
