package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name       string
		alignment  float64
		separation float64
		dt         float64
		want       float64
	}{
		{"positive growth", 3.0, 1.0, 2.0, 1.0},
		{"degradation", 1.0, 3.0, 1.0, -2.0},
		{"neutral", 2.0, 2.0, 5.0, 0},
		{"zero dt yields zero", 3.0, 1.0, 0, 0},
		{"negative dt flips sign", 3.0, 1.0, -1.0, -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GrowthRate(tt.alignment, tt.separation, tt.dt), 1e-12)
		})
	}
}

func TestClassifyGrowth(t *testing.T) {
	assert.Equal(t, GrowthStatusGrowth, ClassifyGrowth(0.5))
	assert.Equal(t, GrowthStatusDegradation, ClassifyGrowth(-0.5))
	assert.Equal(t, GrowthStatusNeutral, ClassifyGrowth(0))
}

func TestTruthGap(t *testing.T) {
	assert.Equal(t, 3.0, TruthGap(5.0, 2.0))
	assert.Equal(t, 3.0, TruthGap(2.0, 5.0), "gap is symmetric")
	assert.Equal(t, 0.0, TruthGap(1.0, 1.0))
}

func TestDensity(t *testing.T) {
	assert.InDelta(t, 5.0625, Density(1.5, 1.5, 1.5, 1.5), 1e-9)
	assert.InDelta(t, 0.0625, Density(0.5, 0.5, 0.5, 0.5), 1e-9)
	assert.Equal(t, 0.0, Density(1, 2, 3, 0), "any zero factor zeroes the density")
	assert.Equal(t, 6.0, Density(-1, 2, -3, 1), "sign pairs cancel")
}
