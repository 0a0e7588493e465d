package engine

import "math"

// MetricSet holds the raw numeric inputs for one pipeline evaluation.
// It is a value object: passed by value, no identity.
type MetricSet struct {
	Alignment       float64 `json:"alignment"`
	Separation      float64 `json:"separation"`
	Dt              float64 `json:"dt"`
	OmegaTruth      float64 `json:"omega_truth"`
	TargetFalsehood float64 `json:"target_falsehood"`
	Resistance      float64 `json:"resistance"`
	I1              float64 `json:"i1"`
	I2              float64 `json:"i2"`
	I3              float64 `json:"i3"`
	I4              float64 `json:"i4"`
}

// DerivedMetrics holds the values computed from a MetricSet.
type DerivedMetrics struct {
	GrowthRate     float64 `json:"growth_rate"`
	TruthGap       float64 `json:"truth_gap"`
	CoherenceIndex float64 `json:"coherence_index"`
	Density        float64 `json:"density"`
}

// GrowthStatus labels the sign of a growth rate.
type GrowthStatus string

const (
	GrowthStatusGrowth      GrowthStatus = "GROWTH"
	GrowthStatusDegradation GrowthStatus = "DEGRADATION"
	GrowthStatusNeutral     GrowthStatus = "NEUTRAL"
)

// GrowthRate computes the real-time growth metric (alignment - separation) / dt.
// A zero time window is defined behavior and yields 0, not an error.
func GrowthRate(alignment, separation, dt float64) float64 {
	if dt == 0 {
		return 0
	}
	return (alignment - separation) / dt
}

// ClassifyGrowth labels a growth rate as growth, degradation, or neutral.
func ClassifyGrowth(rate float64) GrowthStatus {
	switch {
	case rate > 0:
		return GrowthStatusGrowth
	case rate < 0:
		return GrowthStatusDegradation
	default:
		return GrowthStatusNeutral
	}
}

// TruthGap computes the absolute gap between the truth anchor and the
// target falsehood measurement.
func TruthGap(omegaTruth, targetFalsehood float64) float64 {
	return math.Abs(omegaTruth - targetFalsehood)
}

// Density computes the product of the four integrity factors.
func Density(i1, i2, i3, i4 float64) float64 {
	return i1 * i2 * i3 * i4
}
