package engine

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/star-engine/internal/config"
)

// ErrInvalidInput marks a single rejected call; it never indicates an
// engine-wide failure.
var ErrInvalidInput = errors.New("invalid input")

// Verdict is the terminal classification of one pipeline evaluation.
type Verdict string

const (
	VerdictReleased             Verdict = "RELEASED"
	VerdictRejectedLowCoherence Verdict = "REJECTED_LOW_COHERENCE"
	VerdictRejectedLowDensity   Verdict = "REJECTED_LOW_DENSITY"
)

// QCIStatus classifies a coherence index relative to the configured target.
type QCIStatus string

const (
	QCIStatusCoherent         QCIStatus = "COHERENT"
	QCIStatusPartialCoherence QCIStatus = "PARTIAL_COHERENCE"
	QCIStatusNeedsRepentance  QCIStatus = "NEEDS_REPENTANCE"
)

// Evaluation is the full result of one Evaluate call.
type Evaluation struct {
	Verdict    Verdict           `json:"verdict"`
	Derived    DerivedMetrics    `json:"derived"`
	QCIStatus  QCIStatus         `json:"qci_status"`
	Correction *CorrectionRecord `json:"correction,omitempty"`
}

// Engine evaluates metric sets against the configured gates. The config is
// read-only after construction, so an Engine is safe for concurrent use.
type Engine struct {
	cfg config.EngineConfig
}

// New creates an Engine with the given constants.
func New(cfg config.EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// CoherenceIndex computes atan(truthGap / resistance), bounded in
// [0, QCITarget]. Zero resistance is defined behavior: the index collapses
// to the target when any gap exists, and to 0 otherwise.
func (e *Engine) CoherenceIndex(truthGap, resistance float64) float64 {
	if resistance == 0 {
		if truthGap > 0 {
			return e.cfg.QCITarget
		}
		return 0
	}
	return math.Atan(truthGap / resistance)
}

// Derive computes all derived metrics for a metric set.
func (e *Engine) Derive(m MetricSet) DerivedMetrics {
	gap := TruthGap(m.OmegaTruth, m.TargetFalsehood)
	return DerivedMetrics{
		GrowthRate:     GrowthRate(m.Alignment, m.Separation, m.Dt),
		TruthGap:       gap,
		CoherenceIndex: e.CoherenceIndex(gap, m.Resistance),
		Density:        Density(m.I1, m.I2, m.I3, m.I4),
	}
}

// VerifyDensity reports whether the density of the four integrity factors
// meets the configured threshold.
func (e *Engine) VerifyDensity(i1, i2, i3, i4 float64) (bool, float64) {
	density := Density(i1, i2, i3, i4)
	valid := density >= e.cfg.DensityThreshold
	if !valid && e.cfg.StrictValidation {
		zap.L().Warn("engine: density below threshold",
			zap.Float64("density", density),
			zap.Float64("threshold", e.cfg.DensityThreshold),
		)
	}
	return valid, density
}

// Evaluate runs the gate sequence over a metric set: derive, coherence gate,
// density gate. The coherence gate short-circuits; a failing metric set never
// reaches the density check. Degenerate numeric input (zero dt, zero
// resistance) is defined behavior, so Evaluate always produces a verdict.
func (e *Engine) Evaluate(m MetricSet) Evaluation {
	derived := e.Derive(m)
	result := Evaluation{
		Derived:   derived,
		QCIStatus: e.ClassifyQCI(derived.CoherenceIndex),
	}

	if derived.CoherenceIndex < e.cfg.RepentanceThreshold {
		rec := e.Repent("Low QCI detected", derived.CoherenceIndex)
		result.Verdict = VerdictRejectedLowCoherence
		result.Correction = &rec
		zap.L().Warn("engine: coherence gate rejected metric set",
			zap.Float64("coherence_index", derived.CoherenceIndex),
			zap.Float64("threshold", e.cfg.RepentanceThreshold),
		)
		return result
	}

	if valid, _ := e.VerifyDensity(m.I1, m.I2, m.I3, m.I4); !valid {
		result.Verdict = VerdictRejectedLowDensity
		return result
	}

	result.Verdict = VerdictReleased
	zap.L().Info("engine: metric set released",
		zap.Float64("density", derived.Density),
		zap.Float64("qci", derived.CoherenceIndex),
		zap.Float64("growth_rate", derived.GrowthRate),
	)
	return result
}

// ClassifyInvariant returns the dynamic invariant for a coherence score:
// InvariantHigh when the score clears the harmony threshold, the harmony
// threshold itself otherwise. Negative scores reject the call.
func (e *Engine) ClassifyInvariant(coherenceScore float64) (float64, error) {
	if coherenceScore < 0 {
		return 0, eris.Wrapf(ErrInvalidInput,
			"engine: coherence score must be non-negative, got %v", coherenceScore)
	}
	if coherenceScore > e.cfg.HarmonyThreshold {
		return e.cfg.InvariantHigh, nil
	}
	return e.cfg.HarmonyThreshold, nil
}

// ClassifyQCI maps a coherence index onto its status band. The mapping is
// monotonic: a higher index never yields a lower band.
func (e *Engine) ClassifyQCI(coherenceIndex float64) QCIStatus {
	switch {
	case coherenceIndex >= e.cfg.QCITarget*0.75:
		return QCIStatusCoherent
	case coherenceIndex >= e.cfg.QCITarget*0.5:
		return QCIStatusPartialCoherence
	default:
		return QCIStatusNeedsRepentance
	}
}
