// Package alphabet implements the symbolic logic gates: the GY rotation
// operator, the RAT boundary clip, the ShRT hard gate, and the Heart-5
// vowel registers.
package alphabet

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Op identifies a symbolic operator.
type Op string

const (
	OpGY   Op = "GY"
	OpRAT  Op = "RAT"
	OpShRT Op = "ShRT"
)

// ErrUnknownOp rejects sequences containing an operator outside the closed set.
var ErrUnknownOp = eris.New("alphabet: unknown operator")

// GY applies a 2-D rotation by theta to the first two components and appends
// the first component of the numerical torque, the rotational derivative
// estimated over dTheta.
func GY(vec []float64, theta, dTheta float64) ([]float64, error) {
	if len(vec) < 2 {
		return nil, eris.Errorf("alphabet: GY needs at least 2 components, got %d", len(vec))
	}
	if dTheta == 0 {
		dTheta = 0.01
	}

	rx, ry := rotate(vec[0], vec[1], theta)
	dx, _ := rotate(vec[0], vec[1], theta+dTheta)

	torqueX := (dx - rx) / dTheta
	return []float64{rx, ry, torqueX}, nil
}

// RAT scales the vector by weightMod and clips every component into
// [scaleA, biasT]. The clip enforces the boundary condition against
// collapse.
func RAT(vec []float64, weightMod, scaleA, biasT float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = math.Min(math.Max(weightMod*v, scaleA), biasT)
	}
	return out
}

// ShRT multiplies the vector elementwise with modifier and applies a
// Heaviside hard gate: components at or below the threshold are zeroed.
// Returns the gated vector and whether any component tripped the gate.
func ShRT(vec, modifier []float64, threshold float64) ([]float64, bool, error) {
	if len(modifier) != len(vec) {
		return nil, false, eris.Errorf("alphabet: modifier length %d does not match vector length %d",
			len(modifier), len(vec))
	}

	out := make([]float64, len(vec))
	tripped := false
	for i, v := range vec {
		if v > threshold {
			out[i] = v * modifier[i]
			tripped = true
		}
	}

	if tripped {
		zap.L().Warn("alphabet: hard gate tripped", zap.Float64("threshold", threshold))
	}
	return out, tripped, nil
}

// RunSequence applies a sequence of operators to a vector using their
// default parameters. Unknown operators fail the whole sequence.
func RunSequence(vec []float64, ops []Op) ([]float64, error) {
	out := make([]float64, len(vec))
	copy(out, vec)

	for _, op := range ops {
		var err error
		switch op {
		case OpGY:
			out, err = GY(out, 0.1, 0.01)
		case OpRAT:
			out = RAT(out, 1.0, -1.0, 1.0)
		case OpShRT:
			modifier := make([]float64, len(out))
			for i := range modifier {
				modifier[i] = 1.0
			}
			out, _, err = ShRT(out, modifier, 0.5)
		default:
			err = eris.Wrapf(ErrUnknownOp, "alphabet: %q", op)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rotate(x, y, theta float64) (float64, float64) {
	cos, sin := math.Cos(theta), math.Sin(theta)
	return cos*x - sin*y, sin*x + cos*y
}
