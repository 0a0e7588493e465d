package alphabet

import (
	"sync"

	"github.com/rotisserie/eris"
)

// Vowel identifies a Heart-5 register.
type Vowel string

const (
	VowelA Vowel = "A" // Initiation
	VowelE Vowel = "E" // Discernment
	VowelI Vowel = "I" // Identity
	VowelO Vowel = "O" // Unity
	VowelU Vowel = "U" // Binding
)

var vowelNames = map[Vowel]string{
	VowelA: "Initiation",
	VowelE: "Discernment",
	VowelI: "Identity",
	VowelO: "Unity",
	VowelU: "Binding",
}

// VowelState is the value of one register at a point in time.
type VowelState struct {
	Name      string  `json:"name"`
	Vowel     Vowel   `json:"vowel"`
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}

// Registers holds the five persistent vowel registers. Safe for concurrent
// use: the HTTP layer updates and reads them from multiple requests.
type Registers struct {
	mu     sync.RWMutex
	states map[Vowel]VowelState
}

// NewRegisters creates the five registers zeroed.
func NewRegisters() *Registers {
	states := make(map[Vowel]VowelState, len(vowelNames))
	for v, name := range vowelNames {
		states[v] = VowelState{Name: name, Vowel: v}
	}
	return &Registers{states: states}
}

// Update sets a register's value and timestamp.
func (r *Registers) Update(vowel Vowel, value, timestamp float64) (VowelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[vowel]
	if !ok {
		return VowelState{}, eris.Errorf("alphabet: invalid vowel %q", vowel)
	}
	state.Value = value
	state.Timestamp = timestamp
	r.states[vowel] = state
	return state, nil
}

// Get returns the current state of a register.
func (r *Registers) Get(vowel Vowel) (VowelState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[vowel]
	if !ok {
		return VowelState{}, eris.Errorf("alphabet: invalid vowel %q", vowel)
	}
	return state, nil
}

// All returns a copy of every register state.
func (r *Registers) All() map[Vowel]VowelState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Vowel]VowelState, len(r.states))
	for v, s := range r.states {
		out[v] = s
	}
	return out
}

// Coherence is the normalized mean of the register values, clamped to [0, 1].
func (r *Registers) Coherence() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	for _, s := range r.states {
		sum += s.Value
	}
	coherence := sum / (float64(len(r.states)) * 2.0)
	if coherence < 0 {
		return 0
	}
	if coherence > 1 {
		return 1
	}
	return coherence
}
