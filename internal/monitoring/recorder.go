package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/sells-group/star-engine/internal/engine"
	"github.com/sells-group/star-engine/internal/integrity"
)

// Snapshot holds a point-in-time view of engine activity since process start.
type Snapshot struct {
	EvaluationsTotal  int64     `json:"evaluations_total"`
	Released          int64     `json:"released"`
	RejectedCoherence int64     `json:"rejected_low_coherence"`
	RejectedDensity   int64     `json:"rejected_low_density"`
	CorrectionsRun    int64     `json:"corrections_run"`
	RejectionRate     float64   `json:"rejection_rate"`
	LocksTotal        int64     `json:"locks_total"`
	LocksVerified     int64     `json:"locks_verified"`
	LockFailureRate   float64   `json:"lock_failure_rate"`
	AvgEvaluateMicros int64     `json:"avg_evaluate_micros"`
	CollectedAt       time.Time `json:"collected_at"`
}

// Recorder counts engine activity. It is the boundary instrumentation for
// the pipeline: callers record outcomes after each call instead of the
// engine logging its own timings. All methods are safe for concurrent use.
type Recorder struct {
	evaluations  atomic.Int64
	released     atomic.Int64
	rejCoherence atomic.Int64
	rejDensity   atomic.Int64
	corrections  atomic.Int64
	locks        atomic.Int64
	locksOK      atomic.Int64
	evalMicros   atomic.Int64
}

// NewRecorder creates a zeroed Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordEvaluation counts one pipeline evaluation and its duration.
func (r *Recorder) RecordEvaluation(verdict engine.Verdict, corrected bool, elapsed time.Duration) {
	r.evaluations.Add(1)
	r.evalMicros.Add(elapsed.Microseconds())
	switch verdict {
	case engine.VerdictReleased:
		r.released.Add(1)
	case engine.VerdictRejectedLowCoherence:
		r.rejCoherence.Add(1)
	case engine.VerdictRejectedLowDensity:
		r.rejDensity.Add(1)
	}
	if corrected {
		r.corrections.Add(1)
	}
}

// RecordLock counts one integrity lock by terminal status.
func (r *Recorder) RecordLock(status integrity.LockStatus) {
	r.locks.Add(1)
	if status == integrity.StatusLocked {
		r.locksOK.Add(1)
	}
}

// Collect gathers a snapshot of the counters.
func (r *Recorder) Collect() Snapshot {
	snap := Snapshot{
		EvaluationsTotal:  r.evaluations.Load(),
		Released:          r.released.Load(),
		RejectedCoherence: r.rejCoherence.Load(),
		RejectedDensity:   r.rejDensity.Load(),
		CorrectionsRun:    r.corrections.Load(),
		LocksTotal:        r.locks.Load(),
		LocksVerified:     r.locksOK.Load(),
		CollectedAt:       time.Now().UTC(),
	}

	if snap.EvaluationsTotal > 0 {
		rejected := snap.RejectedCoherence + snap.RejectedDensity
		snap.RejectionRate = float64(rejected) / float64(snap.EvaluationsTotal)
		snap.AvgEvaluateMicros = r.evalMicros.Load() / snap.EvaluationsTotal
	}
	if snap.LocksTotal > 0 {
		snap.LockFailureRate = float64(snap.LocksTotal-snap.LocksVerified) / float64(snap.LocksTotal)
	}

	return snap
}
