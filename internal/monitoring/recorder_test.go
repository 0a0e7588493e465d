package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/star-engine/internal/engine"
	"github.com/sells-group/star-engine/internal/integrity"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.RecordEvaluation(engine.VerdictReleased, false, 100*time.Microsecond)
	r.RecordEvaluation(engine.VerdictRejectedLowCoherence, true, 200*time.Microsecond)
	r.RecordEvaluation(engine.VerdictRejectedLowDensity, false, 300*time.Microsecond)
	r.RecordLock(integrity.StatusLocked)
	r.RecordLock(integrity.StatusVerificationFailed)

	snap := r.Collect()
	assert.Equal(t, int64(3), snap.EvaluationsTotal)
	assert.Equal(t, int64(1), snap.Released)
	assert.Equal(t, int64(1), snap.RejectedCoherence)
	assert.Equal(t, int64(1), snap.RejectedDensity)
	assert.Equal(t, int64(1), snap.CorrectionsRun)
	assert.InDelta(t, 2.0/3.0, snap.RejectionRate, 1e-9)
	assert.Equal(t, int64(200), snap.AvgEvaluateMicros)
	assert.Equal(t, int64(2), snap.LocksTotal)
	assert.Equal(t, int64(1), snap.LocksVerified)
	assert.InDelta(t, 0.5, snap.LockFailureRate, 1e-9)
}

func TestRecorder_EmptySnapshot(t *testing.T) {
	snap := NewRecorder().Collect()
	assert.Zero(t, snap.EvaluationsTotal)
	assert.Zero(t, snap.RejectionRate)
	assert.Zero(t, snap.LockFailureRate)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestRecorder_ConcurrentRecording(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordEvaluation(engine.VerdictReleased, false, time.Microsecond)
			r.RecordLock(integrity.StatusVerificationFailed)
		}()
	}
	wg.Wait()

	snap := r.Collect()
	assert.Equal(t, int64(50), snap.EvaluationsTotal)
	assert.Equal(t, int64(50), snap.LocksTotal)
	assert.InDelta(t, 1.0, snap.LockFailureRate, 1e-9)
}
