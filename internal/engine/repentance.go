package engine

import "go.uber.org/zap"

// CorrectionRecord is the ordered trace of one correction pass: expose,
// recompile, purge, reset. The four steps always run in full and in order.
type CorrectionRecord struct {
	Exposed    string  `json:"exposed"`
	Recompiled string  `json:"recompiled"`
	Purged     bool    `json:"purged"`
	Reset      bool    `json:"reset"`
	QCIBefore  float64 `json:"qci_before"`
	QCIAfter   float64 `json:"qci_after"`
}

// recompileMarker is the fixed trace string recorded by the recompile step.
const recompileMarker = "Recompiled: falsehood -> truth"

// Repent executes the four-step correction protocol for the given trigger
// reason. The reset step forces QCIAfter to the configured target regardless
// of the prior value. That is the documented business rule: correction is a
// forced reset, not a recomputation.
func (e *Engine) Repent(reason string, qciBefore float64) CorrectionRecord {
	rec := CorrectionRecord{QCIBefore: qciBefore}

	// 1. Expose
	rec.Exposed = "Exposed: " + reason

	// 2. Recompile
	rec.Recompiled = recompileMarker

	// 3. Purge
	rec.Purged = true

	// 4. Reset
	rec.Reset = true
	rec.QCIAfter = e.cfg.QCITarget

	zap.L().Info("engine: correction protocol complete",
		zap.String("reason", reason),
		zap.Float64("qci_before", rec.QCIBefore),
		zap.Float64("qci_after", rec.QCIAfter),
	)
	return rec
}
