package server

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/star-engine/internal/alphabet"
	"github.com/sells-group/star-engine/internal/engine"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OPERATIONAL",
		"engine":    "READY",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":    s.cfg.Engine,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.recorder.Collect())
}

type invariantRequest struct {
	CoherenceScore float64 `json:"coherence_score"`
}

func (s *Server) handleInvariant(w http.ResponseWriter, r *http.Request) {
	var req invariantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invariant, err := s.engine.ClassifyInvariant(req.CoherenceScore)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "classification failed")
		return
	}

	mode := "HARMONY_RIDGE"
	if invariant == s.cfg.Engine.InvariantHigh {
		mode = "TRI_NODE_SYNTHESIS"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invariant":       invariant,
		"coherence_score": req.CoherenceScore,
		"mode":            mode,
	})
}

type growthRequest struct {
	Alignment  float64 `json:"alignment"`
	Separation float64 `json:"separation"`
	Dt         float64 `json:"dt"`
}

func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	var req growthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := engine.GrowthRate(req.Alignment, req.Separation, req.Dt)
	writeJSON(w, http.StatusOK, map[string]any{
		"result":     result,
		"alignment":  req.Alignment,
		"separation": req.Separation,
		"dt":         req.Dt,
		"status":     engine.ClassifyGrowth(result),
	})
}

type tifRequest struct {
	OmegaTruth      float64 `json:"omega_truth"`
	TargetFalsehood float64 `json:"target_falsehood"`
}

func (s *Server) handleTIF(w http.ResponseWriter, r *http.Request) {
	var req tifRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tif":              engine.TruthGap(req.OmegaTruth, req.TargetFalsehood),
		"omega_truth":      req.OmegaTruth,
		"target_falsehood": req.TargetFalsehood,
	})
}

type qciRequest struct {
	TIF        float64 `json:"tif"`
	Resistance float64 `json:"resistance"`
}

func (s *Server) handleQCI(w http.ResponseWriter, r *http.Request) {
	var req qciRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	qci := s.engine.CoherenceIndex(req.TIF, req.Resistance)
	writeJSON(w, http.StatusOK, map[string]any{
		"qci":               qci,
		"status":            s.engine.ClassifyQCI(qci),
		"target":            s.cfg.Engine.QCITarget,
		"delta_from_target": s.cfg.Engine.QCITarget - qci,
	})
}

type densityRequest struct {
	I1 float64 `json:"i1"`
	I2 float64 `json:"i2"`
	I3 float64 `json:"i3"`
	I4 float64 `json:"i4"`
}

func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	var req densityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, density := s.engine.VerifyDensity(req.I1, req.I2, req.I3, req.I4)
	writeJSON(w, http.StatusOK, map[string]any{
		"density":   density,
		"is_valid":  valid,
		"threshold": s.cfg.Engine.DensityThreshold,
	})
}

type repentanceRequest struct {
	Reason    string  `json:"reason"`
	QCIBefore float64 `json:"qci_before"`
}

func (s *Server) handleRepentance(w http.ResponseWriter, r *http.Request) {
	var req repentanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		req.Reason = "System trigger"
	}

	rec := s.engine.Repent(req.Reason, req.QCIBefore)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "REPENTANCE_COMPLETE",
		"correction": rec,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var metrics engine.MetricSet
	if err := decodeJSON(r, &metrics); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result := s.engine.Evaluate(metrics)
	s.recorder.RecordEvaluation(result.Verdict, result.Correction != nil, time.Since(start))

	writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Items []engine.MetricSet `json:"items"`
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items is required")
		return
	}

	results := make([]engine.Evaluation, len(req.Items))
	g, _ := errgroup.WithContext(r.Context())
	g.SetLimit(s.cfg.Server.BatchMaxConc)

	for i, m := range req.Items {
		i, m := i, m // per-iteration copies; go directive is below 1.22
		g.Go(func() error {
			start := time.Now()
			results[i] = s.engine.Evaluate(m)
			s.recorder.RecordEvaluation(results[i].Verdict, results[i].Correction != nil, time.Since(start))
			return nil
		})
	}
	// Evaluate never fails; the group exists for bounded concurrency.
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}

type lockRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	rec, err := s.protocol.Process(req.Text, req.Context)
	if err != nil {
		zap.L().Error("server: lock failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lock failed")
		return
	}
	s.recorder.RecordLock(rec.Status)

	writeJSON(w, http.StatusOK, rec)
}

type sequenceRequest struct {
	Vector     []float64     `json:"vector"`
	Operations []alphabet.Op `json:"operations"`
}

func (s *Server) handleAlphabetSequence(w http.ResponseWriter, r *http.Request) {
	var req sequenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := alphabet.RunSequence(req.Vector, req.Operations)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"input_vector":    req.Vector,
		"operations":      req.Operations,
		"output_vector":   out,
		"heart_coherence": s.registers.Coherence(),
	})
}

type vowelRequest struct {
	Vowel     alphabet.Vowel `json:"vowel"`
	Value     float64        `json:"value"`
	Timestamp float64        `json:"timestamp"`
}

func (s *Server) handleAlphabetVowel(w http.ResponseWriter, r *http.Request) {
	var req vowelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.registers.Update(req.Vowel, req.Value, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAlphabetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"vowel_states":    s.registers.All(),
		"heart_coherence": s.registers.Coherence(),
		"status":          "OPERATIONAL",
	})
}
