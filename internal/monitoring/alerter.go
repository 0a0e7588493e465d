package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/star-engine/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertRejectionRate   AlertType = "rejection_rate"
	AlertLockFailureRate AlertType = "lock_failure_rate"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a Snapshot against configured thresholds and sends
// alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap Snapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// Rejection rate: only meaningful with a minimum sample.
	if snap.EvaluationsTotal >= 5 && snap.RejectionRate > a.cfg.RejectionRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertRejectionRate,
			Severity: "high",
			Message: fmt.Sprintf("rejection rate %.2f exceeds threshold %.2f",
				snap.RejectionRate, a.cfg.RejectionRateThreshold),
			Details: map[string]any{
				"evaluations_total":      snap.EvaluationsTotal,
				"rejected_low_coherence": snap.RejectedCoherence,
				"rejected_low_density":   snap.RejectedDensity,
			},
			Timestamp: now,
		})
	}

	if snap.LocksTotal >= 5 && snap.LockFailureRate > a.cfg.LockFailureRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertLockFailureRate,
			Severity: "medium",
			Message: fmt.Sprintf("lock verification failure rate %.2f exceeds threshold %.2f",
				snap.LockFailureRate, a.cfg.LockFailureRateThreshold),
			Details: map[string]any{
				"locks_total":    snap.LocksTotal,
				"locks_verified": snap.LocksVerified,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts posts alerts to the configured webhook. Returns the number
// successfully sent. Without a webhook URL, alerts are logged only.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	sent := 0
	for _, alert := range alerts {
		if a.cfg.WebhookURL == "" {
			zap.L().Warn("monitoring: alert (no webhook configured)",
				zap.String("type", string(alert.Type)),
				zap.String("message", alert.Message),
			)
			continue
		}
		if err := a.send(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}

func (a *Alerter) send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "monitoring: build alert request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: post alert")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return eris.Errorf("monitoring: webhook returned %d", resp.StatusCode)
	}
	return nil
}
