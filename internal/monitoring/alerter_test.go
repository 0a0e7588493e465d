package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/star-engine/internal/config"
)

func testMonitoringConfig() config.MonitoringConfig {
	return config.MonitoringConfig{
		CheckIntervalSecs:        1,
		RejectionRateThreshold:   0.5,
		LockFailureRateThreshold: 0.9,
	}
}

func TestAlerter_NoAlertsBelowThresholds(t *testing.T) {
	a := NewAlerter(testMonitoringConfig())

	alerts := a.Evaluate(Snapshot{
		EvaluationsTotal: 10,
		Released:         9,
		RejectionRate:    0.1,
		LocksTotal:       10,
		LockFailureRate:  0.2,
	})
	assert.Empty(t, alerts)
}

func TestAlerter_MinimumSample(t *testing.T) {
	a := NewAlerter(testMonitoringConfig())

	// 100% rejection but only 2 evaluations: below the sample floor.
	alerts := a.Evaluate(Snapshot{
		EvaluationsTotal: 2,
		RejectionRate:    1.0,
	})
	assert.Empty(t, alerts)
}

func TestAlerter_RejectionRateAlert(t *testing.T) {
	a := NewAlerter(testMonitoringConfig())

	alerts := a.Evaluate(Snapshot{
		EvaluationsTotal:  10,
		RejectedCoherence: 4,
		RejectedDensity:   3,
		RejectionRate:     0.7,
	})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertRejectionRate, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
}

func TestAlerter_LockFailureAlert(t *testing.T) {
	a := NewAlerter(testMonitoringConfig())

	alerts := a.Evaluate(Snapshot{
		LocksTotal:      20,
		LocksVerified:   0,
		LockFailureRate: 1.0,
	})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLockFailureRate, alerts[0].Type)
}

func TestAlerter_SendsToWebhook(t *testing.T) {
	var received Alert
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := testMonitoringConfig()
	cfg.WebhookURL = ts.URL
	a := NewAlerter(cfg)

	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertRejectionRate, Severity: "high", Message: "test alert"},
	})
	assert.Equal(t, 1, sent)
	assert.Equal(t, AlertRejectionRate, received.Type)
}

func TestAlerter_WebhookFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cfg := testMonitoringConfig()
	cfg.WebhookURL = ts.URL
	a := NewAlerter(cfg)

	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertRejectionRate}})
	assert.Equal(t, 0, sent)
}

func TestAlerter_NoWebhookLogsOnly(t *testing.T) {
	a := NewAlerter(testMonitoringConfig())

	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertRejectionRate}})
	assert.Equal(t, 0, sent)
}
