package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
)

func health(t *testing.T, hc *HealthController) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealth_ReturnsOK(t *testing.T) {
	hc := NewHealthController(&fakeCollector{}, newTestPool(100, "k1", "k2"))

	resp := health(t, hc)

	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(2), resp["keys"])
	assert.Equal(t, float64(2), resp["keys_available"])
	assert.Equal(t, false, resp["running"])
	assert.NotContains(t, resp, "last_cycle")
}

func TestHealth_LastCycle(t *testing.T) {
	collector := &fakeCollector{}
	collector.Publish(sampleResult())
	hc := NewHealthController(collector, newTestPool(100, "k1"))

	resp := health(t, hc)

	assert.Equal(t, "ok", resp["status"])
	last, ok := resp["last_cycle"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cycle-1", last["id"])
	assert.Equal(t, models.OutcomeOK, last["outcome"])
}

func TestHealth_DegradedAfterFatalCycle(t *testing.T) {
	result := sampleResult()
	result.Fatal = true
	result.Cause = "key pool exhausted"
	collector := &fakeCollector{}
	collector.Publish(result)
	hc := NewHealthController(collector, newTestPool(100, "k1"))

	resp := health(t, hc)

	assert.Equal(t, "degraded", resp["status"])
	last := resp["last_cycle"].(map[string]interface{})
	assert.Equal(t, "key pool exhausted", last["cause"])
}

func TestHealth_DegradedWithoutKeys(t *testing.T) {
	hc := NewHealthController(&fakeCollector{}, newTestPool(100))

	resp := health(t, hc)

	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, float64(0), resp["keys_available"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&fakeCollector{}, newTestPool(100, "k1"))

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
