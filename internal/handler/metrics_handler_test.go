package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-scheduler/internal/service"
)

func newMetricsRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)
	return r
}

func TestMetricsHandlerReady(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"database": ok})

	w := doJSON(newMetricsRouter(h), http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsHandlerNotReady(t *testing.T) {
	down := PingFunc(func(ctx context.Context) error { return errors.New("dial tcp: refused") })
	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"redis": down})

	w := doJSON(newMetricsRouter(h), http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	assert.Equal(t, "NOT_READY", env.Error.Code)
	assert.Equal(t, "redis unavailable", env.Error.Message)
}

func TestMetricsHandlerEndpoints(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordScheduleConflicts(3)
	r := newMetricsRouter(NewMetricsHandler(metrics, nil))

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/health", nil).Code)

	w := doJSON(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "schedule_conflicts_total 3")

	w = doJSON(r, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary service.MetricsSummary
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &summary))
	assert.Equal(t, uint64(3), summary.ScheduleConflicts)
}
