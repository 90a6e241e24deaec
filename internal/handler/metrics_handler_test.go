package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan197668/nis/internal/service"
	"github.com/Hasan197668/nis/pkg/config"
)

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok, "redis": down})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewMetricsHandler(nil, nil)
	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	metrics := service.NewMetricsService()
	metrics.ObservePlanningRun(2)
	handler = NewMetricsHandler(metrics, nil)
	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "planning")

	c, w = newGinContext(http.MethodGet, "/health", nil)
	handler.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCalendarHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(config.SchoolConfig{Name: "Atatürk Lisesi", Timezone: "UTC"})
	handler.now = func() time.Time { return time.Date(2024, 10, 19, 10, 0, 0, 0, time.UTC) }

	c, w := newGinContext(http.MethodGet, "/calendar", nil)
	handler.Calendar(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"today":"Pazartesi"`)
	assert.Contains(t, body, `"week":42`)
	assert.Contains(t, body, `"date":"14.10.2024"`)
	assert.Contains(t, body, `"08:30 - 09:10"`)
	assert.Contains(t, body, "Raporlu")
}
