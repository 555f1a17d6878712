package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsQueueMetrics(t *testing.T) {
	c := New()

	c.RecordVisitEvent("OPD", "priority", "visit.called")
	c.RecordVisitEvent("OPD", "priority", "visit.called")
	c.SetWaiting("OPD", "normal", 4)
	c.RecordSinkError("kafka")
	c.RecordDroppedEvent("notify")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.visitEvents.WithLabelValues("OPD", "priority", "visit.called")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.waiting.WithLabelValues("OPD", "normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sinkErrors.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped.WithLabelValues("notify")))
}

func TestCollector_HandlerExposesRegistry(t *testing.T) {
	c := New()
	c.RecordHTTPRequest(http.MethodPost, "/departments/{department}/checkins", http.StatusCreated, 20*time.Millisecond)
	c.ObserveServiceTime("Billing", 3*time.Minute)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `hospital_queue_http_requests_total{method="POST",route="/departments/{department}/checkins",status_code="201"} 1`)
	assert.Contains(t, string(body), `hospital_queue_service_time_seconds_count{department="Billing"} 1`)
}
