package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hospital_queue"

// Collector agrupa las métricas del servicio en un registry propio
// (tests y múltiples routers no chocan con el registry global).
type Collector struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	visitEvents *prometheus.CounterVec
	waiting     *prometheus.GaugeVec
	actualWait  *prometheus.HistogramVec
	serviceTime *prometheus.HistogramVec
	sinkErrors  *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

func New() *Collector {
	waitBuckets := []float64{30, 60, 300, 600, 900, 1800, 3600, 7200}

	c := &Collector{
		reg: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		visitEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "visit_events_total",
				Help:      "Queue transitions by department, lane and event",
			},
			[]string{"department", "lane", "event"},
		),
		waiting: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "waiting_patients",
				Help:      "Patients currently waiting per department and lane",
			},
			[]string{"department", "lane"},
		),
		actualWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "actual_wait_seconds",
				Help:      "Time between check-in and call for completed visits",
				Buckets:   waitBuckets,
			},
			[]string{"department", "lane"},
		),
		serviceTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_time_seconds",
				Help:      "Time between call and completion",
				Buckets:   waitBuckets,
			},
			[]string{"department"},
		),
		sinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_sink_errors_total",
				Help:      "Failed deliveries to event sinks",
			},
			[]string{"sink"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Events discarded because a best-effort sink was saturated",
			},
			[]string{"sink"},
		),
	}

	c.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.visitEvents,
		c.waiting,
		c.actualWait,
		c.serviceTime,
		c.sinkErrors,
		c.dropped,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler expone /metrics para este registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordVisitEvent(department, lane, event string) {
	c.visitEvents.WithLabelValues(department, lane, event).Inc()
}

func (c *Collector) SetWaiting(department, lane string, n int) {
	c.waiting.WithLabelValues(department, lane).Set(float64(n))
}

func (c *Collector) ObserveActualWait(department, lane string, d time.Duration) {
	c.actualWait.WithLabelValues(department, lane).Observe(d.Seconds())
}

func (c *Collector) ObserveServiceTime(department string, d time.Duration) {
	c.serviceTime.WithLabelValues(department).Observe(d.Seconds())
}

func (c *Collector) RecordSinkError(sink string) {
	c.sinkErrors.WithLabelValues(sink).Inc()
}

func (c *Collector) RecordDroppedEvent(sink string) {
	c.dropped.WithLabelValues(sink).Inc()
}
