package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plagio_console"

// Metrics groups every collector of the console on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	statusUpdates   *prometheus.CounterVec
	analysisTime    prometheus.Histogram
	workspaces      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Console API requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Console API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Calls made to the API gateway, by operation and HTTP status (0 means no response).",
		}, []string{"op", "status"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "API gateway latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Document uploads by result.",
		}, []string{"result"}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_status_updates_total",
			Help:      "Poller updates by state.",
		}, []string{"state"}),
		analysisTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_wait_seconds",
			Help:      "Time from the first status query to a terminal state.",
			Buckets:   []float64{3, 6, 12, 24, 36, 48, 60, 90},
		}),
		workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces_active",
			Help:      "Open console tabs.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.gatewayRequests, m.gatewayDuration,
		m.uploads, m.statusUpdates, m.analysisTime, m.workspaces,
	)
	return m
}

// ObserveGateway matches gateway.ObserveFunc.
func (m *Metrics) ObserveGateway(op string, status int, elapsed time.Duration) {
	m.gatewayRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.gatewayDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) Upload(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.uploads.WithLabelValues(result).Inc()
}

// StatusUpdate counts one poller update. terminal marks the end of a run,
// whose elapsed time is recorded.
func (m *Metrics) StatusUpdate(state string, terminal bool, elapsed time.Duration) {
	m.statusUpdates.WithLabelValues(state).Inc()
	if terminal {
		m.analysisTime.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) WorkspaceOpened() { m.workspaces.Inc() }
func (m *Metrics) WorkspaceClosed() { m.workspaces.Dec() }

// Middleware records every request against its route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := ctx.Route().Path
		m.httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
