package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the spatial input
// orchestrator.
type Metrics struct {
	registry             *prometheus.Registry
	ticksTotal           prometheus.Counter
	sourcesDetectedTotal prometheus.Counter
	sourcesLostTotal     prometheus.Counter
	inputEventsTotal     prometheus.Counter
	gestureEventsTotal   prometheus.Counter
	gesturesDropped      prometheus.Gauge
	sourceErrorsTotal    prometheus.Counter
	activeControllers    prometheus.Gauge
	requestsTotal        prometheus.Counter
	httpErrorsTotal      prometheus.Counter
}

// New creates and registers Prometheus metrics for the orchestrator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_ticks_total",
		Help: "Total number of reconciliation ticks run",
	})
	sourcesDetectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_sources_detected_total",
		Help: "Total number of source detections",
	})
	sourcesLostTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_sources_lost_total",
		Help: "Total number of sources lost",
	})
	inputEventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_input_events_total",
		Help: "Total number of input events published to the sink",
	})
	gestureEventsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_gesture_events_total",
		Help: "Total number of gesture events relayed",
	})
	gesturesDropped := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spatial_gestures_dropped",
		Help: "Gesture events dropped from the relay queue since start",
	})
	sourceErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_source_errors_total",
		Help: "Total number of non-fatal source errors (unsupported kinds, enumeration failures)",
	})
	activeControllers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spatial_active_controllers",
		Help: "Number of controllers currently registered",
	})
	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_http_requests_total",
		Help: "Total number of HTTP requests received",
	})
	httpErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatial_http_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		ticksTotal,
		sourcesDetectedTotal,
		sourcesLostTotal,
		inputEventsTotal,
		gestureEventsTotal,
		gesturesDropped,
		sourceErrorsTotal,
		activeControllers,
		requestsTotal,
		httpErrorsTotal,
	)

	return &Metrics{
		registry:             registry,
		ticksTotal:           ticksTotal,
		sourcesDetectedTotal: sourcesDetectedTotal,
		sourcesLostTotal:     sourcesLostTotal,
		inputEventsTotal:     inputEventsTotal,
		gestureEventsTotal:   gestureEventsTotal,
		gesturesDropped:      gesturesDropped,
		sourceErrorsTotal:    sourceErrorsTotal,
		activeControllers:    activeControllers,
		requestsTotal:        requestsTotal,
		httpErrorsTotal:      httpErrorsTotal,
	}
}

// IncTicks increments the tick counter.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// IncSourcesDetected increments the detected-source counter.
func (m *Metrics) IncSourcesDetected() {
	m.sourcesDetectedTotal.Inc()
}

// IncSourcesLost increments the lost-source counter.
func (m *Metrics) IncSourcesLost() {
	m.sourcesLostTotal.Inc()
}

// IncInputEvents increments the published input event counter.
func (m *Metrics) IncInputEvents() {
	m.inputEventsTotal.Inc()
}

// IncGestureEvents increments the relayed gesture event counter.
func (m *Metrics) IncGestureEvents() {
	m.gestureEventsTotal.Inc()
}

// SetGesturesDropped sets the cumulative dropped-gesture gauge.
func (m *Metrics) SetGesturesDropped(n uint64) {
	m.gesturesDropped.Set(float64(n))
}

// IncSourceErrors increments the non-fatal source error counter.
func (m *Metrics) IncSourceErrors() {
	m.sourceErrorsTotal.Inc()
}

// SetActiveControllers sets the active controllers gauge.
func (m *Metrics) SetActiveControllers(n int) {
	m.activeControllers.Set(float64(n))
}

// IncRequests increments the total HTTP request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the HTTP error counter.
func (m *Metrics) IncErrors() {
	m.httpErrorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g.
// active controllers).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
