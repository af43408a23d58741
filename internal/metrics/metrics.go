package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eshop"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics holds the service collectors. All methods are safe on a nil receiver
// so components can run without instrumentation.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authOutcomes    *prometheus.CounterVec
	activityEntries *prometheus.CounterVec
	emails          *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Registration, verification and login outcomes",
		}, []string{"operation", "outcome"}),
		activityEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "entries_total",
			Help:      "Activity log entries by write outcome",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "messages_total",
			Help:      "Transactional emails by kind and outcome",
		}, []string{"kind", "outcome"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed",
		}),
	}

	m.requestTotal = register(reg, m.requestTotal)
	m.requestDuration = register(reg, m.requestDuration)
	m.authOutcomes = register(reg, m.authOutcomes)
	m.activityEntries = register(reg, m.activityEntries)
	m.emails = register(reg, m.emails)
	m.ordersPlaced = register(reg, m.ordersPlaced)
	return m
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Middleware records count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  c.Route().Path,
			"status": strconv.Itoa(status),
		}
		m.requestTotal.With(labels).Inc()
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the gatherer in Prometheus text format.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func (m *Metrics) AuthOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.With(prometheus.Labels{"operation": operation, "outcome": outcome}).Inc()
}

func (m *Metrics) ActivityWritten(n int) {
	if m == nil {
		return
	}
	m.activityEntries.With(prometheus.Labels{"outcome": "written"}).Add(float64(n))
}

func (m *Metrics) ActivityFailed(n int) {
	if m == nil {
		return
	}
	m.activityEntries.With(prometheus.Labels{"outcome": "failed"}).Add(float64(n))
}

func (m *Metrics) ActivityDropped() {
	if m == nil {
		return
	}
	m.activityEntries.With(prometheus.Labels{"outcome": "dropped"}).Inc()
}

func (m *Metrics) EmailSent(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.emails.With(prometheus.Labels{"kind": kind, "outcome": outcome}).Inc()
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}
