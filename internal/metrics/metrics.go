package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"

	OutcomeSuccess      = "success"
	OutcomeMissingField = "missing_field"
	OutcomeInvalidType  = "invalid_type"
	OutcomeDivideByZero = "division_by_zero"
)

// Collector собирает счётчик запросов и гистограмму времени ответа
// по транспорту, операции и исходу.
type Collector struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	responseTime *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arithmetic",
			Name:      "requests_total",
			Help:      "Number of arithmetic requests by transport, operation and outcome.",
		}, []string{"transport", "operation", "outcome"}),
		responseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arithmetic",
			Name:      "response_time_seconds",
			Help:      "Time spent handling an arithmetic request.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"transport", "operation"}),
	}

	c.registry.MustRegister(
		c.requests,
		c.responseTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Observe записывает один обработанный запрос. Безопасен для nil-коллектора.
func (c *Collector) Observe(transport, operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(transport, operation, outcome).Inc()
	c.responseTime.WithLabelValues(transport, operation).Observe(elapsed.Seconds())
}

// RequestCounter отдаёт счётчик запросов (используется в тестах)
func (c *Collector) RequestCounter() *prometheus.CounterVec {
	return c.requests
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
