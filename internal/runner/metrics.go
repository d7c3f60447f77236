package runner

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"contract_testing/internal/model"
)

// Metrics 记录一次运行的统计，使用独立的 registry，不注册到全局。
type Metrics struct {
	registry  *prometheus.Registry
	scenarios *prometheus.CounterVec
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contract_scenarios_total",
			Help: "Number of executed contract scenarios by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contract_requests_total",
			Help: "Number of requests sent to the service under test.",
		}, []string{"method", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contract_request_duration_seconds",
			Help:    "Latency of requests sent to the service under test.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(m.scenarios, m.requests, m.duration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(result model.TestResult) {
	outcome := "passed"
	if !result.Success {
		outcome = "failed"
	}
	m.scenarios.WithLabelValues(outcome).Inc()

	for _, x := range result.Exchanges {
		m.requests.WithLabelValues(x.Method, x.Path, strconv.Itoa(x.StatusCode)).Inc()
		m.duration.WithLabelValues(x.Method, x.Path).Observe(x.Duration.Seconds())
	}
}
