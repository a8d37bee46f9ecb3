// Package metrics expõe contadores Prometheus do hub.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores registrados em um registry próprio.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	diagnoses       *prometheus.CounterVec
	limitHits       *prometheus.CounterVec
}

// New cria e registra os coletores.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_http_requests_total",
			Help: "Requisições HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hub_http_request_duration_seconds",
			Help:    "Latência das requisições HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_calculations_total",
			Help: "Cálculos de previsibilidade registrados.",
		}, []string{"mode"}),
		diagnoses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_diagnoses_total",
			Help: "Diagnósticos de nicho gerados.",
		}, []string{"source"}),
		limitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_plan_limit_hits_total",
			Help: "Operações bloqueadas pelo limite do plano.",
		}, []string{"resource"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.calculations,
		m.diagnoses,
		m.limitHits,
	)
	return m
}

// ObserveRequest contabiliza uma requisição concluída.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CalculationRecorded contabiliza cálculo persistido.
func (m *Metrics) CalculationRecorded(mode string) {
	m.calculations.WithLabelValues(mode).Inc()
}

// DiagnosisGenerated contabiliza diagnóstico pela origem (ai, fallback, cache).
func (m *Metrics) DiagnosisGenerated(source string) {
	m.diagnoses.WithLabelValues(source).Inc()
}

// PlanLimitHit contabiliza bloqueio por limite do plano.
func (m *Metrics) PlanLimitHit(resource string) {
	m.limitHits.WithLabelValues(resource).Inc()
}

// Handler serve o formato de exposição do Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
