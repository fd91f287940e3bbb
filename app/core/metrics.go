package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/catalab-ai/catalab/pkg/metrics"
)

type Metrics struct {
	apiLatency      *prometheus.HistogramVec
	stageLatency    *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	corpusDocuments *prometheus.GaugeVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.NewRegistry())
	return &Metrics{
		apiLatency:      metrics.NewHistogramVec("api_latency_seconds", []string{"path", "status"}),
		stageLatency:    metrics.NewHistogramVec("pipeline_stage_latency_seconds", []string{"stage"}),
		stageErrors:     metrics.NewCounterVec("pipeline_stage_errors_total", []string{"stage"}),
		corpusDocuments: metrics.NewGaugeVec("corpus_documents", []string{"doc_type"}),
	}
}

func (m *Metrics) ObserveAPI(path, status string, d time.Duration) {
	m.apiLatency.WithLabelValues(path, status).Observe(d.Seconds())
}

// StageTimer 记录单个阶段耗时
func (m *Metrics) StageTimer(stage string) func() {
	start := time.Now()
	return func() {
		m.stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) StageError(stage string) {
	m.stageErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) SetCorpusDocuments(docType string, count float64) {
	m.corpusDocuments.WithLabelValues(docType).Set(count)
}
