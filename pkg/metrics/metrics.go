package metrics

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyBuckets spans the pipeline's latency profile: sub-second store and
// cache hits on the low end, multi-second completion calls on the high end.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30}

type manager struct {
	namespace string
	system    string
	registry  *prometheus.Registry
}

var defaultManager = &manager{
	namespace: "default",
	system:    "default",
	registry:  prometheus.NewRegistry(),
}

func SetupMetricsManager(ns, system string, registry *prometheus.Registry) {
	defaultManager = &manager{
		namespace: ns,
		system:    system,
		registry:  registry,
	}
}

func NewCounterVec(name string, labels []string) *prometheus.CounterVec {
	m := defaultManager
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: FmtFixer(m.namespace),
			Subsystem: FmtFixer(m.system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s count of /%s/%s", name, m.namespace, m.system),
		},
		labels,
	)
	m.registry.Register(vec)
	return vec
}

func NewHistogramVec(name string, labels []string) *prometheus.HistogramVec {
	m := defaultManager
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: FmtFixer(m.namespace),
			Subsystem: FmtFixer(m.system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s duration of /%s/%s", name, m.namespace, m.system),
			Buckets:   latencyBuckets,
		},
		labels,
	)
	m.registry.Register(vec)
	return vec
}

func NewGaugeVec(name string, labels []string) *prometheus.GaugeVec {
	m := defaultManager
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: FmtFixer(m.namespace),
			Subsystem: FmtFixer(m.system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s gauge of /%s/%s", name, m.namespace, m.system),
		},
		labels,
	)
	m.registry.Register(vec)
	return vec
}

func DefaultExportHandler() gin.HandlerFunc {
	h := promhttp.InstrumentMetricHandler(
		defaultManager.registry, promhttp.HandlerFor(defaultManager.registry, promhttp.HandlerOpts{}),
	)
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// FmtFixer rewrites dotted/hyphenated names into prometheus-legal ones.
func FmtFixer(in string) string {
	return strings.Replace(strings.Replace(in, ".", "_", -1), "-", "_", -1)
}
