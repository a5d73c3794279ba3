package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devfolio"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	queryDuration   *prom.HistogramVec
	queryResults    *prom.CounterVec
	snapshotSeconds prom.Histogram
	missingFields   prom.Gauge
	pageViews       *prom.CounterVec
}

// NewPrometheusRecorder registers its collectors on reg, creating a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		queryDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_query_duration_seconds",
			Help:      "Duration of individual provider queries",
			Buckets:   prom.DefBuckets,
		}, []string{"provider", "query"}),
		queryResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "provider_query_results_total",
			Help:      "Provider query outcomes",
		}, []string{"provider", "query", "result"}),
		snapshotSeconds: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time to join all provider queries for one snapshot",
			Buckets:   prom.DefBuckets,
		}),
		missingFields: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_missing_fields",
			Help:      "Fields rendered as placeholders in the last snapshot",
		}),
		pageViews: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Rendered pages by route",
		}, []string{"route"}),
	}
	reg.MustRegister(pr.queryDuration, pr.queryResults, pr.snapshotSeconds, pr.missingFields, pr.pageViews)
	return pr
}

func (p *PrometheusRecorder) ObserveProviderQuery(provider, query string, d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.queryDuration.WithLabelValues(provider, query).Observe(d.Seconds())
	p.queryResults.WithLabelValues(provider, query, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveSnapshot(d time.Duration, missingFields int) {
	if p == nil {
		return
	}
	p.snapshotSeconds.Observe(d.Seconds())
	p.missingFields.Set(float64(missingFields))
}

func (p *PrometheusRecorder) IncPageView(route string) {
	if p == nil {
		return
	}
	p.pageViews.WithLabelValues(route).Inc()
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
