package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration        *prom.HistogramVec
	stageResults         *prom.CounterVec
	assetFetchDuration   *prom.HistogramVec
	assetFetchResults    *prom.CounterVec
	placeholdersResolved *prom.CounterVec
	publishOutcomes      *prom.CounterVec
	fetchConcurrency     prom.Gauge
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		assetFetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "asset_fetch_duration_seconds",
			Help:      "Duration of individual asset downloads",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		assetFetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "asset_fetch_results_total",
			Help:      "Asset download results by kind and outcome",
		}, []string{"kind", "result"}),
		placeholdersResolved: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "placeholders_resolved_total",
			Help:      "Placeholder tokens replaced by injected assets",
		}, []string{"kind"}),
		publishOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "publish_outcomes_total",
			Help:      "Publish attempts by mode and outcome",
		}, []string{"mode", "result"}),
		fetchConcurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "asset_fetch_concurrency",
			Help:      "Configured asset download concurrency",
		}),
	}
	reg.MustRegister(
		pr.stageDuration, pr.stageResults,
		pr.assetFetchDuration, pr.assetFetchResults,
		pr.placeholdersResolved, pr.publishOutcomes, pr.fetchConcurrency,
	)
	return pr
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveAssetFetch(kind string, d time.Duration, success bool) {
	if p == nil || p.assetFetchDuration == nil {
		return
	}
	res := resultLabel(success)
	p.assetFetchDuration.WithLabelValues(kind, res).Observe(d.Seconds())
	p.assetFetchResults.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) AddPlaceholdersResolved(kind string, n int) {
	if p == nil || p.placeholdersResolved == nil || n <= 0 {
		return
	}
	p.placeholdersResolved.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncPublishOutcome(mode string, success bool) {
	if p == nil || p.publishOutcomes == nil {
		return
	}
	p.publishOutcomes.WithLabelValues(mode, resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) SetFetchConcurrency(n int) {
	if p == nil || p.fetchConcurrency == nil {
		return
	}
	p.fetchConcurrency.Set(float64(n))
}
