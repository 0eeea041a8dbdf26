package telemetry

import (
	"meridian/config"
	"meridian/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct
type Metric struct {
	HttpRequestsTotal       *prometheus.CounterVec
	HttpRequestDuration     *prometheus.HistogramVec
	RequestSuccessTotal     *prometheus.CounterVec
	RequestFailTotal        *prometheus.CounterVec
	MutationTotal           *prometheus.CounterVec
	OverlapAdvisoryTotal    *prometheus.CounterVec
	ImportRowsTotal         *prometheus.CounterVec
	PermissionDecisionTotal *prometheus.CounterVec
	config                  *config.Configuration
}

// NewMetric 建立所有指標
func NewMetric(config *config.Configuration) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	return &Metric{
		config: config,
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    config.App.Name + "_" + string(core.MetricHttpRequestDuration),
				Help:    "Request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		RequestSuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricRequestSuccessTotal),
				Help: "Requests completed with a success envelope",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		RequestFailTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricRequestFailTotal),
				Help: "Requests rejected or failed",
			},
			labelNames(core.MetricLabelReason),
		),
		MutationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricMutationTotal),
				Help: "Resource mutation count (create/update/delete/status_change)",
			},
			labelNames(core.MetricLabelResource, core.MetricLabelAction),
		),
		OverlapAdvisoryTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricOverlapAdvisory),
				Help: "Service area boundary overlap advisories emitted",
			},
			labelNames(core.MetricLabelSource),
		),
		ImportRowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricImportRowsTotal),
				Help: "Imported rows by format and outcome",
			},
			labelNames(core.MetricLabelSource, core.MetricLabelOutcome),
		),
		PermissionDecisionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: config.App.Name + "_" + string(core.MetricPermissionDecision),
				Help: "Permission decisions by resource, action, source and outcome",
			},
			labelNames(core.MetricLabelResource, core.MetricLabelAction, core.MetricLabelSource, core.MetricLabelOutcome),
		),
	}
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
