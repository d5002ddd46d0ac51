package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wikianswers_queries_total",
			Help: "Total number of queries accepted into the pipeline",
		},
	)

	PipelineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikianswers_pipeline_failures_total",
			Help: "Terminal pipeline failures by error kind",
		},
		[]string{"kind"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "wikianswers_pipeline_duration_seconds",
			Help: "End-to-end duration of one pipeline run",
		},
	)

	ImageFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikianswers_image_fetch_failures_total",
			Help: "Per-image metadata or download failures, absorbed without failing the run",
		},
		[]string{"stage"},
	)
)
