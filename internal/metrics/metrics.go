package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_downloader_submissions_total",
		Help: "Total number of download submissions by platform and outcome",
	}, []string{"platform", "outcome"})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_downloader_download_duration_seconds",
		Help:    "Duration of successful download submissions in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_download_bytes_total",
		Help: "Total bytes saved",
	})

	HealthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_downloader_health_checks_total",
		Help: "Total number of backend health checks by result",
	}, []string{"status"})

	BackendOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "media_downloader_backend_online",
		Help: "1 if the last health check succeeded, 0 otherwise",
	})
)
