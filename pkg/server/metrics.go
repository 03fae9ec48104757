package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the server
type Metrics struct {
	// Download metrics
	downloadsTotal *prometheus.CounterVec
	downloadErrors prometheus.Counter
	bytesSent      prometheus.Counter

	// Connection metrics
	activeConnections prometheus.Gauge

	// Stats subscription metrics
	statsSubscribers  prometheus.Gauge
	subscribersPruned prometheus.Counter
	broadcastDuration prometheus.Histogram
}

// NewMetrics creates a new metrics instance. Call it at most once per process;
// the collectors register themselves with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		downloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserv_downloads_total",
				Help: "Total number of successful file opens for download, by file",
			},
			[]string{"file"},
		),
		downloadErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fileserv_download_errors_total",
				Help: "Total number of download requests that failed before or during streaming",
			},
		),
		bytesSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fileserv_bytes_sent_total",
				Help: "Total file bytes written to clients",
			},
		),
		activeConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserv_active_connections",
				Help: "Connections currently holding an admission slot",
			},
		),
		statsSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileserv_stats_subscribers",
				Help: "Current number of statistics subscribers",
			},
		),
		subscribersPruned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fileserv_stats_subscribers_pruned_total",
				Help: "Total number of subscribers dropped after a failed stats write",
			},
		),
		broadcastDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fileserv_stats_broadcast_duration_seconds",
				Help:    "Time taken to push a stats message to all subscribers",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordDownload increments the download counter for a file
func (m *Metrics) RecordDownload(name string) {
	m.downloadsTotal.WithLabelValues(name).Inc()
}

// RecordDownloadError increments the failed-download counter
func (m *Metrics) RecordDownloadError() {
	m.downloadErrors.Inc()
}

// RecordBytesSent adds streamed bytes to the byte counter
func (m *Metrics) RecordBytesSent(n int) {
	m.bytesSent.Add(float64(n))
}

// RecordActiveConnections updates the admission-slot gauge
func (m *Metrics) RecordActiveConnections(count int) {
	m.activeConnections.Set(float64(count))
}

// RecordStatsSubscribers updates the subscriber gauge
func (m *Metrics) RecordStatsSubscribers(count int) {
	m.statsSubscribers.Set(float64(count))
}

// RecordSubscribersPruned adds pruned subscribers to the counter
func (m *Metrics) RecordSubscribersPruned(count int) {
	m.subscribersPruned.Add(float64(count))
}

// RecordBroadcastDuration records how long a stats push took
func (m *Metrics) RecordBroadcastDuration(durationSeconds float64) {
	m.broadcastDuration.Observe(durationSeconds)
}
