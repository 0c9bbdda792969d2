package controlapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality — no per-clip or per-voice labels,
// matching the corpus's no-DoS-via-label-explosion rule.
var (
	mixerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sonance_mixer_playback_delay_seconds",
		Help:    "playback_delay samples recorded by the backend pull callback",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.02, 0.05},
	})

	activeVoices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sonance_mixer_active_voices",
		Help: "Current number of voices held by the mixer",
	})

	bufferFullTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_buffer_full_total",
		Help: "Bounded-queue saturation events",
	}, []string{"queue"}) // bounded: "music_command", "sfx_play", "voice_register", "latency"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sonance_http_request_duration_seconds",
		Help:    "Control API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sonance_websocket_connections_active",
		Help: "Currently active telemetry WebSocket connections",
	})
)

// RecordLatencySample feeds one drained playback_delay sample into the
// histogram.
func RecordLatencySample(seconds float64) {
	mixerLatency.Observe(seconds)
}

// UpdateActiveVoices sets the active-voice gauge.
func UpdateActiveVoices(count int) {
	activeVoices.Set(float64(count))
}

// RecordBufferFull increments the saturation counter for queue.
func RecordBufferFull(queue string) {
	bufferFullTotal.WithLabelValues(queue).Inc()
}

// RecordRequest records one HTTP request's latency.
func RecordRequest(method, endpoint string, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateWSConnections sets the telemetry WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// metricsHandler exposes the Prometheus exposition format at /metrics.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}
