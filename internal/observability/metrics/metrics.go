// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_transcript_relay"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Webhook metrics
	WebhookDeliveries *prometheus.CounterVec
	FragmentsAppended prometheus.Counter
	CallsTracked      prometheus.Counter
	StoreErrors       *prometheus.CounterVec

	// Live reader metrics
	LiveReads *prometheus.CounterVec

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewUnregistered creates metrics attached to a private registry, for tests.
func NewUnregistered() *Metrics {
	return newMetrics(promauto.With(prometheus.NewRegistry()))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),

		WebhookDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Total number of provider webhook deliveries",
		}, []string{"shape", "outcome"}),
		FragmentsAppended: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_appended_total",
			Help:      "Total number of transcript fragments appended to the accumulator",
		}),
		CallsTracked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_tracked_total",
			Help:      "Total number of calls that received a first transcript line",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of transcript store errors",
		}, []string{"operation"}),

		LiveReads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_reads_total",
			Help:      "Total number of live transcript reads",
		}, []string{"result"}),

		ProviderRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of requests sent to the bot provider",
		}, []string{"provider", "operation", "status"}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total number of failed bot provider requests",
		}, []string{"provider", "operation"}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "Bot provider request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider", "operation"}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, latencySeconds float64) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latencySeconds)
}

// RecordWebhook records one webhook delivery and how it was handled.
func (m *Metrics) RecordWebhook(shape, outcome string) {
	if shape == "" {
		shape = "none"
	}
	m.WebhookDeliveries.WithLabelValues(shape, outcome).Inc()
}

// RecordAppend records an accepted fragment. created is true for the first line of a call.
func (m *Metrics) RecordAppend(created bool) {
	m.FragmentsAppended.Inc()
	if created {
		m.CallsTracked.Inc()
	}
}

// RecordStoreError records a failed accumulator operation.
func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordLiveRead records a live transcript read.
func (m *Metrics) RecordLiveRead(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LiveReads.WithLabelValues(result).Inc()
}

// RecordProviderRequest records a request to the bot provider. status is 0 for transport failures.
func (m *Metrics) RecordProviderRequest(provider, operation string, status int, err error, latencySeconds float64) {
	m.ProviderRequests.WithLabelValues(provider, operation, strconv.Itoa(status)).Inc()
	m.ProviderLatency.WithLabelValues(provider, operation).Observe(latencySeconds)
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider, operation).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
