package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records outcomes of event consumption and materialization.
type ConsumerMetrics struct {
	duration   *prometheus.HistogramVec
	processed  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	duplicates prometheus.Counter
	invalid    prometheus.Counter
}

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_handle_duration_seconds",
		Help:    "Duration of event handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_processed_total",
		Help: "Events acknowledged after successful materialization.",
	}, []string{"topic"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_failed_total",
		Help: "Events that failed handling and were redelivered.",
	}, []string{"topic"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_duplicate_deliveries_total",
		Help: "Redeliveries merged into an existing query record.",
	})
	invalid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_invalid_events_total",
		Help: "Events rejected as malformed or failing validation.",
	})
	reg.MustRegister(duration, processed, failed, duplicates, invalid)
	return &ConsumerMetrics{
		duration:   duration,
		processed:  processed,
		failed:     failed,
		duplicates: duplicates,
		invalid:    invalid,
	}
}

// ObserveDuration records how long handling took for the topic.
func (c *ConsumerMetrics) ObserveDuration(topic string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(topic)).Observe(duration.Seconds())
}

// IncProcessed increments the processed counter for the topic.
func (c *ConsumerMetrics) IncProcessed(topic string) {
	if c == nil || c.processed == nil {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncFailed increments the failure counter for the topic.
func (c *ConsumerMetrics) IncFailed(topic string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncDuplicate counts a redelivery that merged into an existing record.
func (c *ConsumerMetrics) IncDuplicate() {
	if c == nil || c.duplicates == nil {
		return
	}
	c.duplicates.Inc()
}

// IncInvalid counts a malformed or invalid event.
func (c *ConsumerMetrics) IncInvalid() {
	if c == nil || c.invalid == nil {
		return
	}
	c.invalid.Inc()
}

func normalizeLabel(topic string) string {
	if topic == "" {
		return "unknown"
	}
	return topic
}
