package gosqs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// consumerMetrics holds the Prometheus collectors a single Consumer updates from its owner-loop state
// transitions. Each instance creates its own unlabeled collectors and registers none of them, not even
// with the global registry, so embedding one or many consumers in a process never collides; callers that want them
// exposed on /metrics register the returned collectors themselves via Consumer.Collectors().
type consumerMetrics struct {
	inflight        prometheus.Gauge
	received        prometheus.Counter
	handled         prometheus.Counter
	pollErrors      prometheus.Counter
	deleteBatches   prometheus.Counter
	deleteBatchSize prometheus.Histogram
	sent            prometheus.Counter
	sentBatches     prometheus.Counter
	sendBatchSize   prometheus.Histogram
	extensions      prometheus.Counter
}

func newConsumerMetrics() *consumerMetrics {
	return &consumerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gosqs_consumer_inflight_messages",
			Help: "Number of messages currently handed to application code but not yet finalized.",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_messages_received_total",
			Help: "Total number of messages delivered by the receive loop.",
		}),
		handled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_messages_handled_total",
			Help: "Total number of messages marked handled (deleted or released).",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_poll_errors_total",
			Help: "Total number of transport errors encountered by the receive loop.",
		}),
		deleteBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_delete_batches_total",
			Help: "Total number of delete-batch flush calls issued.",
		}),
		deleteBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosqs_consumer_delete_batch_size",
			Help:    "Size of each delete-batch flush.",
			Buckets: []float64{1, 2, 5, 10},
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_messages_sent_total",
			Help: "Total number of messages sent via SendMessage.",
		}),
		sentBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_send_batches_total",
			Help: "Total number of SendMessages batch calls issued.",
		}),
		sendBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosqs_consumer_send_batch_size",
			Help:    "Total number of entries passed to a single SendMessages call.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
		extensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gosqs_consumer_visibility_extensions_total",
			Help: "Total number of automatic visibility-timeout extension calls issued.",
		}),
	}
}

// Collectors returns every Prometheus collector this consumer updates, for registration against a
// caller-owned registry.
func (c *Consumer) Collectors() []prometheus.Collector {
	m := c.metrics
	return []prometheus.Collector{
		m.inflight, m.received, m.handled, m.pollErrors,
		m.deleteBatches, m.deleteBatchSize, m.sent, m.sentBatches, m.sendBatchSize, m.extensions,
	}
}
