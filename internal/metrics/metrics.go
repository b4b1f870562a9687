// Package metrics exposes Prometheus collectors for each stage of the
// highlight pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "osc_bridge"

// Metrics holds the bridge's collectors.
type Metrics struct {
	datagramsReceived    prometheus.Counter
	decodeErrors         prometheus.Counter
	messagesIgnored      prometheus.Counter
	nestedBundlesDropped prometheus.Counter
	schemaErrors         prometheus.Counter
	eventsEnqueued       prometheus.Counter
	eventsForwarded      prometheus.Counter
	forwardErrors        prometheus.Counter
	bufferDepth          prometheus.Gauge
	batchSize            prometheus.Histogram
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		datagramsReceived:    counter("datagrams_received_total", "Datagrams read from the listen socket."),
		decodeErrors:         counter("decode_errors_total", "Datagrams that were not valid OSC."),
		messagesIgnored:      counter("messages_ignored_total", "Messages whose address did not match the monitored address."),
		nestedBundlesDropped: counter("nested_bundles_dropped_total", "Bundles nested inside bundles that were skipped."),
		schemaErrors:         counter("schema_errors_total", "Matching messages whose arguments did not fit the schema."),
		eventsEnqueued:       counter("events_enqueued_total", "Highlight events accepted for forwarding."),
		eventsForwarded:      counter("events_forwarded_total", "Highlight events sent to the editor."),
		forwardErrors:        counter("forward_errors_total", "Highlight events that failed to send."),
		bufferDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_depth",
			Help:      "Events waiting for the next batch.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Events forwarded per non-empty batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.datagramsReceived,
		m.decodeErrors,
		m.messagesIgnored,
		m.nestedBundlesDropped,
		m.schemaErrors,
		m.eventsEnqueued,
		m.eventsForwarded,
		m.forwardErrors,
		m.bufferDepth,
		m.batchSize,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) DatagramReceived() {
	if m == nil {
		return
	}
	m.datagramsReceived.Inc()
}

func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

func (m *Metrics) MessageIgnored() {
	if m == nil {
		return
	}
	m.messagesIgnored.Inc()
}

func (m *Metrics) NestedBundleDropped() {
	if m == nil {
		return
	}
	m.nestedBundlesDropped.Inc()
}

func (m *Metrics) SchemaError() {
	if m == nil {
		return
	}
	m.schemaErrors.Inc()
}

func (m *Metrics) EventEnqueued() {
	if m == nil {
		return
	}
	m.eventsEnqueued.Inc()
}

// SetBufferDepth records the number of queued events. The buffer calls it
// under its lock so updates land in queue order.
func (m *Metrics) SetBufferDepth(n int) {
	if m == nil {
		return
	}
	m.bufferDepth.Set(float64(n))
}

func (m *Metrics) EventForwarded() {
	if m == nil {
		return
	}
	m.eventsForwarded.Inc()
}

func (m *Metrics) ForwardError() {
	if m == nil {
		return
	}
	m.forwardErrors.Inc()
}

// BatchDrained records the size of a drained batch.
func (m *Metrics) BatchDrained(size int) {
	if m == nil {
		return
	}
	if size > 0 {
		m.batchSize.Observe(float64(size))
	}
}
