package recycler

import "github.com/prometheus/client_golang/prometheus"

// Metrics registers a handful of gauges/counters describing one pool's
// runtime behavior. Constructing a Pool without WithMetrics leaves this
// nil everywhere it is consulted, so instrumentation costs nothing beyond
// a nil check when not wired in.
type Metrics struct {
	stackSize     prometheus.Gauge
	scavengeTotal prometheus.Counter
	dropTotal     prometheus.Counter
	foreignQueues prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, name string) *Metrics {
	labels := prometheus.Labels{"pool": name}
	m := &Metrics{
		stackSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "recycler_stack_size",
			Help:        "Number of handles in the acquiring goroutine's stack, sampled at each Acquire.",
			ConstLabels: labels,
		}),
		scavengeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "recycler_scavenge_total",
			Help:        "Number of successful scavenges (foreign-queue transfers) performed.",
			ConstLabels: labels,
		}),
		dropTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "recycler_drop_total",
			Help:        "Number of recycled values dropped by the admission-ratio policy or by capacity limits.",
			ConstLabels: labels,
		}),
		foreignQueues: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "recycler_foreign_queue_count",
			Help:        "Number of foreign-intake queues currently linked into a pool's stacks.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.stackSize, m.scavengeTotal, m.dropTotal, m.foreignQueues)
	return m
}

func (m *Metrics) observeAcquire(stackSize int) {
	if m == nil {
		return
	}
	m.stackSize.Set(float64(stackSize))
}

func (m *Metrics) observeScavenge(success bool) {
	if m == nil {
		return
	}
	if success {
		m.scavengeTotal.Inc()
	}
}

func (m *Metrics) observeDrop() {
	if m == nil {
		return
	}
	m.dropTotal.Inc()
}

func (m *Metrics) observeForeignQueueDelta(delta int) {
	if m == nil {
		return
	}
	m.foreignQueues.Add(float64(delta))
}
