package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for slot generation and booking.
type SchedulingMetrics struct {
	slotsTotal       *prometheus.CounterVec
	slotLatency      prometheus.Histogram
	conflictsTotal   *prometheus.CounterVec
	bookingsTotal    *prometheus.CounterVec
	lockAttemptTotal *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "slots_generated_total",
			Help:      "Total candidate slots returned, by availability",
		}, []string{"available"}),
		slotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "slot_generation_seconds",
			Help:      "Latency of slot generation including data loading",
			Buckets:   prometheus.DefBuckets,
		}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "schedule_conflicts_total",
			Help:      "Appointments orphaned by proposed schedule changes, by reason and outcome",
		}, []string{"reason", "forced"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "booking_attempts_total",
			Help:      "Appointment booking attempts, by result",
		}, []string{"result"}),
		lockAttemptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "scheduling",
			Name:      "booking_lock_attempts_total",
			Help:      "Booking lock acquisitions, by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotsTotal, m.slotLatency, m.conflictsTotal, m.bookingsTotal, m.lockAttemptTotal)
	return m
}

func (m *SchedulingMetrics) ObserveSlots(available, unavailable int, seconds float64) {
	if m == nil {
		return
	}
	m.slotsTotal.WithLabelValues("true").Add(float64(available))
	m.slotsTotal.WithLabelValues("false").Add(float64(unavailable))
	m.slotLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveConflict(reason string, forced bool) {
	if m == nil {
		return
	}
	label := "false"
	if forced {
		label = "true"
	}
	m.conflictsTotal.WithLabelValues(reason, label).Inc()
}

func (m *SchedulingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *SchedulingMetrics) ObserveLock(result string) {
	if m == nil {
		return
	}
	m.lockAttemptTotal.WithLabelValues(result).Inc()
}
