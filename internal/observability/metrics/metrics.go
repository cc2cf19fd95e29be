package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	remindersTotal     prometheus.Counter
	bookingLatency     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendia",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Total booking requests by outcome",
		}, []string{"outcome"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendia",
			Subsystem: "notify",
			Name:      "sends_total",
			Help:      "Total outbound notifications by kind and status",
		}, []string{"kind", "status"}),
		remindersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agendia",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Total appointment reminders sent",
		}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agendia",
			Subsystem: "booking",
			Name:      "latency_seconds",
			Help:      "Latency of booking request processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.notificationsTotal, m.remindersTotal, m.bookingLatency)
	return m
}

// ObserveBooking records a booking request outcome, e.g. "confirmed",
// "rejected", "conflict".
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveNotification records an outbound notification attempt.
func (m *BookingMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveReminder records one sent reminder.
func (m *BookingMetrics) ObserveReminder() {
	if m == nil {
		return
	}
	m.remindersTotal.Inc()
}

// ObserveBookingLatency records end-to-end booking latency in seconds.
func (m *BookingMetrics) ObserveBookingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bookingLatency.Observe(seconds)
}
