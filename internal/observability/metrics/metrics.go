package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the scheduling workflow. All methods
// are safe on a nil receiver so callers don't have to guard wiring.
type BookingMetrics struct {
	requestsTotal      *prometheus.CounterVec
	assignmentsTotal   *prometheus.CounterVec
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Appointment requests by service and outcome",
		}, []string{"service", "status"}),
		assignmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "assignments_total",
			Help:      "Doctor/slot assignment attempts by outcome",
		}, []string{"status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Appointment status transitions by target status",
		}, []string{"to"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "notifications_total",
			Help:      "Notification sends by kind and delivery status",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.assignmentsTotal, m.transitionsTotal, m.notificationsTotal)
	return m
}

func (m *BookingMetrics) ObserveRequest(service, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(service, status).Inc()
}

func (m *BookingMetrics) ObserveAssignment(status string) {
	if m == nil {
		return
	}
	m.assignmentsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to).Inc()
}

func (m *BookingMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, status).Inc()
}
