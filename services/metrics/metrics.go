package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Session events.
const (
	SessionInitiated = "initiated"
	SessionCancelled = "cancelled"
)

// Submission outcomes.
const (
	OutcomeSubmitted = "submitted"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeRejected  = "rejected"
)

// BookingMetrics exposes counters and histograms for the booking flow.
// A nil *BookingMetrics records nothing.
type BookingMetrics struct {
	sessionsTotal     *prometheus.CounterVec
	submissionsTotal  *prometheus.CounterVec
	submissionLatency *prometheus.HistogramVec
	requestLatency    *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toltimed",
			Subsystem: "booking",
			Name:      "sessions_total",
			Help:      "Booking sessions by lifecycle event",
		}, []string{"event"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toltimed",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		submissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toltimed",
			Subsystem: "booking",
			Name:      "submission_latency_seconds",
			Help:      "Time spent waiting on the submission endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toltimed",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.submissionsTotal, m.submissionLatency, m.requestLatency)
	return m
}

func (m *BookingMetrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submissionLatency.WithLabelValues(outcome).Observe(took.Seconds())
}

// ObserveRequest records one HTTP request. Unmatched routes share the
// "unmatched" label so stray paths cannot grow the series count.
func (m *BookingMetrics) ObserveRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}
