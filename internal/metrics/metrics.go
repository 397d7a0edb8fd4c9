// Package metrics exposes Prometheus counters for the invite subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the invite subsystem counters.
type Metrics struct {
	InvitesCreated   prometheus.Counter
	InviteViews      prometheus.Counter
	ViewRecordErrors prometheus.Counter
	Resolutions      *prometheus.CounterVec
	EmailsDispatched *prometheus.CounterVec
}

// New registers all metrics on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvitesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "webinar_invites_created_total",
			Help: "Total number of webinar invites created",
		}),
		InviteViews: f.NewCounter(prometheus.CounterOpts{
			Name: "webinar_invite_views_total",
			Help: "Total number of successful invite resolutions that recorded a view",
		}),
		ViewRecordErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "webinar_invite_view_record_errors_total",
			Help: "View statistic updates that failed after a successful resolution",
		}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webinar_invite_resolutions_total",
			Help: "Viewer token resolutions by outcome code",
		}, []string{"outcome"}),
		EmailsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webinar_invite_emails_total",
			Help: "Invite emails attempted, by result",
		}, []string{"result"}),
	}
}

// AddInvitesCreated records n newly persisted invites.
func (m *Metrics) AddInvitesCreated(n int) {
	if m == nil {
		return
	}
	m.InvitesCreated.Add(float64(n))
}

// ObserveResolution records one viewer resolution outcome.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// IncrementViews records a view written to the store.
func (m *Metrics) IncrementViews() {
	if m == nil {
		return
	}
	m.InviteViews.Inc()
}

// IncrementViewRecordErrors records a failed view statistic write.
func (m *Metrics) IncrementViewRecordErrors() {
	if m == nil {
		return
	}
	m.ViewRecordErrors.Inc()
}

// ObserveEmail records one dispatch result ("sent" or "failed").
func (m *Metrics) ObserveEmail(sent bool) {
	if m == nil {
		return
	}
	result := "failed"
	if sent {
		result = "sent"
	}
	m.EmailsDispatched.WithLabelValues(result).Inc()
}
