// Package metrics defines the Prometheus collectors exported by the forum backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "forum"

// Result label values.
const (
	ResultSuccess   = "success"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultUser      = "user"
	ResultAnonymous = "anonymous"
)

// Auth counts authentication outcomes.
type Auth struct {
	Attempts    *prometheus.CounterVec
	Resolutions *prometheus.CounterVec
}

// NewAuth creates the auth collectors and registers them with reg when it is not nil.
func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register, login and logout attempts by outcome.",
		}, []string{"operation", "result"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resolutions_total",
			Help:      "Session token resolutions by outcome.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.Resolutions)
	}
	return m
}

// Attempt records one auth operation outcome. Safe on a nil receiver.
func (m *Auth) Attempt(operation, result string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(operation, result).Inc()
}

// Resolved records one session resolution outcome. Safe on a nil receiver.
func (m *Auth) Resolved(result string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(result).Inc()
}
