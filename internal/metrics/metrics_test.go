package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuth_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAuth(reg)

	m.Attempt("login", ResultSuccess)
	m.Attempt("login", ResultSuccess)
	m.Attempt("login", ResultRejected)
	m.Resolved(ResultAnonymous)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Attempts.WithLabelValues("login", ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Attempts.WithLabelValues("login", ResultRejected)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Resolutions.WithLabelValues(ResultAnonymous)), 0)

	count, err := testutil.GatherAndCount(reg, "forum_auth_attempts_total", "forum_session_resolutions_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAuth_NilSafe(t *testing.T) {
	var m *Auth
	assert.NotPanics(t, func() {
		m.Attempt("login", ResultError)
		m.Resolved(ResultUser)
	})
}
