package metrics

import "github.com/prometheus/client_golang/prometheus"

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid_credentials"
	LoginInactive    = "inactive"
	LoginMissing     = "missing_credentials"
	LoginError       = "error"
	LoginRateLimited = "rate_limited"
)

// AuthMetrics counts authentication outcomes.
type AuthMetrics struct {
	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

// NewAuthMetrics registers the auth counters on reg. A nil registerer yields a
// no-op recorder.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_refresh_total",
		Help: "Token refresh attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(logins, refreshes)
	return &AuthMetrics{logins: logins, refreshes: refreshes}
}

// IncLogin counts one login attempt with the given outcome.
func (a *AuthMetrics) IncLogin(outcome string) {
	if a == nil || a.logins == nil {
		return
	}
	a.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRefresh counts one refresh attempt; ok selects the outcome label.
func (a *AuthMetrics) IncRefresh(ok bool) {
	if a == nil || a.refreshes == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = LoginSuccess
	}
	a.refreshes.WithLabelValues(outcome).Inc()
}
