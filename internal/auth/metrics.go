package auth

import "github.com/prometheus/client_golang/prometheus"

const (
	kindSignUp   = "signup"
	kindPassword = "password"

	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeMismatch = "mismatch"
	outcomeError    = "error"
)

// Metrics counts token issuance and consumption. A nil *Metrics records nothing.
type Metrics struct {
	issued   *prometheus.CounterVec
	consumed *prometheus.CounterVec
	logins   *prometheus.CounterVec
}

// NewMetrics creates the auth collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_auth",
			Name:      "tokens_issued_total",
			Help:      "One-time tokens written to the token store.",
		}, []string{"kind"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_auth",
			Name:      "token_verifications_total",
			Help:      "One-time token verification attempts by outcome.",
		}, []string{"kind", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog_auth",
			Name:      "logins_total",
			Help:      "Password login attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.issued, m.consumed, m.logins)
	return m
}

func (m *Metrics) tokenIssued(kind string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(kind).Inc()
}

func (m *Metrics) tokenVerified(kind, outcome string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}
