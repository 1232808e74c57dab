// Package metrics holds the prometheus collectors for the request pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "venta_admin"

// Outcome labels for Requests.
const (
	OutcomeSuccess        = "success"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeNetworkError   = "network_error"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeSessionExpired = "session_expired"
)

// Result labels for Refreshes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Pipeline struct {
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Retries   prometheus.Counter
}

// NewPipeline creates the collectors and registers them with reg when it is non-nil.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Logical API requests by final outcome.",
		}, []string{"method", "outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refreshes executed, by result.",
		}, []string{"result"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_retries_total",
			Help:      "Requests resent after a successful refresh.",
		}),
	}
	if reg != nil {
		reg.MustRegister(p.Requests, p.Refreshes, p.Retries)
	}
	return p
}

func (p *Pipeline) ObserveRequest(method, outcome string) {
	if p == nil {
		return
	}
	p.Requests.WithLabelValues(method, outcome).Inc()
}

func (p *Pipeline) ObserveRefresh(result string) {
	if p == nil {
		return
	}
	p.Refreshes.WithLabelValues(result).Inc()
}

func (p *Pipeline) ObserveRetry() {
	if p == nil {
		return
	}
	p.Retries.Inc()
}
