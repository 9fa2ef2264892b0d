// Package metrics exports counters for the session lifecycle.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

const namespace = "authsession"

type Metrics struct {
	refreshTotal  *prometheus.CounterVec
	guardTotal    *prometheus.CounterVec
	callbackTotal *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		refreshTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_total",
				Help:      "Refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		guardTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_evaluations_total",
				Help:      "Session guard evaluations by final state",
			},
			[]string{"state"},
		),
		callbackTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "callback_total",
				Help:      "OAuth callback activations by final state",
			},
			[]string{"state"},
		),
		breakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}
}

func (m *Metrics) RefreshOutcome(outcome string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GuardOutcome(state string) {
	if m == nil {
		return
	}
	m.guardTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) CallbackOutcome(state string) {
	if m == nil {
		return
	}
	m.callbackTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) BreakerState(name string, st gobreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(stateToFloat(st))
}

// stateToFloat maps gobreaker states to gauge values.
func stateToFloat(st gobreaker.State) float64 {
	switch st {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
