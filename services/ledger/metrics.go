package ledger

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts ledger outcomes.
type Metrics struct {
	Spends *prometheus.CounterVec
	Gaps   prometheus.Counter
}

// NewMetrics registers the ledger collectors with reg, reusing collectors that are already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	spends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionstudio",
		Subsystem: "ledger",
		Name:      "spends_total",
		Help:      "Credit spend attempts partitioned by outcome.",
	}, []string{"outcome"})
	if err := reg.Register(spends); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register spends collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing spends collector has unexpected type %T", already.ExistingCollector)
		}
		spends = existing
	}

	gaps := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fashionstudio",
		Name:      "ledger_gaps_total",
		Help:      "Generations that were recorded but could not be charged.",
	})
	if err := reg.Register(gaps); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register gaps collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("existing gaps collector has unexpected type %T", already.ExistingCollector)
		}
		gaps = existing
	}

	return &Metrics{Spends: spends, Gaps: gaps}, nil
}

func (m *Metrics) spend(outcome string) {
	if m == nil || m.Spends == nil {
		return
	}
	m.Spends.WithLabelValues(outcome).Inc()
}

func (m *Metrics) gap() {
	if m == nil || m.Gaps == nil {
		return
	}
	m.Gaps.Inc()
}
