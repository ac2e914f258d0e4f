package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	operations *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_operations_total",
				Help: "Ledger operations by name and outcome.",
			},
			[]string{"op", "result"},
		),
	}
	if registry != nil {
		registry.MustRegister(m.operations)
	}
	return m
}

func (m *metrics) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}
