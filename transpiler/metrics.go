package transpiler

import (
	"github.com/qroute-team/qroute-engine/circuit"
)

// ErrorModel carries per-operation error probabilities for the fidelity
// estimate. Success probabilities compose multiplicatively over the gate
// list; this is arithmetic, not a noise simulation.
type ErrorModel struct {
	OneQubitError float64 `json:"one_qubit_error"`
	TwoQubitError float64 `json:"two_qubit_error"`
	ReadoutError  float64 `json:"readout_error"`
}

// EstimatedFidelity is nil-safe; without a model the estimate is 1.
func (m *ErrorModel) EstimatedFidelity(c *circuit.Circuit) float64 {
	if m == nil {
		return 1.0
	}
	f := 1.0
	for _, g := range c.Gates {
		if g.IsTwoQubit() {
			f *= 1.0 - m.TwoQubitError
		} else {
			f *= 1.0 - m.OneQubitError
		}
	}
	for range c.Measures {
		f *= 1.0 - m.ReadoutError
	}
	return f
}

// Metrics summarizes a compiled circuit.
type Metrics struct {
	TotalGates        int            `json:"total_gates"`
	TwoQubitGates     int            `json:"two_qubit_gates"`
	GateCounts        map[string]int `json:"gate_counts"`
	Depth             int            `json:"depth"`
	RoutingOps        int            `json:"routing_ops"`
	EstimatedFidelity float64        `json:"estimated_fidelity"`
}

// ComputeMetrics is pure: repeated calls on the same circuit yield
// identical values.
func ComputeMetrics(c *circuit.Circuit, routingOps int, em *ErrorModel) Metrics {
	return Metrics{
		TotalGates:        len(c.Gates),
		TwoQubitGates:     c.TwoQubitGateCount(),
		GateCounts:        c.GateCounts(),
		Depth:             c.Depth(),
		RoutingOps:        routingOps,
		EstimatedFidelity: em.EstimatedFidelity(c),
	}
}
