package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/core"
	"github.com/qroute-team/qroute-engine/topology"
)

// SpecFromJSON decodes the spec JSON carried in DeviceInfo.
func SpecFromJSON(specJson string) (*core.DeviceInfoSpec, error) {
	var spec core.DeviceInfoSpec
	if err := jsonIter.Unmarshal([]byte(specJson), &spec); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal device info spec:%s/reason:%s",
			specJson, err))
		return nil, err
	}
	return &spec, nil
}

// GraphFromSpec realizes the undirected coupling graph of a device spec.
// Specs without couplings are treated as all-to-all.
func GraphFromSpec(spec *core.DeviceInfoSpec) (*topology.Graph, error) {
	n := len(spec.Qubits)
	if len(spec.Couplings) == 0 {
		return topology.Full(n)
	}
	g, err := topology.NewGraph(n)
	if err != nil {
		return nil, err
	}
	for _, c := range spec.Couplings {
		if err := g.AddEdge(c.Control, c.Target); err != nil {
			return nil, fmt.Errorf("coupling (%d, %d): %w", c.Control, c.Target, err)
		}
	}
	return g, nil
}
