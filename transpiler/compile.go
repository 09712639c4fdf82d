package transpiler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/topology"
)

// Result carries the physical circuit with its accounting and the
// layouts chosen by the pipeline.
type Result struct {
	Circuit       *circuit.Circuit
	InitialLayout *Layout
	FinalLayout   *Layout
	Metrics       Metrics
}

// Compile lowers a logical circuit onto a device: initial layout, swap
// routing, basis rewriting, then metric accounting. Each call owns its
// layout and output buffers, so independent calls may run concurrently.
// The context is checked at every gate step; on cancellation no partial
// result is returned.
func Compile(ctx context.Context, c *circuit.Circuit, g *topology.Graph, basis circuit.Basis, opts Options) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrorCompilationCancelled, ctx.Err())
	default:
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	lay, err := selectLayout(c, g)
	if err != nil {
		return nil, err
	}
	initial := lay.Clone()
	routed, routingOps, err := route(ctx, c, g, lay, opts)
	if err != nil {
		return nil, err
	}
	physical, err := rewriteCircuit(ctx, routed, basis, opts.Cache)
	if err != nil {
		return nil, err
	}
	if opts.OptimizationLevel >= 2 {
		physical = cancelAndMerge(physical)
	}
	res := &Result{
		Circuit:       physical,
		InitialLayout: initial,
		FinalLayout:   lay,
		Metrics:       ComputeMetrics(physical, routingOps, opts.ErrorModel),
	}
	zap.L().Debug(fmt.Sprintf("compiled %q/qubits:%d->%d/gates:%d/depth:%d/routing_ops:%d",
		c.Name, c.NumQubits, g.NumNodes(), res.Metrics.TotalGates, res.Metrics.Depth, res.Metrics.RoutingOps))
	return res, nil
}
