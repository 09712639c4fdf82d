//go:build unit
// +build unit

package transpiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/topology"
)

func identityLayout(n, m int) *Layout {
	lay := NewLayout(n, m)
	for q := 0; q < n; q++ {
		lay.Assign(q, q)
	}
	return lay
}

func TestRouteAdjacentGateUntouched(t *testing.T) {
	c := circuit.New(2, "adjacent")
	c.Append(circuit.NewGate("cx", []int{0, 1}))
	g := lineGraph(t, 2)

	routed, swaps, err := route(context.Background(), c, g, identityLayout(2, 2), NewOptions())
	require.NoError(t, err)
	assert.Zero(t, swaps)
	assert.Equal(t, []circuit.Gate{circuit.NewGate("cx", []int{0, 1})}, routed.Gates)
}

func TestRouteInsertsSwapChain(t *testing.T) {
	c := circuit.New(4, "far_apart")
	c.Append(circuit.NewGate("cx", []int{0, 3}))
	g := lineGraph(t, 4)

	lay := identityLayout(4, 4)
	routed, swaps, err := route(context.Background(), c, g, lay, NewOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, swaps)
	assert.Equal(t, []circuit.Gate{
		circuit.NewGate("swap", []int{0, 1}),
		circuit.NewGate("swap", []int{1, 2}),
		circuit.NewGate("cx", []int{2, 3}),
	}, routed.Gates)
	// logical 0 rode the chain to physical 2
	assert.Equal(t, []int{2, 0, 1, 3}, lay.LogToPhys)
}

func TestRouteLookaheadSteersTieBreak(t *testing.T) {
	// 2x2 grid: routing 0-3 can pass through physical 1 or 2. The
	// resident of 2 is used three more times, the resident of 1 once,
	// so the lookahead prefers the path through 2.
	g, err := topology.Grid(2, 2)
	require.NoError(t, err)

	c := circuit.New(4, "steered")
	c.Append(
		circuit.NewGate("cx", []int{0, 3}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{1}),
	)

	routed, swaps, err := route(context.Background(), c, g, identityLayout(4, 4), NewOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, swaps)
	assert.Equal(t, []circuit.Gate{
		circuit.NewGate("swap", []int{0, 2}),
		circuit.NewGate("cx", []int{2, 3}),
		circuit.NewGate("x", []int{0}),
		circuit.NewGate("x", []int{0}),
		circuit.NewGate("x", []int{0}),
		circuit.NewGate("x", []int{1}),
	}, routed.Gates)
}

func TestRouteNoLookaheadAtLevelZero(t *testing.T) {
	// same circuit as above but with no lookahead window: the
	// lexicographically first path through physical 1 wins
	g, err := topology.Grid(2, 2)
	require.NoError(t, err)

	c := circuit.New(4, "unsteered")
	c.Append(
		circuit.NewGate("cx", []int{0, 3}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{1}),
	)

	opts := NewOptions()
	opts.OptimizationLevel = 0
	routed, swaps, err := route(context.Background(), c, g, identityLayout(4, 4), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, swaps)
	assert.Equal(t, []circuit.Gate{
		circuit.NewGate("swap", []int{0, 1}),
		circuit.NewGate("cx", []int{1, 3}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{2}),
		circuit.NewGate("x", []int{0}),
	}, routed.Gates)
}

func TestRouteSeededTieBreakIsDeterministic(t *testing.T) {
	g, err := topology.Grid(2, 2)
	require.NoError(t, err)

	c := circuit.New(4, "seeded")
	c.Append(circuit.NewGate("cx", []int{0, 3}))

	opts := NewOptions()
	opts.OptimizationLevel = 3
	opts.Seed = 42

	first, swaps, err := route(context.Background(), c, g, identityLayout(4, 4), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, swaps)

	again, _, err := route(context.Background(), c, g, identityLayout(4, 4), opts)
	require.NoError(t, err)
	assert.Equal(t, first.Gates, again.Gates)

	// whichever path the seed picked, the interior node is 1 or 2
	swapGate := first.Gates[0]
	assert.Equal(t, "swap", swapGate.Name)
	assert.Contains(t, [][]int{{0, 1}, {0, 2}}, swapGate.Qubits)
}

func TestRouteUnroutablePair(t *testing.T) {
	g, err := topology.NewGraph(4)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(2, 3))

	c := circuit.New(4, "split")
	c.Append(circuit.NewGate("cx", []int{0, 2}))

	routed, _, err := route(context.Background(), c, g, identityLayout(4, 4), NewOptions())
	assert.ErrorIs(t, err, ErrorUnroutablePair)
	assert.Nil(t, routed)
}

func TestRouteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := circuit.New(2, "cancelled")
	c.Append(circuit.NewGate("cx", []int{0, 1}))

	routed, _, err := route(ctx, c, lineGraph(t, 2), identityLayout(2, 2), NewOptions())
	assert.ErrorIs(t, err, ErrorCompilationCancelled)
	assert.Nil(t, routed)
}

func TestRouteRemapsMeasures(t *testing.T) {
	c := circuit.New(2, "measured")
	c.Append(circuit.NewGate("cx", []int{0, 1}))
	c.AppendMeasure(0, 0)
	c.AppendMeasure(1, 1)

	lay := NewLayout(2, 3)
	lay.Assign(0, 2)
	lay.Assign(1, 1)
	g := lineGraph(t, 3)

	routed, swaps, err := route(context.Background(), c, g, lay, NewOptions())
	require.NoError(t, err)
	assert.Zero(t, swaps)
	assert.Equal(t, []circuit.Measure{{Qubit: 2, Bit: 0}, {Qubit: 1, Bit: 1}}, routed.Measures)
}
