package transpiler

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/topology"
)

// route walks the circuit gate by gate and emits it over physical
// indices. When a two-qubit gate lands on non-adjacent slots a swap
// chain along a shortest path brings the first operand next to the
// second, updating the layout step by step. Returns the routed circuit
// (still in the source basis) and the number of inserted swaps.
func route(ctx context.Context, c *circuit.Circuit, g *topology.Graph, lay *Layout, opts Options) (*circuit.Circuit, int, error) {
	routed := circuit.New(g.NumNodes(), c.Name)
	routed.NumBits = c.NumBits
	swaps := 0

	var rng *rand.Rand
	if opts.OptimizationLevel >= 3 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	for i, gate := range c.Gates {
		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("%w: %v", ErrorCompilationCancelled, ctx.Err())
		default:
		}
		if !gate.IsTwoQubit() {
			routed.Append(circuit.NewGate(gate.Name, []int{lay.Physical(gate.Qubits[0])}, gate.Params...))
			continue
		}
		a, b := gate.Qubits[0], gate.Qubits[1]
		pa, pb := lay.Physical(a), lay.Physical(b)
		if !g.HasEdge(pa, pb) {
			path, err := choosePath(g, pa, pb, c.Gates[i+1:], lay, opts, rng)
			if err != nil {
				return nil, 0, err
			}
			// ride the first operand along the path until the pair is
			// adjacent; the second operand never moves
			for j := 0; j+2 < len(path); j++ {
				routed.Append(circuit.NewGate("swap", []int{path[j], path[j+1]}))
				lay.SwapPhysical(path[j], path[j+1])
				swaps++
			}
			pa, pb = lay.Physical(a), lay.Physical(b)
		}
		routed.Append(circuit.NewGate(gate.Name, []int{pa, pb}, gate.Params...))
	}

	for _, meas := range c.Measures {
		routed.AppendMeasure(lay.Physical(meas.Qubit), meas.Bit)
	}
	return routed, swaps, nil
}

// choosePath enumerates shortest paths between pa and pb and keeps the
// ones whose interior nodes host the logical qubit with the highest
// remaining future-use count inside the lookahead window. Remaining ties
// go to the lexicographically smallest path, or to a seeded random pick
// at the highest optimization level.
func choosePath(g *topology.Graph, pa, pb int, rest []circuit.Gate, lay *Layout, opts Options, rng *rand.Rand) ([]int, error) {
	paths := g.ShortestPaths(pa, pb, maxCandidatePaths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: physical qubits %d and %d", ErrorUnroutablePair, pa, pb)
	}
	if len(paths) == 1 {
		return paths[0], nil
	}

	futureUse := countFutureUse(rest, opts.lookaheadWindow(len(rest)), len(lay.LogToPhys))
	bestScore := -1
	var best [][]int
	for _, path := range paths {
		score := 0
		for _, p := range path[1 : len(path)-1] {
			if resident := lay.Logical(p); resident >= 0 && futureUse[resident] > score {
				score = futureUse[resident]
			}
		}
		if score > bestScore {
			bestScore = score
			best = append(best[:0], path)
		} else if score == bestScore {
			best = append(best, path)
		}
	}
	if rng != nil && len(best) > 1 {
		return best[rng.Intn(len(best))], nil
	}
	return best[0], nil
}

func countFutureUse(rest []circuit.Gate, window, numLogical int) []int {
	counts := make([]int, numLogical)
	if window > len(rest) {
		window = len(rest)
	}
	for _, g := range rest[:window] {
		for _, q := range g.Qubits {
			counts[q]++
		}
	}
	return counts
}
