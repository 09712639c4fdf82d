package transpiler

import (
	"math"

	mapset "github.com/deckarep/golang-set"

	"github.com/qroute-team/qroute-engine/circuit"
)

const mergeEpsilon = 1e-12

// selfInverse holds gates that square to the identity; adjacent equal
// pairs on identical operands cancel.
var selfInverse = mapset.NewSetFromSlice([]interface{}{"x", "y", "z", "h", "cx", "cz", "swap"})

// mergeableRotations holds single-parameter gates where consecutive
// applications on the same operands sum their angles.
var mergeableRotations = mapset.NewSetFromSlice([]interface{}{"rx", "ry", "rz", "rxx", "ryy", "rzz", "cp"})

// cancelAndMerge removes adjacent self-inverse pairs and merges adjacent
// rotations, cascading through pairs exposed by earlier removals. Two
// gates are adjacent when no other gate touches any of their qubits in
// between.
func cancelAndMerge(c *circuit.Circuit) *circuit.Circuit {
	gates := make([]circuit.Gate, len(c.Gates))
	copy(gates, c.Gates)
	live := make([]bool, len(gates))
	stacks := make([][]int, c.NumQubits)

	top := func(q int) int {
		if len(stacks[q]) == 0 {
			return -1
		}
		return stacks[q][len(stacks[q])-1]
	}
	pop := func(qubits []int) {
		for _, q := range qubits {
			stacks[q] = stacks[q][:len(stacks[q])-1]
		}
	}

	for i := range gates {
		g := gates[i]
		live[i] = true
		k := top(g.Qubits[0])
		matched := k >= 0
		for _, q := range g.Qubits[1:] {
			if top(q) != k {
				matched = false
				break
			}
		}
		if matched && gates[k].Name == g.Name && sameOperands(gates[k], g) {
			if selfInverse.Contains(g.Name) {
				live[i], live[k] = false, false
				pop(g.Qubits)
				continue
			}
			if mergeableRotations.Contains(g.Name) {
				sum := normalizeAngle(gates[k].Params[0] + g.Params[0])
				live[i] = false
				if math.Abs(sum) <= mergeEpsilon {
					live[k] = false
					pop(g.Qubits)
				} else {
					gates[k] = circuit.NewGate(g.Name, g.Qubits, sum)
				}
				continue
			}
		}
		for _, q := range g.Qubits {
			stacks[q] = append(stacks[q], i)
		}
	}

	out := circuit.New(c.NumQubits, c.Name)
	out.NumBits = c.NumBits
	out.Gates = make([]circuit.Gate, 0, len(gates))
	for i, g := range gates {
		if live[i] {
			out.Append(g)
		}
	}
	out.Measures = append(out.Measures, c.Measures...)
	return out
}

func sameOperands(a, b circuit.Gate) bool {
	if len(a.Qubits) != len(b.Qubits) {
		return false
	}
	for i := range a.Qubits {
		if a.Qubits[i] != b.Qubits[i] {
			return false
		}
	}
	return true
}

// normalizeAngle reduces an angle to (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
