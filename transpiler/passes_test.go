//go:build unit
// +build unit

package transpiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qroute-team/qroute-engine/circuit"
)

func gateCircuit(numQubits int, gates ...circuit.Gate) *circuit.Circuit {
	c := circuit.New(numQubits, "peephole")
	c.Append(gates...)
	return c
}

func TestCancelSelfInversePairs(t *testing.T) {
	tests := []struct {
		name string
		in   *circuit.Circuit
		want []circuit.Gate
	}{
		{
			name: "double hadamard vanishes",
			in: gateCircuit(1,
				circuit.NewGate("h", []int{0}),
				circuit.NewGate("h", []int{0}),
			),
			want: []circuit.Gate{},
		},
		{
			name: "double cx vanishes",
			in: gateCircuit(2,
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("cx", []int{0, 1}),
			),
			want: []circuit.Gate{},
		},
		{
			name: "reversed cx does not cancel",
			in: gateCircuit(2,
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("cx", []int{1, 0}),
			),
			want: []circuit.Gate{
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("cx", []int{1, 0}),
			},
		},
		{
			name: "unrelated qubit between pair still cancels",
			in: gateCircuit(2,
				circuit.NewGate("h", []int{0}),
				circuit.NewGate("x", []int{1}),
				circuit.NewGate("h", []int{0}),
			),
			want: []circuit.Gate{circuit.NewGate("x", []int{1})},
		},
		{
			name: "intervening gate on shared qubit blocks cancellation",
			in: gateCircuit(2,
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("rz", []int{1}, 0.1),
				circuit.NewGate("cx", []int{0, 1}),
			),
			want: []circuit.Gate{
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("rz", []int{1}, 0.1),
				circuit.NewGate("cx", []int{0, 1}),
			},
		},
		{
			name: "cascade through exposed pairs",
			in: gateCircuit(2,
				circuit.NewGate("cx", []int{0, 1}),
				circuit.NewGate("h", []int{1}),
				circuit.NewGate("h", []int{1}),
				circuit.NewGate("cx", []int{0, 1}),
			),
			want: []circuit.Gate{},
		},
		{
			name: "odd run leaves one",
			in: gateCircuit(1,
				circuit.NewGate("x", []int{0}),
				circuit.NewGate("x", []int{0}),
				circuit.NewGate("x", []int{0}),
			),
			want: []circuit.Gate{circuit.NewGate("x", []int{0})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := cancelAndMerge(tt.in)
			assert.Equal(t, tt.want, out.Gates)
		})
	}
}

func TestMergeRotations(t *testing.T) {
	tests := []struct {
		name string
		in   *circuit.Circuit
		want []circuit.Gate
	}{
		{
			name: "adjacent rz sum",
			in: gateCircuit(1,
				circuit.NewGate("rz", []int{0}, 0.3),
				circuit.NewGate("rz", []int{0}, 0.4),
			),
			want: []circuit.Gate{circuit.NewGate("rz", []int{0}, 0.3+0.4)},
		},
		{
			name: "opposite angles vanish",
			in: gateCircuit(1,
				circuit.NewGate("rx", []int{0}, 0.3),
				circuit.NewGate("rx", []int{0}, -0.3),
			),
			want: []circuit.Gate{},
		},
		{
			name: "full turn vanishes",
			in: gateCircuit(1,
				circuit.NewGate("rz", []int{0}, math.Pi),
				circuit.NewGate("rz", []int{0}, math.Pi),
			),
			want: []circuit.Gate{},
		},
		{
			name: "merge survives gate on other qubit",
			in: gateCircuit(2,
				circuit.NewGate("rx", []int{0}, 0.2),
				circuit.NewGate("x", []int{1}),
				circuit.NewGate("rx", []int{0}, 0.3),
			),
			want: []circuit.Gate{
				circuit.NewGate("rx", []int{0}, 0.2+0.3),
				circuit.NewGate("x", []int{1}),
			},
		},
		{
			name: "two qubit rotation merge",
			in: gateCircuit(2,
				circuit.NewGate("rzz", []int{0, 1}, 0.3),
				circuit.NewGate("rzz", []int{0, 1}, 0.4),
			),
			want: []circuit.Gate{circuit.NewGate("rzz", []int{0, 1}, 0.3+0.4)},
		},
		{
			name: "three in a row collapse",
			in: gateCircuit(1,
				circuit.NewGate("rz", []int{0}, 0.1),
				circuit.NewGate("rz", []int{0}, 0.2),
				circuit.NewGate("rz", []int{0}, 0.3),
			),
			want: []circuit.Gate{circuit.NewGate("rz", []int{0}, 0.1+0.2+0.3)},
		},
		{
			name: "different axes stay",
			in: gateCircuit(1,
				circuit.NewGate("rz", []int{0}, 0.1),
				circuit.NewGate("rx", []int{0}, 0.2),
			),
			want: []circuit.Gate{
				circuit.NewGate("rz", []int{0}, 0.1),
				circuit.NewGate("rx", []int{0}, 0.2),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := cancelAndMerge(tt.in)
			assert.Equal(t, tt.want, out.Gates)
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.Equal(t, 0.0, normalizeAngle(2*math.Pi))
	assert.Equal(t, math.Pi, normalizeAngle(math.Pi))
	assert.Equal(t, math.Pi, normalizeAngle(-math.Pi))
	assert.InDelta(t, -math.Pi/2, normalizeAngle(3*math.Pi/2), 1e-12)
	assert.Equal(t, 0.5, normalizeAngle(0.5))
}

func TestCancelAndMergeKeepsMeasures(t *testing.T) {
	c := gateCircuit(1,
		circuit.NewGate("h", []int{0}),
		circuit.NewGate("h", []int{0}),
	)
	c.AppendMeasure(0, 0)
	out := cancelAndMerge(c)
	assert.Empty(t, out.Gates)
	assert.Equal(t, []circuit.Measure{{Qubit: 0, Bit: 0}}, out.Measures)
}
