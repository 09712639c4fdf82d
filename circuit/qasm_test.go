//go:build unit
// +build unit

package circuit

import (
	"math"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestParseQASM(t *testing.T) {
	tests := []struct {
		name       string
		qasm       string
		wantQubits int
		wantGates  []Gate
		wantErr    string
	}{
		{
			name: "bell pair",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[2] q;
				bit[2] c;

				h q[0];
				cx q[0], q[1];

				c[0] = measure q[0];
				c[1] = measure q[1];
			`),
			wantQubits: 2,
			wantGates: []Gate{
				NewGate("h", []int{0}),
				NewGate("cx", []int{0, 1}),
			},
		},
		{
			name: "parameterized gates with pi expressions",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[2] q;
				rz(pi/2) q[0];
				rx(-pi/4) q[1];
				rzz(3*pi/2) q[0], q[1];
				ry(0.25) q[0];
			`),
			wantQubits: 2,
			wantGates: []Gate{
				NewGate("rz", []int{0}, math.Pi/2),
				NewGate("rx", []int{1}, -math.Pi/4),
				NewGate("rzz", []int{0, 1}, 3*math.Pi/2),
				NewGate("ry", []int{0}, 0.25),
			},
		},
		{
			name: "qasm2 register declarations",
			qasm: heredoc.Doc(`
				OPENQASM 2.0;
				include "qelib1.inc";
				qreg q[3];
				creg c[3];
				h q[0];
				cx q[0], q[2];
			`),
			wantQubits: 3,
			wantGates: []Gate{
				NewGate("h", []int{0}),
				NewGate("cx", []int{0, 2}),
			},
		},
		{
			name: "comments and blank lines",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				// prepared by hand
				qubit[1] q;

				x q[0];
			`),
			wantQubits: 1,
			wantGates:  []Gate{NewGate("x", []int{0})},
		},
		{
			name: "second quantum register",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[2] q;
				qubit[2] r;
			`),
			wantErr: "second quantum register",
		},
		{
			name: "unsupported statement",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[2] q;
				gate mygate a, b { cx a, b; }
			`),
			wantErr: "unsupported statement",
		},
		{
			name: "unknown gate fails validation",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[1] q;
				warp q[0];
			`),
			wantErr: "unknown gate name",
		},
		{
			name: "out of range operand",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[2] q;
				cx q[0], q[4];
			`),
			wantErr: "out of range",
		},
		{
			name: "bad parameter expression",
			qasm: heredoc.Doc(`
				OPENQASM 3;
				qubit[1] q;
				rz(theta) q[0];
			`),
			wantErr: "cannot evaluate parameter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseQASM(tt.qasm)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantQubits, c.NumQubits)
			assert.Equal(t, tt.wantGates, c.Gates)
		})
	}
}

func TestParseQASMMeasures(t *testing.T) {
	qasm := heredoc.Doc(`
		OPENQASM 3;
		qubit[2] q;
		bit[2] c;
		h q[0];
		c[0] = measure q[0];
		c[1] = measure q[1];
	`)
	c, err := ParseQASM(qasm)
	assert.NoError(t, err)
	assert.Equal(t, []Measure{{Qubit: 0, Bit: 0}, {Qubit: 1, Bit: 1}}, c.Measures)
	assert.Equal(t, 2, c.NumBits)
}

func TestToQASM(t *testing.T) {
	want := "OPENQASM 3;\nqubit[2] q;\nbit[2] c;\n\nh q[0];\ncx q[0], q[1];\n\nc[0] = measure q[0];\nc[1] = measure q[1];"
	assert.Equal(t, want, bellPair().ToQASM())
}

func TestQASMRoundTrip(t *testing.T) {
	orig := New(3, "roundtrip")
	orig.Append(
		NewGate("h", []int{0}),
		NewGate("rz", []int{1}, math.Pi/2),
		NewGate("cx", []int{0, 2}),
		NewGate("rzz", []int{1, 2}, -0.75),
	)
	orig.AppendMeasure(0, 0)
	orig.AppendMeasure(2, 1)

	parsed, err := ParseQASM(orig.ToQASM())
	assert.NoError(t, err)
	assert.Equal(t, orig.NumQubits, parsed.NumQubits)
	assert.Equal(t, orig.Gates, parsed.Gates)
	assert.Equal(t, orig.Measures, parsed.Measures)
}

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"pi", math.Pi},
		{"-pi", -math.Pi},
		{"pi/2", math.Pi / 2},
		{"-pi/4", -math.Pi / 4},
		{"3*pi/2", 3 * math.Pi / 2},
		{"0.5*pi", 0.5 * math.Pi},
		{"1.25", 1.25},
		{"-2", -2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseParamExpr(tt.in)
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
