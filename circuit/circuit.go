package circuit

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Gate is a single operation over qubit indices. Qubit indices are logical
// before routing and physical after. A Gate is never mutated after creation;
// rewrite stages emit fresh gates.
type Gate struct {
	Name   string
	Qubits []int
	Params []float64
}

func NewGate(name string, qubits []int, params ...float64) Gate {
	q := make([]int, len(qubits))
	copy(q, qubits)
	p := make([]float64, len(params))
	copy(p, params)
	return Gate{Name: name, Qubits: q, Params: p}
}

func (g Gate) Arity() int {
	return len(g.Qubits)
}

func (g Gate) IsTwoQubit() bool {
	return len(g.Qubits) == 2
}

func (g Gate) Clone() Gate {
	return NewGate(g.Name, g.Qubits, g.Params...)
}

func (g Gate) String() string {
	if len(g.Params) == 0 {
		return fmt.Sprintf("%s%v", g.Name, g.Qubits)
	}
	return fmt.Sprintf("%s(%v)%v", g.Name, g.Params, g.Qubits)
}

type gateSpec struct {
	arity     int
	numParams int
}

// knownGates fixes arity and parameter count for the gate vocabulary the
// engine understands. Names outside this table are rejected at validation
// time; names inside it but outside the target basis are handled by the
// rewrite table.
var knownGates = map[string]gateSpec{
	"id":   {1, 0},
	"x":    {1, 0},
	"y":    {1, 0},
	"z":    {1, 0},
	"h":    {1, 0},
	"s":    {1, 0},
	"sdg":  {1, 0},
	"t":    {1, 0},
	"tdg":  {1, 0},
	"sx":   {1, 0},
	"rx":   {1, 1},
	"ry":   {1, 1},
	"rz":   {1, 1},
	"cx":   {2, 0},
	"cz":   {2, 0},
	"swap": {2, 0},
	"cp":   {2, 1},
	"rxx":  {2, 1},
	"ryy":  {2, 1},
	"rzz":  {2, 1},
}

func IsKnownGate(name string) bool {
	_, ok := knownGates[name]
	return ok
}

// Measure records a terminal measurement of one qubit into one classical bit.
type Measure struct {
	Qubit int
	Bit   int
}

// Circuit is an ordered gate sequence over qubits 0..NumQubits-1 with an
// optional terminal measurement layer.
type Circuit struct {
	Name      string
	NumQubits int
	NumBits   int
	Gates     []Gate
	Measures  []Measure
}

func New(numQubits int, name string) *Circuit {
	return &Circuit{
		Name:      name,
		NumQubits: numQubits,
	}
}

func (c *Circuit) Append(gates ...Gate) {
	c.Gates = append(c.Gates, gates...)
}

func (c *Circuit) AppendMeasure(qubit, bit int) {
	c.Measures = append(c.Measures, Measure{Qubit: qubit, Bit: bit})
	if bit >= c.NumBits {
		c.NumBits = bit + 1
	}
}

func (c *Circuit) Clone() *Circuit {
	o := New(c.NumQubits, c.Name)
	o.NumBits = c.NumBits
	o.Gates = make([]Gate, 0, len(c.Gates))
	for _, g := range c.Gates {
		o.Gates = append(o.Gates, g.Clone())
	}
	o.Measures = append(o.Measures, c.Measures...)
	return o
}

// Validate checks every gate against the vocabulary and the qubit range.
// All violations are reported at once.
func (c *Circuit) Validate() error {
	var err error
	if c.NumQubits < 0 {
		err = multierr.Append(err, fmt.Errorf("negative qubit count %d", c.NumQubits))
	}
	for i, g := range c.Gates {
		if vErr := c.validateGate(i, g); vErr != nil {
			err = multierr.Append(err, vErr)
		}
	}
	for i, m := range c.Measures {
		if m.Qubit < 0 || m.Qubit >= c.NumQubits {
			err = multierr.Append(err,
				fmt.Errorf("measure %d: qubit %d out of range [0, %d)", i, m.Qubit, c.NumQubits))
		}
		if m.Bit < 0 {
			err = multierr.Append(err, fmt.Errorf("measure %d: negative bit %d", i, m.Bit))
		}
	}
	if err != nil {
		zap.L().Debug(fmt.Sprintf("circuit %q failed validation/reason:%s", c.Name, err))
	}
	return err
}

func (c *Circuit) validateGate(i int, g Gate) error {
	spec, ok := knownGates[g.Name]
	if !ok {
		return fmt.Errorf("gate %d: unknown gate name %q", i, g.Name)
	}
	if len(g.Qubits) != spec.arity {
		return fmt.Errorf("gate %d: %s takes %d qubits, got %d", i, g.Name, spec.arity, len(g.Qubits))
	}
	if len(g.Params) != spec.numParams {
		return fmt.Errorf("gate %d: %s takes %d parameters, got %d", i, g.Name, spec.numParams, len(g.Params))
	}
	seen := make(map[int]struct{}, len(g.Qubits))
	for _, q := range g.Qubits {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("gate %d: qubit %d out of range [0, %d)", i, q, c.NumQubits)
		}
		if _, dup := seen[q]; dup {
			return fmt.Errorf("gate %d: %s references qubit %d twice", i, g.Name, q)
		}
		seen[q] = struct{}{}
	}
	return nil
}

func (c *Circuit) GateCounts() map[string]int {
	counts := make(map[string]int)
	for _, g := range c.Gates {
		counts[g.Name]++
	}
	return counts
}

func (c *Circuit) TwoQubitGateCount() int {
	n := 0
	for _, g := range c.Gates {
		if g.IsTwoQubit() {
			n++
		}
	}
	return n
}

// Depth is the length of the longest shared-qubit dependency chain, computed
// by tracking the level of the last gate on each qubit.
func (c *Circuit) Depth() int {
	levels := make([]int, c.NumQubits)
	depth := 0
	for _, g := range c.Gates {
		level := 0
		for _, q := range g.Qubits {
			if levels[q] > level {
				level = levels[q]
			}
		}
		level++
		for _, q := range g.Qubits {
			levels[q] = level
		}
		if level > depth {
			depth = level
		}
	}
	return depth
}
