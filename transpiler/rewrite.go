package transpiler

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/qroute-team/qroute-engine/circuit"
)

const maxRewriteDepth = 32

// paramExpr is a fixed linear transform of a source gate parameter:
// scale*params[source] + offset, or a plain constant when source is -1.
type paramExpr struct {
	source int
	scale  float64
	offset float64
}

func constant(v float64) paramExpr { return paramExpr{source: -1, offset: v} }
func param(i int) paramExpr        { return paramExpr{source: i, scale: 1} }
func scaled(i int, scale, offset float64) paramExpr {
	return paramExpr{source: i, scale: scale, offset: offset}
}

func (e paramExpr) eval(params []float64) float64 {
	if e.source < 0 {
		return e.offset
	}
	return e.scale*params[e.source] + e.offset
}

// template is one output gate of a decomposition rule. qubits index into
// the source gate's operand list.
type template struct {
	name   string
	qubits []int
	params []paramExpr
}

func t1(name string, q int, params ...paramExpr) template {
	return template{name: name, qubits: []int{q}, params: params}
}

func t2(name string, q0, q1 int, params ...paramExpr) template {
	return template{name: name, qubits: []int{q0, q1}, params: params}
}

// decompositions is the rewrite table: one rule per gate name, applied
// recursively until every emitted gate is native. Every identity holds
// up to global phase. Rules toward the rz/sx family and rules toward
// the rx/ry family coexist; recursion follows whichever chain reaches
// the requested basis, and the depth guard stops a chain that never
// lands in it.
var decompositions = map[string][]template{
	"id":  {},
	"x":   {t1("rx", 0, constant(math.Pi))},
	"y":   {t1("rz", 0, constant(math.Pi)), t1("x", 0)},
	"z":   {t1("rz", 0, constant(math.Pi))},
	"h":   {t1("rz", 0, constant(math.Pi/2)), t1("sx", 0), t1("rz", 0, constant(math.Pi/2))},
	"s":   {t1("rz", 0, constant(math.Pi/2))},
	"sdg": {t1("rz", 0, constant(-math.Pi/2))},
	"t":   {t1("rz", 0, constant(math.Pi/4))},
	"tdg": {t1("rz", 0, constant(-math.Pi/4))},
	"sx":  {t1("rx", 0, constant(math.Pi/2))},
	"rx": {
		t1("rz", 0, constant(math.Pi/2)),
		t1("sx", 0),
		t1("rz", 0, scaled(0, 1, math.Pi)),
		t1("sx", 0),
		t1("rz", 0, constant(math.Pi/2)),
	},
	"ry": {
		t1("sx", 0),
		t1("rz", 0, scaled(0, 1, math.Pi)),
		t1("sx", 0),
		t1("rz", 0, constant(math.Pi)),
	},
	"rz": {
		t1("rx", 0, constant(-math.Pi/2)),
		t1("ry", 0, param(0)),
		t1("rx", 0, constant(math.Pi/2)),
	},
	"cx": {
		t1("ry", 0, constant(math.Pi/2)),
		t2("rxx", 0, 1, constant(math.Pi/2)),
		t1("rx", 0, constant(-math.Pi/2)),
		t1("rx", 1, constant(-math.Pi/2)),
		t1("ry", 0, constant(-math.Pi/2)),
	},
	"cz":   {t1("h", 1), t2("cx", 0, 1), t1("h", 1)},
	"swap": {t2("cx", 0, 1), t2("cx", 1, 0), t2("cx", 0, 1)},
	"cp": {
		t1("rz", 0, scaled(0, 0.5, 0)),
		t2("cx", 0, 1),
		t1("rz", 1, scaled(0, -0.5, 0)),
		t2("cx", 0, 1),
		t1("rz", 1, scaled(0, 0.5, 0)),
	},
	"rzz": {t2("cx", 0, 1), t1("rz", 1, param(0)), t2("cx", 0, 1)},
	"rxx": {
		t1("h", 0), t1("h", 1),
		t2("cx", 0, 1), t1("rz", 1, param(0)), t2("cx", 0, 1),
		t1("h", 0), t1("h", 1),
	},
	"ryy": {
		t1("rx", 0, constant(math.Pi/2)), t1("rx", 1, constant(math.Pi/2)),
		t2("cx", 0, 1), t1("rz", 1, param(0)), t2("cx", 0, 1),
		t1("rx", 0, constant(-math.Pi/2)), t1("rx", 1, constant(-math.Pi/2)),
	},
}

// RewriteCache memoizes decomposition expansions keyed by basis, gate
// name and parameter values. Entries hold slot-indexed gate sequences
// remapped onto concrete operands at use, so one cache can be shared
// read-mostly across parallel compilations.
type RewriteCache struct {
	entries sync.Map
}

func NewRewriteCache() *RewriteCache {
	return &RewriteCache{}
}

func cacheKey(basisName, gateName string, params []float64) string {
	var sb strings.Builder
	sb.WriteString(basisName)
	sb.WriteByte('|')
	sb.WriteString(gateName)
	for _, p := range params {
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatFloat(p, 'b', -1, 64))
	}
	return sb.String()
}

// rewriteGate expands one gate into the target basis. Expansion runs in
// slot space (operand indices 0 and 1) so cached entries are independent
// of the concrete qubits.
func rewriteGate(g circuit.Gate, basis circuit.Basis, cache *RewriteCache) ([]circuit.Gate, error) {
	if basis.Contains(g.Name) {
		return []circuit.Gate{g}, nil
	}
	key := ""
	if cache != nil {
		key = cacheKey(basis.Name, g.Name, g.Params)
		if cached, ok := cache.entries.Load(key); ok {
			return remapSlots(cached.([]circuit.Gate), g.Qubits), nil
		}
	}
	slots := make([]int, g.Arity())
	for i := range slots {
		slots[i] = i
	}
	expanded, err := expandToBasis(circuit.NewGate(g.Name, slots, g.Params...), basis, 0)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.entries.Store(key, expanded)
	}
	return remapSlots(expanded, g.Qubits), nil
}

func expandToBasis(g circuit.Gate, basis circuit.Basis, depth int) ([]circuit.Gate, error) {
	if basis.Contains(g.Name) {
		return []circuit.Gate{g}, nil
	}
	if depth >= maxRewriteDepth {
		return nil, fmt.Errorf("%w: rewriting %q exceeds depth %d", ErrorNoDecompositionRule, g.Name, maxRewriteDepth)
	}
	rule, ok := decompositions[g.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrorNoDecompositionRule, g.Name)
	}
	out := make([]circuit.Gate, 0, len(rule))
	for _, t := range rule {
		qubits := make([]int, len(t.qubits))
		for i, slot := range t.qubits {
			qubits[i] = g.Qubits[slot]
		}
		params := make([]float64, len(t.params))
		for i, e := range t.params {
			params[i] = e.eval(g.Params)
		}
		sub, err := expandToBasis(circuit.NewGate(t.name, qubits, params...), basis, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func remapSlots(slotGates []circuit.Gate, operands []int) []circuit.Gate {
	out := make([]circuit.Gate, 0, len(slotGates))
	for _, g := range slotGates {
		qubits := make([]int, len(g.Qubits))
		for i, slot := range g.Qubits {
			qubits[i] = operands[slot]
		}
		out = append(out, circuit.NewGate(g.Name, qubits, g.Params...))
	}
	return out
}

// rewriteCircuit replaces every non-native gate with its decomposition.
// The identity gate decomposes to nothing and is dropped.
func rewriteCircuit(ctx context.Context, routed *circuit.Circuit, basis circuit.Basis, cache *RewriteCache) (*circuit.Circuit, error) {
	out := circuit.New(routed.NumQubits, routed.Name)
	out.NumBits = routed.NumBits
	for _, g := range routed.Gates {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrorCompilationCancelled, ctx.Err())
		default:
		}
		gates, err := rewriteGate(g, basis, cache)
		if err != nil {
			return nil, err
		}
		out.Append(gates...)
	}
	out.Measures = append(out.Measures, routed.Measures...)
	return out, nil
}
