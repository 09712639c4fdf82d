package circuit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for the flat OpenQASM subset the engine accepts:
// one quantum register, one classical register, plain gate calls and
// terminal measurement assignments. No parser generator is involved.
var (
	versionRegex  = regexp.MustCompile(`^OPENQASM\s+[\d.]+;$`)
	includeRegex  = regexp.MustCompile(`^include\s+".+";$`)
	qubitRegex    = regexp.MustCompile(`^(?:qubit\[(\d+)\]\s+(\w+)|qreg\s+(\w+)\[(\d+)\])\s*;$`)
	bitRegex      = regexp.MustCompile(`^(?:bit\[(\d+)\]\s+(\w+)|creg\s+(\w+)\[(\d+)\])\s*;$`)
	gateCallRegex = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(\w+\[\d+\](?:\s*,\s*\w+\[\d+\])*)\s*;$`)
	operandRegex  = regexp.MustCompile(`(\w+)\[(\d+)\]`)
	measureRegex  = regexp.MustCompile(`^(\w+)\[(\d+)\]\s*=\s*measure\s+(\w+)\[(\d+)\]\s*;$`)
	piExprRegex   = regexp.MustCompile(`^(-)?(?:(\d+(?:\.\d+)?)\s*\*\s*)?pi(?:\s*/\s*(\d+(?:\.\d+)?))?$`)
)

// ParseQASM parses a flat OpenQASM 3 program (qasm2 register declarations
// are tolerated) into a validated Circuit.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	quantumReg := ""
	classicalReg := ""

	for i, raw := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lineNo := i + 1

		if versionRegex.MatchString(line) || includeRegex.MatchString(line) {
			continue
		}
		if m := qubitRegex.FindStringSubmatch(line); m != nil {
			size, name := declSizeName(m)
			if quantumReg != "" {
				return nil, fmt.Errorf("line %d: second quantum register %q (flat programs use one)", lineNo, name)
			}
			quantumReg = name
			c.NumQubits = size
			continue
		}
		if m := bitRegex.FindStringSubmatch(line); m != nil {
			size, name := declSizeName(m)
			if classicalReg != "" {
				return nil, fmt.Errorf("line %d: second classical register %q", lineNo, name)
			}
			classicalReg = name
			c.NumBits = size
			continue
		}
		if m := measureRegex.FindStringSubmatch(line); m != nil {
			bit, _ := strconv.Atoi(m[2])
			qubit, _ := strconv.Atoi(m[4])
			if m[1] != classicalReg || m[3] != quantumReg {
				return nil, fmt.Errorf("line %d: measure references undeclared register", lineNo)
			}
			c.Measures = append(c.Measures, Measure{Qubit: qubit, Bit: bit})
			continue
		}
		if m := gateCallRegex.FindStringSubmatch(line); m != nil {
			g, err := parseGateCall(m, quantumReg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			c.Gates = append(c.Gates, g)
			continue
		}
		return nil, fmt.Errorf("line %d: unsupported statement %q", lineNo, line)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func declSizeName(m []string) (int, string) {
	if m[1] != "" {
		size, _ := strconv.Atoi(m[1])
		return size, m[2]
	}
	size, _ := strconv.Atoi(m[4])
	return size, m[3]
}

func parseGateCall(m []string, quantumReg string) (Gate, error) {
	name := m[1]
	var params []float64
	if m[2] != "" {
		for _, expr := range strings.Split(m[2], ",") {
			v, err := parseParamExpr(strings.TrimSpace(expr))
			if err != nil {
				return Gate{}, err
			}
			params = append(params, v)
		}
	}
	var qubits []int
	for _, op := range operandRegex.FindAllStringSubmatch(m[3], -1) {
		if op[1] != quantumReg {
			return Gate{}, fmt.Errorf("gate %s references undeclared register %q", name, op[1])
		}
		idx, _ := strconv.Atoi(op[2])
		qubits = append(qubits, idx)
	}
	return NewGate(name, qubits, params...), nil
}

// parseParamExpr evaluates the angle expressions seen in hand-written
// programs: plain floats plus the pi forms "pi", "-pi/2", "3*pi/4".
func parseParamExpr(expr string) (float64, error) {
	if m := piExprRegex.FindStringSubmatch(expr); m != nil {
		v := math.Pi
		if m[2] != "" {
			f, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return 0, err
			}
			v *= f
		}
		if m[3] != "" {
			d, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return 0, err
			}
			if d == 0 {
				return 0, fmt.Errorf("division by zero in %q", expr)
			}
			v /= d
		}
		if m[1] == "-" {
			v = -v
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate parameter %q", expr)
	}
	return v, nil
}

// ToQASM renders the circuit as a flat OpenQASM 3 program.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 3;\n")
	fmt.Fprintf(&sb, "qubit[%d] q;\n", c.NumQubits)
	if c.NumBits > 0 {
		fmt.Fprintf(&sb, "bit[%d] c;\n", c.NumBits)
	}
	sb.WriteString("\n")
	for _, g := range c.Gates {
		sb.WriteString(formatGateCall(g))
		sb.WriteString("\n")
	}
	if len(c.Measures) > 0 {
		sb.WriteString("\n")
		for _, m := range c.Measures {
			fmt.Fprintf(&sb, "c[%d] = measure q[%d];\n", m.Bit, m.Qubit)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func formatGateCall(g Gate) string {
	var sb strings.Builder
	sb.WriteString(g.Name)
	if len(g.Params) > 0 {
		parts := make([]string, len(g.Params))
		for i, p := range g.Params {
			parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(parts, ", "))
	}
	operands := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		operands[i] = fmt.Sprintf("q[%d]", q)
	}
	fmt.Fprintf(&sb, " %s;", strings.Join(operands, ", "))
	return sb.String()
}
