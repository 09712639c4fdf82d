package transpiler

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/qroute-team/qroute-engine/circuit"
	"github.com/qroute-team/qroute-engine/topology"
)

// Layout is the logical-to-physical qubit assignment. It is owned by a
// single compile call and threaded through the pipeline as an explicit
// value; both directions are kept so a swap updates in O(1). Unassigned
// slots hold -1 when the device has more qubits than the circuit.
type Layout struct {
	LogToPhys []int
	PhysToLog []int
}

func NewLayout(numLogical, numPhysical int) *Layout {
	l := &Layout{
		LogToPhys: make([]int, numLogical),
		PhysToLog: make([]int, numPhysical),
	}
	for i := range l.LogToPhys {
		l.LogToPhys[i] = -1
	}
	for i := range l.PhysToLog {
		l.PhysToLog[i] = -1
	}
	return l
}

func (l *Layout) Assign(logical, physical int) {
	l.LogToPhys[logical] = physical
	l.PhysToLog[physical] = logical
}

func (l *Layout) Physical(logical int) int {
	return l.LogToPhys[logical]
}

func (l *Layout) Logical(physical int) int {
	return l.PhysToLog[physical]
}

// SwapPhysical exchanges the logical occupants of two physical slots.
// Either slot may be unoccupied.
func (l *Layout) SwapPhysical(p1, p2 int) {
	l1, l2 := l.PhysToLog[p1], l.PhysToLog[p2]
	l.PhysToLog[p1], l.PhysToLog[p2] = l2, l1
	if l1 >= 0 {
		l.LogToPhys[l1] = p2
	}
	if l2 >= 0 {
		l.LogToPhys[l2] = p1
	}
}

func (l *Layout) Clone() *Layout {
	o := &Layout{
		LogToPhys: make([]int, len(l.LogToPhys)),
		PhysToLog: make([]int, len(l.PhysToLog)),
	}
	copy(o.LogToPhys, l.LogToPhys)
	copy(o.PhysToLog, l.PhysToLog)
	return o
}

func (l *Layout) String() string {
	return fmt.Sprintf("log->phys%v", l.LogToPhys)
}

// interactionProfile aggregates the two-qubit structure of a circuit for
// layout selection.
type interactionProfile struct {
	pair  map[[2]int]int // normalized (lo, hi) pair -> gate count
	total []int          // per-logical-qubit two-qubit gate count
}

func profileInteractions(c *circuit.Circuit) *interactionProfile {
	p := &interactionProfile{
		pair:  make(map[[2]int]int),
		total: make([]int, c.NumQubits),
	}
	for _, g := range c.Gates {
		if !g.IsTwoQubit() {
			continue
		}
		a, b := g.Qubits[0], g.Qubits[1]
		if a > b {
			a, b = b, a
		}
		p.pair[[2]int{a, b}]++
		p.total[g.Qubits[0]]++
		p.total[g.Qubits[1]]++
	}
	return p
}

func (p *interactionProfile) weight(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return p.pair[[2]int{a, b}]
}

// heaviestPair returns the most interacting logical pair, breaking ties
// toward the lexicographically smallest pair. ok is false when the
// circuit has no two-qubit gates.
func (p *interactionProfile) heaviestPair() (pair [2]int, ok bool) {
	best := 0
	for q, w := range p.pair {
		if w > best || (w == best && ok && lessPair(q, pair)) {
			pair = q
			best = w
			ok = true
		} else if !ok {
			pair = q
			best = w
			ok = true
		}
	}
	return pair, ok
}

func lessPair(a, b [2]int) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// selectLayout produces the starting assignment: the most interacting
// logical pair goes onto a well-connected physical edge, then remaining
// logical qubits are placed one at a time next to their already placed
// partners. Deterministic for identical inputs; every tie breaks toward
// the smallest index.
func selectLayout(c *circuit.Circuit, g *topology.Graph) (*Layout, error) {
	n, m := c.NumQubits, g.NumNodes()
	if n > m {
		return nil, fmt.Errorf("%w: circuit needs %d qubits, device has %d",
			ErrorInsufficientPhysicalQubits, n, m)
	}
	lay := NewLayout(n, m)
	prof := profileInteractions(c)

	placed := mapset.NewSet()
	usedPhys := mapset.NewSet()
	place := func(logical, physical int) {
		lay.Assign(logical, physical)
		placed.Add(logical)
		usedPhys.Add(physical)
	}

	if seed, ok := prof.heaviestPair(); ok && g.NumEdges() > 0 {
		u, v := bestSeedEdge(g)
		// the busier endpoint of the pair takes the better connected slot
		a, b := seed[0], seed[1]
		if prof.total[b] > prof.total[a] {
			a, b = b, a
		}
		if g.Degree(v) > g.Degree(u) {
			u, v = v, u
		}
		place(a, u)
		place(b, v)

		for placed.Cardinality() < n {
			next := nextLogical(prof, placed, n)
			phys := bestSlotFor(next, prof, g, lay, placed, usedPhys)
			place(next, phys)
		}
		return lay, nil
	}

	// no two-qubit structure to exploit: identity placement
	for q := 0; q < n; q++ {
		place(q, q)
	}
	return lay, nil
}

// bestSeedEdge picks the edge with the highest degree sum, ties toward
// the smallest (u, v).
func bestSeedEdge(g *topology.Graph) (int, int) {
	edges := g.Edges()
	best := edges[0]
	bestScore := g.Degree(best[0]) + g.Degree(best[1])
	for _, e := range edges[1:] {
		score := g.Degree(e[0]) + g.Degree(e[1])
		if score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best[0], best[1]
}

// nextLogical picks the unplaced logical qubit with the strongest
// connection to the placed set, falling back to overall interaction
// count, then index order.
func nextLogical(prof *interactionProfile, placed mapset.Set, n int) int {
	next := -1
	bestConn, bestTotal := -1, -1
	for q := 0; q < n; q++ {
		if placed.Contains(q) {
			continue
		}
		conn := 0
		for pair, w := range prof.pair {
			if pair[0] == q && placed.Contains(pair[1]) {
				conn += w
			} else if pair[1] == q && placed.Contains(pair[0]) {
				conn += w
			}
		}
		if conn > bestConn || (conn == bestConn && prof.total[q] > bestTotal) {
			next = q
			bestConn = conn
			bestTotal = prof.total[q]
		}
	}
	return next
}

// bestSlotFor scores free physical slots for a logical qubit: first by
// how many weighted interactions with placed partners become adjacent,
// then by closeness to the heaviest placed partner, then by index.
func bestSlotFor(logical int, prof *interactionProfile, g *topology.Graph, lay *Layout, placed mapset.Set, usedPhys mapset.Set) int {
	m := g.NumNodes()

	partner := -1
	partnerWeight := 0
	for other := 0; other < len(prof.total); other++ {
		if other == logical || !placed.Contains(other) {
			continue
		}
		if w := prof.weight(logical, other); w > partnerWeight {
			partner = other
			partnerWeight = w
		}
	}
	var distToPartner []int
	if partner >= 0 {
		distToPartner = g.Distances(lay.Physical(partner))
	}

	best := -1
	bestGain := -1
	bestDist := -1
	for p := 0; p < m; p++ {
		if usedPhys.Contains(p) {
			continue
		}
		gain := 0
		for _, nb := range g.Neighbors(p) {
			if resident := lay.Logical(nb); resident >= 0 {
				gain += prof.weight(logical, resident)
			}
		}
		dist := 0
		if distToPartner != nil {
			dist = distToPartner[p]
			if dist == -1 {
				// unreachable slots rank last
				dist = m + 1
			}
		}
		if best == -1 || gain > bestGain || (gain == bestGain && dist < bestDist) {
			best = p
			bestGain = gain
			bestDist = dist
		}
	}
	return best
}
