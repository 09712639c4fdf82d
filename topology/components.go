package topology

import (
	"github.com/spakin/disjoint"
)

// Components partitions the nodes into connected components with a
// disjoint-set forest. Each component is sorted ascending and components
// are ordered by their smallest member.
func (g *Graph) Components() [][]int {
	elems := make([]*disjoint.Element, g.numNodes)
	for i := range elems {
		elems[i] = disjoint.NewElement()
	}
	for u := 0; u < g.numNodes; u++ {
		for _, v := range g.adj[u] {
			if u < v {
				disjoint.Union(elems[u], elems[v])
			}
		}
	}
	byRoot := make(map[*disjoint.Element][]int, g.numNodes)
	roots := make([]*disjoint.Element, 0)
	for i, e := range elems {
		r := e.Find()
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	comps := make([][]int, 0, len(roots))
	for _, r := range roots {
		comps = append(comps, byRoot[r])
	}
	return comps
}

// Connected reports whether u and v lie in the same component.
func (g *Graph) Connected(u, v int) bool {
	if u < 0 || u >= g.numNodes || v < 0 || v >= g.numNodes {
		return false
	}
	if u == v {
		return true
	}
	return g.Distances(u)[v] != -1
}
