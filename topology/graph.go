package topology

import (
	"fmt"
	"sort"
)

// Graph is an undirected coupling graph over physical qubits numbered
// 0..NumNodes()-1. Adjacency lists are kept sorted so every traversal
// visits neighbors in the same order.
type Graph struct {
	numNodes int
	numEdges int
	adj      [][]int
}

func NewGraph(numNodes int) (*Graph, error) {
	if numNodes < 0 {
		return nil, fmt.Errorf("negative node count %d", numNodes)
	}
	return &Graph{
		numNodes: numNodes,
		adj:      make([][]int, numNodes),
	}, nil
}

func (g *Graph) NumNodes() int {
	return g.numNodes
}

func (g *Graph) NumEdges() int {
	return g.numEdges
}

// AddEdge connects u and v. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(u, v int) error {
	if u < 0 || u >= g.numNodes || v < 0 || v >= g.numNodes {
		return fmt.Errorf("edge (%d, %d) out of range [0, %d)", u, v, g.numNodes)
	}
	if u == v {
		return fmt.Errorf("self-loop on node %d", u)
	}
	if g.HasEdge(u, v) {
		return nil
	}
	g.adj[u] = insertSorted(g.adj[u], v)
	g.adj[v] = insertSorted(g.adj[v], u)
	g.numEdges++
	return nil
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= g.numNodes || v < 0 || v >= g.numNodes {
		return false
	}
	i := sort.SearchInts(g.adj[u], v)
	return i < len(g.adj[u]) && g.adj[u][i] == v
}

// Neighbors returns the sorted neighbor list of u. The slice is owned by
// the graph and must not be modified.
func (g *Graph) Neighbors(u int) []int {
	if u < 0 || u >= g.numNodes {
		return nil
	}
	return g.adj[u]
}

func (g *Graph) Degree(u int) int {
	if u < 0 || u >= g.numNodes {
		return 0
	}
	return len(g.adj[u])
}

// Edges lists every edge once as (u, v) with u < v, ascending.
func (g *Graph) Edges() [][2]int {
	edges := make([][2]int, 0, g.numEdges)
	for u := 0; u < g.numNodes; u++ {
		for _, v := range g.adj[u] {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}
