package topology

// Distances returns BFS hop counts from src. Unreachable nodes get -1.
func (g *Graph) Distances(src int) []int {
	dist := make([]int, g.numNodes)
	for i := range dist {
		dist[i] = -1
	}
	if src < 0 || src >= g.numNodes {
		return dist
	}
	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.adj[u] {
			if dist[v] == -1 {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// ShortestPath returns the lexicographically smallest shortest path from
// u to v, both endpoints included, or false when no path exists.
func (g *Graph) ShortestPath(u, v int) ([]int, bool) {
	paths := g.ShortestPaths(u, v, 1)
	if len(paths) == 0 {
		return nil, false
	}
	return paths[0], true
}

// ShortestPaths enumerates shortest u-v paths up to max. The walk follows
// distance-decreasing edges toward v with neighbors in ascending order,
// so paths come out in lexicographic order and the first one is always
// the lexicographically smallest.
func (g *Graph) ShortestPaths(u, v, max int) [][]int {
	if u < 0 || u >= g.numNodes || v < 0 || v >= g.numNodes || max <= 0 {
		return nil
	}
	distToV := g.Distances(v)
	if distToV[u] == -1 {
		return nil
	}
	var paths [][]int
	path := make([]int, 0, distToV[u]+1)
	var walk func(node int)
	walk = func(node int) {
		if len(paths) >= max {
			return
		}
		path = append(path, node)
		if node == v {
			paths = append(paths, append([]int(nil), path...))
		} else {
			for _, w := range g.adj[node] {
				if distToV[w] == distToV[node]-1 {
					walk(w)
				}
			}
		}
		path = path[:len(path)-1]
	}
	walk(u)
	return paths
}
