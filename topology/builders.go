package topology

import "fmt"

// Builders for the coupling shapes device settings can name. Node
// numbering follows the usual conventions: lines and rings count along
// the chain, grids go row-major, stars put the hub at node 0.

func Line(n int) (*Graph, error) {
	g, err := NewGraph(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < n; i++ {
		if err := g.AddEdge(i, i+1); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func Ring(n int) (*Graph, error) {
	g, err := Line(n)
	if err != nil {
		return nil, err
	}
	if n >= 3 {
		if err := g.AddEdge(n-1, 0); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func Grid(rows, cols int) (*Graph, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("negative grid dimensions %dx%d", rows, cols)
	}
	g, err := NewGraph(rows * cols)
	if err != nil {
		return nil, err
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			node := r*cols + c
			if c+1 < cols {
				if err := g.AddEdge(node, node+1); err != nil {
					return nil, err
				}
			}
			if r+1 < rows {
				if err := g.AddEdge(node, node+cols); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func Star(n int) (*Graph, error) {
	g, err := NewGraph(n)
	if err != nil {
		return nil, err
	}
	for i := 1; i < n; i++ {
		if err := g.AddEdge(0, i); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func Full(n int) (*Graph, error) {
	g, err := NewGraph(n)
	if err != nil {
		return nil, err
	}
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if err := g.AddEdge(u, v); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
