//go:build unit
// +build unit

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge(t *testing.T) {
	g, err := NewGraph(4)
	require.NoError(t, err)

	assert.NoError(t, g.AddEdge(2, 0))
	assert.NoError(t, g.AddEdge(0, 1))
	assert.True(t, g.HasEdge(0, 2))
	assert.True(t, g.HasEdge(2, 0))
	assert.Equal(t, 2, g.NumEdges())

	// duplicates are no-ops
	assert.NoError(t, g.AddEdge(0, 2))
	assert.Equal(t, 2, g.NumEdges())

	assert.ErrorContains(t, g.AddEdge(0, 4), "out of range")
	assert.ErrorContains(t, g.AddEdge(-1, 0), "out of range")
	assert.ErrorContains(t, g.AddEdge(3, 3), "self-loop")
}

func TestNewGraphNegative(t *testing.T) {
	_, err := NewGraph(-2)
	assert.ErrorContains(t, err, "negative node count")
}

func TestNeighborsSorted(t *testing.T) {
	g, err := NewGraph(5)
	require.NoError(t, err)
	for _, e := range [][2]int{{2, 4}, {2, 0}, {2, 3}, {2, 1}} {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	assert.Equal(t, []int{0, 1, 3, 4}, g.Neighbors(2))
	assert.Equal(t, 4, g.Degree(2))
	assert.Equal(t, 0, g.Degree(42))
	assert.Nil(t, g.Neighbors(42))
}

func TestEdges(t *testing.T) {
	g, err := NewGraph(4)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(3, 1))
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(2, 0))
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 3}}, g.Edges())
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*Graph, error)
		wantNodes int
		wantEdges [][2]int
	}{
		{
			name:      "line of four",
			build:     func() (*Graph, error) { return Line(4) },
			wantNodes: 4,
			wantEdges: [][2]int{{0, 1}, {1, 2}, {2, 3}},
		},
		{
			name:      "single node line",
			build:     func() (*Graph, error) { return Line(1) },
			wantNodes: 1,
			wantEdges: [][2]int{},
		},
		{
			name:      "ring of four",
			build:     func() (*Graph, error) { return Ring(4) },
			wantNodes: 4,
			wantEdges: [][2]int{{0, 1}, {0, 3}, {1, 2}, {2, 3}},
		},
		{
			name:      "ring of two collapses to line",
			build:     func() (*Graph, error) { return Ring(2) },
			wantNodes: 2,
			wantEdges: [][2]int{{0, 1}},
		},
		{
			name:      "two by three grid",
			build:     func() (*Graph, error) { return Grid(2, 3) },
			wantNodes: 6,
			wantEdges: [][2]int{{0, 1}, {0, 3}, {1, 2}, {1, 4}, {2, 5}, {3, 4}, {4, 5}},
		},
		{
			name:      "star of five",
			build:     func() (*Graph, error) { return Star(5) },
			wantNodes: 5,
			wantEdges: [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}},
		},
		{
			name:      "full on four",
			build:     func() (*Graph, error) { return Full(4) },
			wantNodes: 4,
			wantEdges: [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantNodes, g.NumNodes())
			assert.Equal(t, tt.wantEdges, g.Edges())
		})
	}
}

func TestGridNegative(t *testing.T) {
	_, err := Grid(-1, 3)
	assert.ErrorContains(t, err, "negative grid dimensions")
}
