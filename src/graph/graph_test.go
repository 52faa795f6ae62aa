package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddEdgeIsSymmetric(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	require(t, g.AddNode(2))
	require(t, g.AddEdge(1, 2))
	assert.True(t, g.Interferes(1, 2))
	assert.True(t, g.Interferes(2, 1))
	assert.Equal(t, 1, g.Degree(1))
	assert.Equal(t, 1, g.Degree(2))
}

func TestSelfEdgeIsNoop(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	require(t, g.AddEdge(1, 1))
	assert.True(t, g.HasNode(1))
	assert.Equal(t, 0, g.Degree(1))
}

func TestRemoveNodeClearsEdges(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	require(t, g.AddNode(2))
	require(t, g.AddNode(3))
	require(t, g.AddEdge(1, 2))
	require(t, g.AddEdge(1, 3))
	g.RemoveNode(1)
	assert.False(t, g.HasNode(1))
	assert.Equal(t, 0, g.Degree(2))
	assert.Equal(t, 0, g.Degree(3))
}

func TestNodeWithDegreeLessThanPicksSmallestID(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	require(t, g.AddNode(2))
	require(t, g.AddNode(3))
	require(t, g.AddNode(4)) // degree 0, under the threshold
	require(t, g.AddNode(5)) // degree 0 too; the smaller id 4 must win
	require(t, g.AddEdge(1, 2))
	require(t, g.AddEdge(1, 3))
	id, ok := g.NodeWithDegreeLessThan(1)
	assert.True(t, ok)
	assert.Equal(t, 4, id)
}

func TestAddNodeDuplicateIsFatal(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	err := g.AddNode(1)
	assert.Error(t, err)
}

func TestAddEdgeMissingEndpointIsFatal(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	err := g.AddEdge(1, 2)
	assert.Error(t, err)

	g2 := New()
	require(t, g2.AddNode(2))
	err = g2.AddEdge(1, 2)
	assert.Error(t, err)
}

func TestClearResetsGraph(t *testing.T) {
	g := New()
	require(t, g.AddNode(1))
	require(t, g.AddNode(2))
	require(t, g.AddEdge(1, 2))
	g.Clear()
	assert.True(t, g.IsEmpty())
	assert.False(t, g.HasNode(1))
	assert.False(t, g.HasNode(2))
}

func require(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}
