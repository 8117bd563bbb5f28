package graphstore_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/internal/graphstore"
)

func TestSetVertexAttribute(t *testing.T) {
	t.Parallel()

	s := graphstore.NewMemory[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed())

	require.NoError(t, g.AddVertex("spectrum", graph.VertexAttribute("shape", "box")))
	require.NoError(t, s.SetVertexAttribute("spectrum", "xlabel", "1ms"))

	_, props, err := g.VertexWithProperties("spectrum")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"shape": "box", "xlabel": "1ms"}, props.Attributes)

	props.Attributes["xlabel"] = "changed"
	_, again, err := s.Vertex("spectrum")
	require.NoError(t, err)
	assert.Equal(t, "1ms", again.Attributes["xlabel"])

	err = s.SetVertexAttribute("missing", "xlabel", "1ms")
	require.ErrorIs(t, err, graph.ErrVertexNotFound)
}

func TestEdges(t *testing.T) {
	t.Parallel()

	s := graphstore.NewMemory[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed())

	require.NoError(t, g.AddVertex("cluster"))
	require.NoError(t, g.AddVertex("spectrum"))
	require.NoError(t, g.AddEdge("cluster", "spectrum", graph.EdgeAttribute("label", "logT")))

	err := s.RemoveVertex("cluster")
	require.ErrorIs(t, err, graph.ErrVertexHasEdges)

	require.NoError(t, g.UpdateEdge("cluster", "spectrum", graph.EdgeAttribute("color", "#ff0000")))

	edges, err := s.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "#ff0000", edges[0].Properties.Attributes["color"])

	require.NoError(t, g.RemoveEdge("cluster", "spectrum"))
	require.NoError(t, s.RemoveVertex("cluster"))

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreatesCycle(t *testing.T) {
	t.Parallel()

	s := graphstore.NewMemory[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.PreventCycles())

	for _, name := range []string{"start", "cluster", "spectrum"} {
		require.NoError(t, g.AddVertex(name))
	}

	require.NoError(t, g.AddEdge("start", "cluster"))
	require.NoError(t, g.AddEdge("cluster", "spectrum"))

	cycle, err := s.CreatesCycle("spectrum", "start")
	require.NoError(t, err)
	assert.True(t, cycle)

	cycle, err = s.CreatesCycle("start", "spectrum")
	require.NoError(t, err)
	assert.False(t, cycle)

	require.Error(t, g.AddEdge("spectrum", "start"))

	_, err = s.CreatesCycle("missing", "start")
	require.ErrorIs(t, err, graph.ErrVertexNotFound)
}
