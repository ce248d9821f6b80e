package packagegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindCycles_S4 grounds scenario S4: p.A has a field of type q.B, q.B
// has a field of type p.A.
func TestFindCycles_S4(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("p", "q")
	b.AddEdge("q", "p")
	g := b.Freeze()

	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"p", "q", "p"}, cycles[0].Packages)
}

func TestFindCycles_SelfEdgeSuppressed(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("p", "p")
	g := b.Freeze()

	assert.Empty(t, g.Dependencies("p"), "self-edges are suppressed at ingestion")
	assert.Empty(t, g.FindCycles())
}

func TestFindCycles_NoCycle(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("p", "q")
	b.AddEdge("q", "r")
	g := b.Freeze()

	assert.Empty(t, g.FindCycles())
}

func TestFindCycles_MultipleIndependentSCCs(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("a", "b")
	b.AddEdge("b", "a")
	b.AddEdge("x", "y")
	b.AddEdge("y", "x")
	g := b.Freeze()

	cycles := g.FindCycles()
	assert.Len(t, cycles, 2)
}

func TestFindCycles_CanonicalizationDeduplicatesRotations(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("c", "a")
	b.AddEdge("a", "b")
	b.AddEdge("b", "c")
	g := b.Freeze()

	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, "a", cycles[0].Packages[0], "canonical rotation starts at the lexicographically smallest node")
	assert.Equal(t, cycles[0].Packages[0], cycles[0].Packages[len(cycles[0].Packages)-1])
}

func TestGraph_SelfEdgeSuppressedInPackageSet(t *testing.T) {
	b := NewBuilder()
	b.AddEdge("p", "p")
	g := b.Freeze()

	assert.Contains(t, g.Packages(), "p", "the package itself is still registered as a node")
	assert.False(t, g.HasEdge("p", "p"))
}
