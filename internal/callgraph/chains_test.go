package callgraph

import (
	"testing"

	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(caller, callee string) model.CallEdge {
	return model.CallEdge{CallerFqn: caller, CalleeFqn: callee, ResolvedCalleeFqn: callee}
}

// buildDeepChain grounds scenario S3: A#x -> B#y -> C#z -> D#w -> RestTemplate#post.
func buildDeepChain() *Graph {
	b := NewBuilder()
	for _, fqn := range []string{"A#x()", "B#y()", "C#z()", "D#w()"} {
		b.MarkApplicationMethod(fqn)
	}
	b.AddEdge(edge("A#x()", "B#y()"))
	b.AddEdge(edge("B#y()", "C#z()"))
	b.AddEdge(edge("C#z()", "D#w()"))
	b.AddEdge(edge("D#w()", "RestTemplate#post()"))
	return b.Freeze()
}

func isRestTemplate(fqn string) bool {
	return fqn == "RestTemplate#post()" || fqn == "RestTemplate#getForObject()"
}

func TestChainsToSinks_S3_DepthRespected(t *testing.T) {
	g := buildDeepChain()

	t.Run("maxDepth 3 yields no chain", func(t *testing.T) {
		chains := g.ChainsToSinks("A#x()", isRestTemplate, 3)
		assert.Empty(t, chains)
	})

	t.Run("maxDepth 4 yields exactly one chain reaching the sink", func(t *testing.T) {
		chains := g.ChainsToSinks("A#x()", isRestTemplate, 4)
		require.Len(t, chains, 1)
		assert.Equal(t, []string{"A#x()", "B#y()", "C#z()", "D#w()", "RestTemplate#post()"}, chains[0])
	})
}

func TestChainsToSinks_S1_DirectCall(t *testing.T) {
	b := NewBuilder()
	b.MarkApplicationMethod("TxService#txMethod()")
	b.AddEdge(edge("TxService#txMethod()", "RestTemplate#getForObject()"))
	g := b.Freeze()

	chains := g.ChainsToSinks("TxService#txMethod()", isRestTemplate, 30)
	require.Len(t, chains, 1)
	assert.Equal(t, "TxService#txMethod()", chains[0][0])
	assert.Equal(t, "RestTemplate#getForObject()", chains[0][len(chains[0])-1])
}

func TestChainsToSinks_MaxDepthZero(t *testing.T) {
	b := NewBuilder()
	b.MarkApplicationMethod("M#entry()")
	b.AddEdge(edge("M#entry()", "RestTemplate#getForObject()"))
	g := b.Freeze()

	t.Run("entry itself is the sink", func(t *testing.T) {
		chains := g.ChainsToSinks("M#entry()", func(fqn string) bool { return fqn == "M#entry()" }, 0)
		require.Len(t, chains, 1)
		assert.Equal(t, []string{"M#entry()"}, chains[0])
	})

	t.Run("entry is not the sink", func(t *testing.T) {
		chains := g.ChainsToSinks("M#entry()", isRestTemplate, 0)
		assert.Empty(t, chains)
	})
}

func TestChainsToSinks_SelfRecursionNoRepeat(t *testing.T) {
	b := NewBuilder()
	b.MarkApplicationMethod("M#recurse()")
	b.AddEdge(edge("M#recurse()", "M#recurse()"))
	g := b.Freeze()

	chains := g.ChainsToSinks("M#recurse()", func(fqn string) bool { return fqn == "NoSuchSink" }, 10)
	assert.Empty(t, chains, "a self-loop with no sink must terminate, not report M twice")
}

func TestChainsToSinks_NilPredicate(t *testing.T) {
	g := buildDeepChain()
	assert.Nil(t, g.ChainsToSinks("A#x()", nil, 10))
}

func TestChainsToSinks_EmptyEntryPointProducesNoChains(t *testing.T) {
	g := buildDeepChain()
	chains := g.ChainsToSinks("NoSuchMethod", isRestTemplate, 10)
	assert.Empty(t, chains)
}

func TestChainsToSinks_LibraryBoundaryStopsExpansion(t *testing.T) {
	b := NewBuilder()
	b.MarkApplicationMethod("M#entry()")
	// LibCall is NOT marked as an application method; its own outgoing edge
	// (to a sink) must not be traversed because expansion stops at the
	// library boundary unless LibCall itself satisfies the sink predicate.
	b.AddEdge(edge("M#entry()", "LibCall#do()"))
	b.AddEdge(edge("LibCall#do()", "RestTemplate#post()"))
	g := b.Freeze()

	chains := g.ChainsToSinks("M#entry()", isRestTemplate, 10)
	assert.Empty(t, chains, "library methods are traversal sinks unless they satisfy the predicate themselves")
}

func TestReachable_StopsAtLibraryBoundary(t *testing.T) {
	g := buildDeepChain()
	reached := g.Reachable("A#x()")
	assert.True(t, reached["RestTemplate#post()"], "the library sink itself is visited")
	assert.True(t, reached["D#w()"])
	assert.True(t, reached["A#x()"])
}
