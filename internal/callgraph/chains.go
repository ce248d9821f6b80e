package callgraph

// DefaultGeneralMaxDepth is the default depth bound for chainsToTarget-style
// general chain search.
const DefaultGeneralMaxDepth = 100

// SinkPredicate reports whether fqn satisfies a rule's sink condition. The
// first node on a path for which this returns true terminates the chain.
type SinkPredicate func(fqn string) bool

// ChainsToTarget finds every simple path (DFS, current-path visited set, no
// global pruning across chains) from start to targetFqn. maxDepth bounds
// the number of edges traversed past the start node, so the longest
// reportable chain has maxDepth+1 nodes; a sink 4 edges from the entry
// needs maxDepth >= 4 to be found.
func (g *Graph) ChainsToTarget(start, targetFqn string, maxDepth int) [][]string {
	return g.ChainsToSinks(start, func(fqn string) bool { return fqn == targetFqn }, maxDepth)
}

// ChainsToSinks finds every simple path from start where the path's last
// node satisfies predicate, searching depth-first with an explicit
// per-path visited set (not global, so distinct simple paths through a
// shared intermediate node are all found). Traversal does not descend past
// a library-boundary node unless that node itself satisfies predicate, in
// which case the chain (including that node) is recorded and search at
// that node stops.
//
// maxDepth=0 yields, per the spec's boundary behavior, a single
// length-1 chain containing only start iff predicate(start) holds.
func (g *Graph) ChainsToSinks(start string, predicate SinkPredicate, maxDepth int) [][]string {
	if predicate == nil {
		return nil
	}

	var chains [][]string
	path := []string{start}
	onPath := map[string]bool{start: true}

	// depth is the number of edges traversed to reach the node currently
	// being visited (0 at start). maxDepth bounds that edge count, so a
	// chain of maxDepth+1 nodes is the longest this search will assemble.
	var dfs func(node string, depth int)
	dfs = func(node string, depth int) {
		if predicate(node) {
			chains = append(chains, append([]string{}, path...))
			return // a satisfying node terminates the chain; don't expand past it
		}
		if depth >= maxDepth {
			return // depth bound reached without a sink: backtrack
		}
		if !g.IsApplicationMethod(node) && node != start {
			return // library boundary and not itself a sink: traversal sink
		}
		for _, callee := range g.Callees(node) {
			if onPath[callee] {
				continue // cycle: backtrack without revisiting
			}
			path = append(path, callee)
			onPath[callee] = true

			dfs(callee, depth+1)

			onPath[callee] = false
			path = path[:len(path)-1]
		}
	}

	dfs(start, 0)
	return chains
}
