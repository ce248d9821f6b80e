package packagegraph

import "sort"

// color tracks DFS recursion-stack state for cycle detection: white = unvisited,
// gray = on the current recursion stack, black = fully explored.
type color int

const (
	white color = iota
	gray
	black
)

// Cycle is one closed directed path in the Package Dependency Graph,
// listing the packages on the stack from the back-edge target through to
// the node that closed the loop, with the starting package repeated at the
// end.
type Cycle struct {
	Packages []string
}

// FindCycles reports every cycle in the graph via recursive DFS with
// recursion-stack coloring: every back edge (an edge into a gray node)
// yields one cycle. Multiple SCCs are reported independently. Duplicate
// cycles (same node set, different rotation) are deduplicated by
// canonicalizing each cycle to the rotation starting at its
// lexicographically smallest node.
func (g *Graph) FindCycles() []Cycle {
	colors := make(map[string]color)
	var stack []string
	onStack := make(map[string]int) // package -> index in stack

	seen := make(map[string]bool) // canonical cycle signature -> reported
	var cycles []Cycle

	packages := g.Packages()
	sort.Strings(packages) // deterministic traversal order (spec §8 property 7)

	var visit func(pkg string)
	visit = func(pkg string) {
		colors[pkg] = gray
		onStack[pkg] = len(stack)
		stack = append(stack, pkg)

		neighbors := g.Dependencies(pkg)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			switch colors[next] {
			case white:
				visit(next)
			case gray:
				// Back edge: the cycle runs from next's position on the
				// stack through to pkg, closed by repeating next.
				idx := onStack[next]
				cyclePkgs := append([]string{}, stack[idx:]...)
				cyclePkgs = append(cyclePkgs, next)
				c := canonicalize(cyclePkgs)
				sig := cycleSignature(c)
				if !seen[sig] {
					seen[sig] = true
					cycles = append(cycles, Cycle{Packages: c})
				}
			case black:
				// already fully explored, no new cycle through this edge
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, pkg)
		colors[pkg] = black
	}

	for _, pkg := range packages {
		if colors[pkg] == white {
			visit(pkg)
		}
	}

	// A self-loop (spec §8 property 6) never surfaces here: AddEdge
	// suppresses pkg->pkg at ingestion (spec §4.3), so the only cycles this
	// graph can contain are SCCs of size > 1, which the back-edge scan above
	// already finds.
	return cycles
}

// canonicalize rotates a closed cycle (first == last element) so it starts
// at its lexicographically smallest node, making rotation-equivalent
// cycles compare equal.
func canonicalize(cyclePkgs []string) []string {
	if len(cyclePkgs) <= 2 {
		return cyclePkgs
	}
	body := cyclePkgs[:len(cyclePkgs)-1] // drop the repeated closing node
	minIdx := 0
	for i, p := range body {
		if p < body[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string{}, body[minIdx:]...), body[:minIdx]...)
	rotated = append(rotated, rotated[0])
	return rotated
}

func cycleSignature(c []string) string {
	sig := ""
	for _, p := range c {
		sig += p + ">"
	}
	return sig
}
