package color

import "flowc/src/util"

// Options mirrors the "configuration flag disables sharing" of spec.md
// section 4.4.
type Options struct {
	// GreedyShare enables graph coloring; when false, every item gets its
	// own color (identity coloring — no sharing).
	GreedyShare bool
}

// Coloring maps a group name to its assigned color (a small non-negative
// int, not a physical resource). Package static returns the coloring and
// each color's ColorInfo in its Result; it does not merge the FSM
// registers of groups that share a color, so every island keeps its own.
type Coloring map[string]int

// Color runs the coloring algorithm over g (spec.md section 4.4 rule 4).
// When opts.GreedyShare is false, it returns the identity coloring: every
// group its own color, equivalent to skipping graph coloring entirely.
func (g *Graph) Color(opts Options) Coloring {
	if !opts.GreedyShare {
		out := make(Coloring, len(g.order))
		for i, name := range g.order {
			out[name] = i
		}
		return out
	}
	return g.colorGreedy()
}

// colorGreedy implements a smallest-last elimination ordering, generalizing
// the teacher's regalloc.go simplify/select loop (src/backend/lir/regalloc.go
// allocateRegisterFunc): repeatedly remove a node of minimum remaining
// degree and push it on a stack (simplify), then pop the stack and assign
// each node the smallest color not already used by a neighbour that has
// been colored so far (select). Unlike the teacher's version there is no
// fixed k and therefore no retry/spill path: a node always has some valid
// lowest unused color, since colors are unbounded.
func (g *Graph) colorGreedy() Coloring {
	n := len(g.order)
	stack := &util.Stack[*node]{}
	remaining := n
	for remaining > 0 {
		var best *node
		bestDeg := -1
		for _, name := range g.order {
			nd := g.nodes[name]
			if !nd.enabled {
				continue
			}
			d := nd.enabledDegree()
			if bestDeg == -1 || d < bestDeg {
				best = nd
				bestDeg = d
			}
		}
		best.enabled = false
		stack.Push(best)
		remaining--
	}

	colors := make(Coloring, n)
	for nd, ok := stack.Pop(); ok; nd, ok = stack.Pop() {
		used := util.Set[int]{}
		for m := range nd.neighbours {
			if c, done := colors[m.item.Group]; done {
				used.Add(c)
			}
		}
		c := 0
		for used.Has(c) {
			c++
		}
		colors[nd.item.Group] = c
		nd.enabled = true
	}
	return colors
}

// ColorInfo is the per-color aggregate of spec.md section 4.4 rule 5.
type ColorInfo struct {
	MaxStates  int
	MaxRepeats int
	Groups     []string
}

// Aggregate computes, per color, the element-wise max of MaxStates and
// MaxRepeats over every item assigned that color (spec.md section 4.4 rule
// 5): "instantiate one FSM register sized for max_num_states and one
// iteration counter sized for max_num_repeats".
func Aggregate(items []Item, coloring Coloring) map[int]ColorInfo {
	out := make(map[int]ColorInfo)
	for _, it := range items {
		c := coloring[it.Group]
		info := out[c]
		if it.MaxStates > info.MaxStates {
			info.MaxStates = it.MaxStates
		}
		if it.MaxRepeats > info.MaxRepeats {
			info.MaxRepeats = it.MaxRepeats
		}
		info.Groups = append(info.Groups, it.Group)
		out[c] = info
	}
	return out
}
