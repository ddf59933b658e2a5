// Package color implements the conflict-graph construction and greedy
// coloring of spec.md section 4.4: static groups reachable through a leaf
// enable of the control program become colorable nodes, conflicts are added
// for concurrent (par) and structurally overlapping (intra-tree) pairs, and
// groups that never conflict may receive the same color. A color is a label
// only: nothing in this module makes groups of one color share a physical
// FSM register.
//
// Grounded on the teacher's src/backend/lir/regalloc.go register
// interference graph (`node`, `neighbours`, `enabled`) and its
// util.Stack-based simplify/select loop, generalized from degree-bounded
// Chaitin-Briggs coloring against a fixed k-register file to unbounded
// greedy coloring with a smallest-last elimination order (spec.md section
// 4.4 calls for "a greedy graph coloring", not k-colorability against a
// fixed register count, so there is no retry/spill path here).
package color

import "flowc/src/util"

// Item is one static group's position in its FSM-tree schedule: the unit
// the conflict graph is built over (spec.md section 4.4, "one node per such
// group"). TreeID identifies which static island (package fsmtree's
// top-level schedule) the item's window belongs to; Parent is the empty
// string for an island's root item.
type Item struct {
	Group      string
	TreeID     int
	Parent     string
	Lo, Hi     int
	MaxStates  int
	MaxRepeats int
}

func (it Item) overlaps(other Item) bool {
	return it.Lo < other.Hi && other.Lo < it.Hi
}

// node is the conflict graph's internal representation, mirroring the
// teacher's regalloc node/neighbours/enabled shape.
type node struct {
	item       Item
	neighbours util.Set[*node]
	enabled    bool
}

func (n *node) enabledDegree() int {
	d := 0
	for m := range n.neighbours {
		if m.enabled {
			d++
		}
	}
	return d
}

// Graph is the conflict graph over a set of Items.
type Graph struct {
	nodes map[string]*node // keyed by Item.Group
	order []string         // declaration order, for deterministic iteration
}

// NewGraph builds an empty conflict graph over items (no edges yet).
func NewGraph(items []Item) *Graph {
	g := &Graph{nodes: make(map[string]*node, len(items)), order: make([]string, 0, len(items))}
	for _, it := range items {
		g.nodes[it.Group] = &node{item: it, neighbours: util.Set[*node]{}, enabled: true}
		g.order = append(g.order, it.Group)
	}
	return g
}

// Conflict records a mutual conflict edge between two groups. Both must
// already have been added via NewGraph; a reference to an unknown group is
// a caller bug, so this panics rather than silently no-op-ing.
func (g *Graph) Conflict(a, b string) {
	if a == b {
		return
	}
	na, ok := g.nodes[a]
	if !ok {
		panic("color: unknown group " + a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		panic("color: unknown group " + b)
	}
	na.neighbours.Add(nb)
	nb.neighbours.Add(na)
}

// BuildIntraTree adds the intra-tree conflicts of spec.md section 4.4 rule
// 3: within a single static island, a parent conflicts with every
// descendant, and any two siblings whose windows overlap conflict with each
// other. A "single-node" tree (no items share a Parent within the TreeID)
// needs no intra-tree edges, matching the spec's carve-out for
// offloading-disabled single-node trees.
func (g *Graph) BuildIntraTree(items []Item) {
	byTree := make(map[int][]Item)
	for _, it := range items {
		byTree[it.TreeID] = append(byTree[it.TreeID], it)
	}
	for _, tree := range byTree {
		for i, a := range tree {
			for j, b := range tree {
				if i >= j {
					continue
				}
				if isAncestor(tree, a, b) || isAncestor(tree, b, a) {
					g.Conflict(a.Group, b.Group)
					continue
				}
				if a.Parent == b.Parent && a.overlaps(b) {
					g.Conflict(a.Group, b.Group)
				}
			}
		}
	}
}

// isAncestor reports whether a is an ancestor of b within tree (following
// Parent links by group name).
func isAncestor(tree []Item, a, b Item) bool {
	byName := make(map[string]Item, len(tree))
	for _, it := range tree {
		byName[it.Group] = it
	}
	cur := b
	for cur.Parent != "" {
		if cur.Parent == a.Group {
			return true
		}
		p, ok := byName[cur.Parent]
		if !ok {
			return false
		}
		cur = p
	}
	return false
}

// BuildParConflicts adds the conflicts of spec.md section 4.4 rule 2: for
// every pair of static-group islands found to be mutually concurrent in the
// dynamic control tree (on different children of some common Par ancestor,
// at any nesting), conflict every pair of items across their two trees.
// concurrentIslands is supplied by the caller (package static, which walks
// the dynamic tree alongside fsmtree's island construction) as the set of
// TreeID pairs known to run concurrently.
func (g *Graph) BuildParConflicts(items []Item, concurrentIslands [][2]int) {
	byTree := make(map[int][]Item)
	for _, it := range items {
		byTree[it.TreeID] = append(byTree[it.TreeID], it)
	}
	for _, pair := range concurrentIslands {
		for _, a := range byTree[pair[0]] {
			for _, b := range byTree[pair[1]] {
				g.Conflict(a.Group, b.Group)
			}
		}
	}
}
