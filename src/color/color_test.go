package color

import (
	"testing"

	"flowc/src/ir"
)

// TestParConflictsForcesDistinctColors reproduces spec.md section 8
// scenario S6: A and B, reached only through different threads of a par,
// conflict and must receive different colors; C, sequenced after the par
// (not inside it), may share A's color.
func TestParConflictsForcesDistinctColors(t *testing.T) {
	ctx := ir.NewContext()
	enA := ir.Enable{Node: ctx.NextNodeID(), Group: "A"}
	enB := ir.Enable{Node: ctx.NextNodeID(), Group: "B"}
	enC := ir.Enable{Node: ctx.NextNodeID(), Group: "C"}
	par := ir.Par{Node: ctx.NextNodeID(), Children: []ir.Control{enA, enB}}
	root := ir.Seq{Node: ctx.NextNodeID(), Children: []ir.Control{par, enC}}

	islandOf := map[ir.NodeID]int{enA.Node: 0, enB.Node: 1, enC.Node: 2}
	items := []Item{
		{Group: "A", TreeID: 0, MaxStates: 10, MaxRepeats: 2},
		{Group: "B", TreeID: 1, MaxStates: 20, MaxRepeats: 5},
		{Group: "C", TreeID: 2, MaxStates: 4, MaxRepeats: 1},
	}

	g := NewGraph(items)
	g.BuildIntraTree(items)
	g.BuildParConflicts(items, ConcurrentIslands(root, islandOf))

	coloring := g.Color(Options{GreedyShare: true})

	if coloring["A"] == coloring["B"] {
		t.Fatalf("A and B are on different par threads and must not share a color")
	}
	// C is unconstrained relative to A, so nothing should force them apart;
	// a correct greedy coloring is free to (and, by minimal-color-first
	// selection, will) give C the same color as A or B — assert only the
	// required distinctness, not a specific assignment to C.
	info := Aggregate(items, coloring)
	aInfo := info[coloring["A"]]
	if aInfo.MaxStates < 10 || aInfo.MaxRepeats < 2 {
		t.Fatalf("A's color info must cover at least A's own (10, 2), got %+v", aInfo)
	}
	if coloring["C"] == coloring["A"] {
		if aInfo.MaxStates != 10 || aInfo.MaxRepeats != 2 {
			t.Fatalf("sharing A and C's color (A=(10,2), C=(4,1)) must yield (10, 2), got (%d, %d)", aInfo.MaxStates, aInfo.MaxRepeats)
		}
	}
}

// TestIdentityColoringWhenSharingDisabled covers the "configuration flag
// disables sharing" carve-out of spec.md section 4.4.
func TestIdentityColoringWhenSharingDisabled(t *testing.T) {
	items := []Item{
		{Group: "A", TreeID: 0, MaxStates: 10, MaxRepeats: 2},
		{Group: "B", TreeID: 1, MaxStates: 20, MaxRepeats: 5},
	}
	g := NewGraph(items)
	coloring := g.Color(Options{GreedyShare: false})
	if coloring["A"] == coloring["B"] {
		t.Fatalf("sharing disabled: every group must get its own color")
	}
}

// TestIntraTreeParentConflictsWithDescendant covers spec.md section 4.4
// rule 3's parent/descendant conflict.
func TestIntraTreeParentConflictsWithDescendant(t *testing.T) {
	items := []Item{
		{Group: "root", TreeID: 0, Parent: "", Lo: 0, Hi: 10},
		{Group: "child", TreeID: 0, Parent: "root", Lo: 0, Hi: 4},
	}
	g := NewGraph(items)
	g.BuildIntraTree(items)
	coloring := g.Color(Options{GreedyShare: true})
	if coloring["root"] == coloring["child"] {
		t.Fatalf("a parent and its descendant must never share a color")
	}
}

// TestIntraTreeOverlappingSiblingsConflict covers the sibling-overlap half
// of rule 3 and the parent/child half for every sibling; the
// non-overlapping pair s1/s3 is left unconstrained and is not checked.
func TestIntraTreeOverlappingSiblingsConflict(t *testing.T) {
	items := []Item{
		{Group: "root", TreeID: 0, Parent: ""},
		{Group: "s1", TreeID: 0, Parent: "root", Lo: 0, Hi: 5},
		{Group: "s2", TreeID: 0, Parent: "root", Lo: 3, Hi: 8},
		{Group: "s3", TreeID: 0, Parent: "root", Lo: 5, Hi: 9},
	}
	g := NewGraph(items)
	g.BuildIntraTree(items)
	coloring := g.Color(Options{GreedyShare: true})

	if coloring["s1"] == coloring["s2"] {
		t.Fatalf("s1 [0,5) and s2 [3,8) overlap and must not share a color")
	}
	for _, sib := range []string{"s1", "s2", "s3"} {
		if coloring[sib] == coloring["root"] {
			t.Fatalf("%s must never share its parent root's color", sib)
		}
	}
}
