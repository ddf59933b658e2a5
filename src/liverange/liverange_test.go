package liverange

import (
	"testing"

	"flowc/src/ir"
)

func regCell(comp *ir.Component, name string) *ir.Cell {
	return comp.AddCell(name, ir.Prototype{Name: "std_reg"}, []ir.Port{
		{Name: "in", Dir: ir.Input, Attrs: ir.AttrData},
		{Name: "write_en", Dir: ir.Input, Attrs: ir.AttrGo},
		{Name: "out", Dir: ir.Output, Attrs: ir.AttrData},
		{Name: "done", Dir: ir.Output, Attrs: ir.AttrDone},
	})
}

// TestVariableLikeMasksDoneRead reproduces spec section 8 scenario S1:
// `r.in = x.out; r.write_en = 1'd1; dep.in = r.done ? 1'd1;` inside one
// group should classify as gen={x}, kill={r}, with r's own @done read
// excluded from gen by the variable-like pattern.
func TestVariableLikeMasksDoneRead(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "r")
	regCell(comp, "x")
	dep := comp.AddCell("dep", ir.Prototype{Name: "std_wire"}, []ir.Port{
		{Name: "in", Dir: ir.Input},
	})
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{
		{Name: "out", Dir: ir.Output},
	})

	g := &ir.Group{
		Name: ir.Identifier{Name: "g"},
		Kind: ir.DynamicGroup,
		Assigns: []ir.Assignment{
			{Dst: comp.Ref("r", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("x", "out")},
			{Dst: comp.Ref("r", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
			{Dst: comp.Ref("dep", "in"), Guard: ir.GuardPort{Port: comp.Ref("r", "done")}, Src: comp.Ref("one", "out")},
		},
	}
	comp.AddGroup(g)

	gen, kill := groupGenKill(comp, ir.DefaultClassifier, g)

	if !gen.Has(comp.Cell("x")) {
		t.Fatalf("expected gen to contain x, got %v", gen.Slice())
	}
	if gen.Has(comp.Cell("r")) {
		t.Fatalf("expected r's @done read to be excluded from gen, got %v", gen.Slice())
	}
	if !kill.Has(comp.Cell("r")) {
		t.Fatalf("expected kill to contain r, got %v", kill.Slice())
	}
}

// TestParJoinOfKills reproduces spec section 8 scenario S2: a Par of two
// Enables that each unconditionally write a distinct register: each register
// is live at its own write, the par unions its threads' alive/gens/kills,
// and since neither register is read after the par, neither is in the par's
// own outgoing live set.
func TestParJoinOfKills(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "a")
	regCell(comp, "b")
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{{Name: "out", Dir: ir.Output}})

	ga := &ir.Group{Name: ir.Identifier{Name: "ga"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("a", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("a", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	gb := &ir.Group{Name: ir.Identifier{Name: "gb"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("b", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("b", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	comp.AddGroup(ga)
	comp.AddGroup(gb)

	ctx := ir.NewContext()
	enA := ir.Enable{Node: ctx.NextNodeID(), Group: "ga"}
	enB := ir.Enable{Node: ctx.NextNodeID(), Group: "gb"}
	par := ir.Par{Node: ctx.NextNodeID(), Children: []ir.Control{enA, enB}}
	comp.Control = par

	r := Analyze(comp, ir.DefaultClassifier)

	if !r.Live[enA.Node].Has(comp.Cell("a")) {
		t.Fatalf("expected a to be live at its own write, got %v", r.Live[enA.Node].Slice())
	}
	if !r.Live[enB.Node].Has(comp.Cell("b")) {
		t.Fatalf("expected b to be live at its own write, got %v", r.Live[enB.Node].Slice())
	}
	if r.Live[par.Node].Has(comp.Cell("a")) || r.Live[par.Node].Has(comp.Cell("b")) {
		t.Fatalf("neither a nor b is read after the par, so neither may be live at the par: got %v", r.Live[par.Node].Slice())
	}
	if _, ok := r.ParThreadMap[par.Node][enA.Node]; !ok {
		t.Fatalf("expected enA to be recorded in the par thread map")
	}
	if r.ParThreadMap[par.Node][enA.Node] == r.ParThreadMap[par.Node][enB.Node] {
		t.Fatalf("expected enA and enB to be mapped to distinct par threads")
	}
}

// TestParUnionOfKills covers spec section 4.1's Par kill-join directly: two
// par children each unconditionally write a distinct register and nothing
// else touches either register. Since every par thread is guaranteed to
// run, both writes are guaranteed to have happened by the time the par
// finishes, so the joined kill set must be the union {a, b} and not their
// intersection (which would wrongly be empty, since neither child's kill
// set contains the other's register).
func TestParUnionOfKills(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "a")
	regCell(comp, "b")
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{{Name: "out", Dir: ir.Output}})

	ga := &ir.Group{Name: ir.Identifier{Name: "ga"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("a", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("a", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	gb := &ir.Group{Name: ir.Identifier{Name: "gb"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("b", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("b", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	comp.AddGroup(ga)
	comp.AddGroup(gb)

	ctx := ir.NewContext()
	enA := ir.Enable{Node: ctx.NextNodeID(), Group: "ga"}
	enB := ir.Enable{Node: ctx.NextNodeID(), Group: "gb"}
	par := ir.Par{Node: ctx.NextNodeID(), Children: []ir.Control{enA, enB}}

	_, _, kills := transfer(comp, ir.DefaultClassifier, par, CellSet{}, CellSet{}, CellSet{}, newResult())

	if !kills.Has(comp.Cell("a")) || !kills.Has(comp.Cell("b")) {
		t.Fatalf("expected par's joined kill to union both threads' unconditional writes, got %v", kills.Slice())
	}
}

// TestIfIntersectOfKills reproduces spec section 8 scenario S3: an If whose
// Then branch unconditionally writes register r, followed later by a group
// that reads r. Even though Then kills r, Else does not — so the If as a
// whole must not be treated as killing r, and r must stay live across it.
func TestIfIntersectOfKills(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "r")
	comp.AddCell("cond", ir.Prototype{Name: "std_wire"}, []ir.Port{{Name: "out", Dir: ir.Output}})
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{{Name: "out", Dir: ir.Output}})
	comp.AddCell("sink", ir.Prototype{Name: "std_wire"}, []ir.Port{{Name: "in", Dir: ir.Input}})

	gThen := &ir.Group{Name: ir.Identifier{Name: "gthen"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("r", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("r", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	gRead := &ir.Group{Name: ir.Identifier{Name: "gread"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("sink", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("r", "out")},
	}}
	comp.AddGroup(gThen)
	comp.AddGroup(gRead)

	ctx := ir.NewContext()
	then := ir.Enable{Node: ctx.NextNodeID(), Group: "gthen"}
	els := ir.Empty{Node: ctx.NextNodeID()}
	ifNode := ir.If{Node: ctx.NextNodeID(), Port: comp.Ref("cond", "out"), Then: then, Else: els}

	after := ir.Enable{Node: ctx.NextNodeID(), Group: "gread"}
	seq := ir.Seq{Node: ctx.NextNodeID(), Children: []ir.Control{ifNode, after}}
	comp.Control = seq

	r := Analyze(comp, ir.DefaultClassifier)

	if !r.Live[ifNode.Node].Has(comp.Cell("r")) {
		t.Fatalf("r is read after the if by a path that may not have gone through Then, so it must stay live across the if: got %v", r.Live[ifNode.Node].Slice())
	}
}

// TestWhileConditionReadReachesBodyLeaf covers spec section 4.1's While
// ordering requirement: a state-shareable cell read only by the loop
// condition must be folded into the dry run's output before the second,
// recorded traversal of the body, so it shows up in live(N) for every leaf
// inside the body (not just in the while node's own summary) — since on any
// non-final iteration, that leaf still runs before the condition is
// rechecked and must keep the condition's cell alive across itself.
func TestWhileConditionReadReachesBodyLeaf(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "cond")
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{{Name: "out", Dir: ir.Output}})
	comp.AddCell("sink", ir.Prototype{Name: "std_wire"}, []ir.Port{{Name: "in", Dir: ir.Input}})

	gBody := &ir.Group{Name: ir.Identifier{Name: "gbody"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("sink", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	comp.AddGroup(gBody)

	ctx := ir.NewContext()
	body := ir.Enable{Node: ctx.NextNodeID(), Group: "gbody"}
	loop := ir.While{Node: ctx.NextNodeID(), Port: comp.Ref("cond", "out"), Body: body}
	comp.Control = loop

	r := Analyze(comp, ir.DefaultClassifier)

	if !r.Live[body.Node].Has(comp.Cell("cond")) {
		t.Fatalf("expected the loop condition's cell to be live at the body leaf, got %v", r.Live[body.Node].Slice())
	}
}

// TestRepeatKillPropagation reproduces the supplemented scenario S7: a
// Repeat with a known positive count that unconditionally writes a register
// on every iteration is known to have run that write at least once, so the
// kill propagates across the loop's own back-edge (distinguishing Repeat
// from an unbounded While, which must stay conservative).
func TestRepeatKillPropagation(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "r")
	comp.AddCell("one", ir.Prototype{Name: "std_const"}, []ir.Port{{Name: "out", Dir: ir.Output}})

	g := &ir.Group{Name: ir.Identifier{Name: "g"}, Kind: ir.DynamicGroup, Assigns: []ir.Assignment{
		{Dst: comp.Ref("r", "in"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
		{Dst: comp.Ref("r", "write_en"), Guard: ir.GuardTrue{}, Src: comp.Ref("one", "out")},
	}}
	comp.AddGroup(g)

	ctx := ir.NewContext()
	body := ir.Enable{Node: ctx.NextNodeID(), Group: "g"}
	rep := ir.Repeat{Node: ctx.NextNodeID(), Count: 3, Body: body}
	comp.Control = rep

	_, gens, kills := transfer(comp, ir.DefaultClassifier, rep, CellSet{}, CellSet{}, CellSet{}, newResult())

	if !kills.Has(comp.Cell("r")) {
		t.Fatalf("expected repeat with a positive static count to propagate its body's kill, got %v", kills.Slice())
	}
	if gens.Has(comp.Cell("r")) {
		// r is never read here, only written; gens should stay empty for it.
		t.Fatalf("unexpected gen of r")
	}
}

// TestRepeatCountZeroIsIdentity covers the Count == 0 edge case: a repeat
// that never runs must not affect the incoming dataflow state at all.
func TestRepeatCountZeroIsIdentity(t *testing.T) {
	comp := ir.NewComponent("c")
	regCell(comp, "r")
	g := &ir.Group{Name: ir.Identifier{Name: "g"}, Kind: ir.DynamicGroup}
	comp.AddGroup(g)

	ctx := ir.NewContext()
	rep := ir.Repeat{Node: ctx.NextNodeID(), Count: 0, Body: ir.Enable{Node: ctx.NextNodeID(), Group: "g"}}

	seed := CellSet{}
	seed.Add(comp.Cell("r"))
	alive, gens, kills := transfer(comp, ir.DefaultClassifier, rep, seed, seed, seed, newResult())

	if !alive.Equal(seed) || !gens.Equal(seed) || !kills.Equal(seed) {
		t.Fatalf("repeat(count=0) must be the identity transfer")
	}
}
