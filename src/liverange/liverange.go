package liverange

import "flowc/src/ir"

// Result is the outcome of live-range analysis over one component's control
// tree (spec section 4.1).
type Result struct {
	// Live maps every leaf control node (Enable/Invoke) to the set of
	// state-shareable cells live at that point, and every Par/If/While/Repeat
	// node to the alive set flowing out of it toward its left sibling. Seq
	// and Empty nodes get no entry.
	Live map[ir.NodeID]CellSet

	// ParChildLive maps a Par node's id to the per-child live sets computed
	// independently of its siblings (spec section 4.1, "par children computed
	// independently, then joined"), indexed by the child's own control id:
	// each entry is the union of the Live sets recorded inside that child.
	ParChildLive map[ir.NodeID]map[ir.NodeID]CellSet

	// ParThreadMap records, for each Par node, which of the node ids recorded
	// in Live under it belong to which child (by child index), so two leaves
	// under different par threads can be told apart downstream.
	ParThreadMap map[ir.NodeID]map[ir.NodeID]int

	// Uses maps every control node to the shareable and state-shareable
	// cells it reads (spec section 4.1, "Uses map"): a leaf's reads, an
	// if/while's condition reads, and an empty set for Seq/Par/Repeat/Empty.
	Uses map[ir.NodeID]CellSet
}

func newResult() *Result {
	return &Result{
		Live:         make(map[ir.NodeID]CellSet),
		ParChildLive: make(map[ir.NodeID]map[ir.NodeID]CellSet),
		ParThreadMap: make(map[ir.NodeID]map[ir.NodeID]int),
	}
}

// Analyze runs live-range analysis over comp's control tree (spec section
// 4.1), grounded on the teacher's src/ir/lir/live.go backward dataflow.
func Analyze(comp *ir.Component, cls ir.ShareClassifier) *Result {
	r := newResult()
	if comp.Control != nil {
		transfer(comp, cls, comp.Control, CellSet{}, CellSet{}, CellSet{}, r)
	}
	r.Uses = computeUses(comp, cls, comp.Control)
	return r
}

// transfer implements the backward dataflow transfer function for one
// control node, given the (alive, gens, kills) state flowing in from the
// node's right sibling (or the tree's exit, for the rightmost node). It
// returns the (alive, gens, kills) that should flow to the node's left
// sibling.
//
//   - alive: cells live immediately after this node (what must still be
//     live when control reaches here, computed by earlier backward steps).
//   - gens:  cells genuinely read (not merely killed) somewhere at or after
//     this point, accumulated rightward.
//   - kills: cells unconditionally (re)written somewhere at or after this
//     point, accumulated rightward.
//
// A nil result (r == nil) means "dry run": used internally by While/Repeat's
// first pass to compute the state a loop body propagates to itself, without
// recording Live/ParChildLive/ParThreadMap entries for a pass that isn't the
// final one.
func transfer(comp *ir.Component, cls ir.ShareClassifier, node ir.Control, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	switch v := node.(type) {
	case ir.Empty:
		return alive, gens, kills

	case ir.Enable:
		return leafTransfer(comp, cls, v.Node, comp.Group(v.Group), alive, gens, kills, r)

	case ir.Invoke:
		return invokeTransfer(v, alive, gens, kills, r)

	case ir.Seq:
		for i := len(v.Children) - 1; i >= 0; i-- {
			alive, gens, kills = transfer(comp, cls, v.Children[i], alive, gens, kills, r)
		}
		return alive, gens, kills

	case ir.Par:
		return parTransfer(comp, cls, v, alive, gens, kills, r)

	case ir.If:
		return ifTransfer(comp, cls, v, alive, gens, kills, r)

	case ir.While:
		return whileTransfer(comp, cls, v, alive, gens, kills, r)

	case ir.Repeat:
		return repeatTransfer(comp, cls, v, alive, gens, kills, r)

	default:
		return alive, gens, kills
	}
}

// leafTransfer applies a single group's (gen, kill) to the incoming dataflow
// state (spec section 4.1: "live(N) = (alive - kill) ∪ gen ∪ kill").
func leafTransfer(comp *ir.Component, cls ir.ShareClassifier, id ir.NodeID, g *ir.Group, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	gen, kill := groupGenKill(comp, cls, g)

	live := alive.Sub(kill).Union(gen).Union(kill)
	if r != nil {
		r.Live[id] = live
	}

	alive2 := alive.Sub(kill).Union(gen)
	gens2 := gens.Sub(kill).Union(gen)
	kills2 := kills.Union(kill)
	return alive2, gens2, kills2
}

// invokeTransfer treats an Invoke as a leaf with no state-shareable
// gen/kill of its own (invoked cells are driven directly, not shared via
// the group mechanism): it is live-neutral but still participates in the
// tree shape, so it gets its own (empty) Live entry.
func invokeTransfer(v ir.Invoke, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	if r != nil {
		r.Live[v.Node] = alive.Clone()
	}
	return alive, gens, kills
}

// parTransfer implements spec section 4.1's "par children computed
// independently, then joined": each child is run backward from the same
// incoming (alive, gens, kills) as if it alone followed the par in program
// order, recording its own contribution in ParChildLive, and the node's
// outgoing state unions every child's alive, gens and kills — every par
// thread is guaranteed to run, so a cell unconditionally written by even
// one thread is guaranteed dead by the time the par finishes (unlike If,
// which intersects kills since only one branch runs).
func parTransfer(comp *ir.Component, cls ir.ShareClassifier, v ir.Par, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	outAlive, outGens, outKills := CellSet{}, CellSet{}, CellSet{}
	childLive := make(map[ir.NodeID]CellSet, len(v.Children))
	threadOf := make(map[ir.NodeID]int, len(v.Children))
	descLive := make(map[ir.NodeID]CellSet)

	for i, child := range v.Children {
		scratch := newResult()
		a, g, k := transfer(comp, cls, child, alive, gens, kills, scratch)
		outAlive = outAlive.Union(a)
		outGens = outGens.Union(g)
		outKills = outKills.Union(k)
		childSet := CellSet{}
		for id, live := range scratch.Live {
			descLive[id] = live
			threadOf[id] = i
			childSet = childSet.Union(live)
		}
		childLive[child.ID()] = childSet
	}
	if r != nil {
		r.Live[v.Node] = outAlive.Clone()
		r.ParChildLive[v.Node] = childLive
		r.ParThreadMap[v.Node] = threadOf
		for id, live := range descLive {
			r.Live[id] = live
		}
	}
	return outAlive, outGens, outKills
}

// ifTransfer unions the alive/gens sets of both branches (either may run)
// but intersects kills (spec section 4.1: "If: union alive and gens across
// branches; intersect kills, since only one branch executes").
func ifTransfer(comp *ir.Component, cls ir.ShareClassifier, v ir.If, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	thenAlive, thenGens, thenKills := transfer(comp, cls, v.Then, alive, gens, kills, r)
	var elseAlive, elseGens, elseKills CellSet
	if v.Else != nil {
		elseAlive, elseGens, elseKills = transfer(comp, cls, v.Else, alive, gens, kills, r)
	} else {
		elseAlive, elseGens, elseKills = alive, gens, kills
	}

	outAlive := thenAlive.Union(elseAlive)
	outGens := thenGens.Union(elseGens)
	outKills := thenKills.Intersect(elseKills)

	// The condition itself is a meaningful read of any state-shareable cell
	// it names, and it must be live going into (i.e. before) the branches.
	if cls.ClassOf(comp.CellAt(v.Port.CellIdx).Proto.Name) == ir.StateShareable {
		outAlive.Add(comp.CellAt(v.Port.CellIdx))
		outGens.Add(comp.CellAt(v.Port.CellIdx))
	}
	if v.CombGroup != "" {
		gen, _ := groupGenKill(comp, cls, comp.Group(v.CombGroup))
		outAlive = outAlive.Union(gen)
		outGens = outGens.Union(gen)
	}
	if r != nil {
		r.Live[v.Node] = outAlive.Clone()
	}
	return outAlive, outGens, outKills
}

// whileTransfer handles a dynamically-bounded loop. Per spec section 4.1
// and the stated ambiguity around an unbounded (Bound == 0 / !HasBound)
// while: a first, "dry run" pass feeds the loop's own outgoing state back
// into itself as the incoming state (computing the fixpoint the body
// reaches after wrapping around once), and the real pass uses that as the
// state for the body's final (in program order, first-computed backward)
// iteration. Kills are propagated across the back-edge, and out of the loop
// to what precedes it, only when the loop carries an explicit positive
// static bound (HasBound && Bound > 0); with
// no stated bound, the analysis stays conservative and does not assume any
// write inside the body is guaranteed to have executed by the time control
// reaches the loop from outside — this is a direct reading of the spec's own
// documented Open Question, not a guess beyond what it says.
func whileTransfer(comp *ir.Component, cls ir.ShareClassifier, v ir.While, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	// Dry run: what does the body alone propagate, given only the
	// after-loop state (no cross-iteration assumption yet)?
	dryAlive, dryGens, dryKills := transfer(comp, cls, v.Body, alive, gens, kills, nil)

	// The condition port and its comb group are read on every iteration
	// (including the final, loop-exiting check), so they must be folded
	// into alive/gens before the second, recorded traversal of the body —
	// otherwise a state-shareable cell read only by the condition would be
	// missing from every leaf's live(N) inside the body.
	condGen := CellSet{}
	if cls.ClassOf(comp.CellAt(v.Port.CellIdx).Proto.Name) == ir.StateShareable {
		condGen.Add(comp.CellAt(v.Port.CellIdx))
	}
	if v.CombGroup != "" {
		gen, _ := groupGenKill(comp, cls, comp.Group(v.CombGroup))
		condGen = condGen.Union(gen)
	}
	dryAlive = dryAlive.Union(condGen)
	dryGens = dryGens.Union(condGen)

	loopKills := kills
	if v.HasBound && v.Bound > 0 {
		loopKills = kills.Union(dryKills)
	}

	bodyAlive, bodyGens, bodyKills := transfer(comp, cls, v.Body, dryAlive, dryGens, loopKills, r)

	outAlive := alive.Union(bodyAlive).Union(condGen)
	outGens := gens.Union(bodyGens).Union(condGen)
	outKills := kills
	if v.HasBound && v.Bound > 0 {
		outKills = bodyKills
	}

	if r != nil {
		r.Live[v.Node] = outAlive.Clone()
	}
	return outAlive, outGens, outKills
}

// repeatTransfer handles a statically-bounded loop (spec section 8 scenario
// S7, "Repeat kill propagation"): unlike While, Count is always known, so a
// write that always executes on every iteration is known to run at least
// once whenever Count > 0, and kills are always propagated across the
// back-edge in that case. Count == 0 makes the node a no-op (identity
// transfer).
func repeatTransfer(comp *ir.Component, cls ir.ShareClassifier, v ir.Repeat, alive, gens, kills CellSet, r *Result) (CellSet, CellSet, CellSet) {
	if v.Count == 0 {
		if r != nil {
			r.Live[v.Node] = alive.Clone()
		}
		return alive, gens, kills
	}

	dryAlive, dryGens, dryKills := transfer(comp, cls, v.Body, alive, gens, kills, nil)
	loopKills := kills.Union(dryKills)

	bodyAlive, bodyGens, bodyKills := transfer(comp, cls, v.Body, dryAlive, dryGens, loopKills, r)

	outAlive := bodyAlive
	outGens := bodyGens
	outKills := kills.Union(bodyKills)
	if r != nil {
		r.Live[v.Node] = outAlive.Clone()
	}
	return outAlive, outGens, outKills
}
