// Package liverange implements live-range analysis over the parallel
// control graph (spec section 4.1): for every leaf control node, the set of
// state-shareable cells simultaneously live at that point, so non-
// overlapping cells can later share one physical register.
//
// Grounded on the teacher's src/ir/lir/live.go backward dataflow
// (calcLivenessFunction/ref/def), generalized from a linear basic-block
// instruction list to the recursive Seq/Par/If/While/Repeat control tree.
package liverange

import (
	"flowc/src/ir"
	"flowc/src/util"
)

// CellSet is a set of cells, compared by pointer identity.
type CellSet = util.Set[*ir.Cell]

// groupGenKill computes a group's (gen, kill) per spec section 4.1 "Group
// gen/kill": gen is the set of state-shareable cells meaningfully read,
// kill is the set of state-shareable cells unconditionally written.
func groupGenKill(comp *ir.Component, cls ir.ShareClassifier, g *ir.Group) (gen, kill CellSet) {
	gen, kill = CellSet{}, CellSet{}

	goUnconditional := unconditionalGoCells(comp, cls, g)
	variableLike, hasVariableLike := detectVariableLike(comp, cls, g)

	excludeDone := goUnconditional.Clone()
	if hasVariableLike {
		excludeDone.Add(variableLike)
	}

	switch g.Kind {
	case ir.StaticGroupKind:
		for _, a := range g.StaticAssigns {
			for _, r := range staticGuardReads(a.Guard) {
				addIfStateShareable(comp, cls, gen, r, excludeDone)
			}
			addIfStateShareable(comp, cls, gen, a.Src, excludeDone)
			if staticUnconditional(a.Guard, g.Latency) {
				addCellOf(comp, cls, kill, a.Dst)
			}
		}
	default:
		for _, a := range g.Assigns {
			for _, r := range dynGuardReads(a.Guard) {
				addIfStateShareable(comp, cls, gen, r, excludeDone)
			}
			addIfStateShareable(comp, cls, gen, a.Src, excludeDone)
			if ir.IsUnconditional(a.Guard) {
				addCellOf(comp, cls, kill, a.Dst)
			}
		}
	}
	return gen, kill
}

// unconditionalGoCells returns the set of cells whose @go port receives an
// unconditional write within g (spec section 4.1: "excluding reads from
// @done ports whose corresponding @go on the same cell is unconditionally
// written within the same group").
func unconditionalGoCells(comp *ir.Component, cls ir.ShareClassifier, g *ir.Group) CellSet {
	out := CellSet{}
	visit := func(dst ir.PortRef, unconditional bool) {
		if !unconditional {
			return
		}
		cell := comp.CellAt(dst.CellIdx)
		port := cell.Port(dst.Port)
		if port.Attrs.Has(ir.AttrGo) {
			out.Add(cell)
		}
	}
	switch g.Kind {
	case ir.StaticGroupKind:
		for _, a := range g.StaticAssigns {
			visit(a.Dst, staticUnconditional(a.Guard, g.Latency))
		}
	default:
		for _, a := range g.Assigns {
			visit(a.Dst, ir.IsUnconditional(a.Guard))
		}
	}
	return out
}

// detectVariableLike implements spec section 4.1's "variable-like pattern"
// optimization: exactly one state-shareable cell v written with v.in driven
// and v.write_en asserted, and all reads of v.done guarded (not used as
// data) by that write. Matching cells are added to the done-read exclusion
// set; see spec section 8 scenario S1.
func detectVariableLike(comp *ir.Component, cls ir.ShareClassifier, g *ir.Group) (*ir.Cell, bool) {
	if g.Kind == ir.StaticGroupKind {
		return nil, false // pattern as specified is stated over dynamic-style assignments.
	}
	writesIn := map[*ir.Cell]bool{}
	writesWriteEn := map[*ir.Cell]bool{}
	for _, a := range g.Assigns {
		cell := comp.CellAt(a.Dst.CellIdx)
		if cls.ClassOf(cell.Proto.Name) != ir.StateShareable {
			continue
		}
		switch a.Dst.Port {
		case "in":
			writesIn[cell] = true
		case "write_en":
			writesWriteEn[cell] = true
		}
	}
	var candidate *ir.Cell
	for c := range writesIn {
		if writesWriteEn[c] {
			if candidate != nil {
				return nil, false // more than one candidate: pattern does not apply.
			}
			candidate = c
		}
	}
	if candidate == nil {
		return nil, false
	}
	// Every read of candidate.done in this group must appear only inside a
	// guard, never as an assignment's Src (a "meaningful"/data read).
	for _, a := range g.Assigns {
		if a.Src.Port == "done" && comp.CellAt(a.Src.CellIdx) == candidate {
			return nil, false
		}
	}
	return candidate, true
}

func staticUnconditional(g ir.StaticGuard, latency int) bool {
	switch v := g.(type) {
	case ir.SGTrue:
		return true
	case ir.SGInterval:
		return v.Lo <= 0 && v.Hi >= latency
	default:
		return false
	}
}

func dynGuardReads(g ir.Guard) []ir.PortRef {
	switch v := g.(type) {
	case ir.GuardTrue:
		return nil
	case ir.GuardPort:
		return []ir.PortRef{v.Port}
	case ir.GuardNot:
		return dynGuardReads(v.G)
	case ir.GuardAnd:
		return append(dynGuardReads(v.L), dynGuardReads(v.R)...)
	case ir.GuardOr:
		return append(dynGuardReads(v.L), dynGuardReads(v.R)...)
	case ir.GuardCompare:
		return []ir.PortRef{v.L, v.R}
	default:
		return nil
	}
}

func staticGuardReads(g ir.StaticGuard) []ir.PortRef {
	switch v := g.(type) {
	case ir.SGTrue, ir.SGInterval:
		return nil
	case ir.SGPort:
		return []ir.PortRef{v.Port}
	case ir.SGNot:
		return staticGuardReads(v.G)
	case ir.SGAnd:
		return append(staticGuardReads(v.L), staticGuardReads(v.R)...)
	case ir.SGOr:
		return append(staticGuardReads(v.L), staticGuardReads(v.R)...)
	case ir.SGCompare:
		return []ir.PortRef{v.L, v.R}
	default:
		return nil
	}
}

// addIfStateShareable adds the cell owning ref to gen, unless ref is a read
// of a @done port belonging to a cell in exclude (the self-synchronizing
// read exclusion).
func addIfStateShareable(comp *ir.Component, cls ir.ShareClassifier, gen CellSet, ref ir.PortRef, exclude CellSet) {
	cell := comp.CellAt(ref.CellIdx)
	port := cell.Port(ref.Port)
	if port.Attrs.Has(ir.AttrDone) && exclude.Has(cell) {
		return
	}
	if cls.ClassOf(cell.Proto.Name) == ir.StateShareable {
		gen.Add(cell)
	}
}

func addCellOf(comp *ir.Component, cls ir.ShareClassifier, kill CellSet, ref ir.PortRef) {
	cell := comp.CellAt(ref.CellIdx)
	if cls.ClassOf(cell.Proto.Name) == ir.StateShareable {
		kill.Add(cell)
	}
}
