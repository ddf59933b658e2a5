package liverange

import "flowc/src/ir"

// computeUses implements spec section 4.1's "Uses map": for every control
// node, the set of shareable and state-shareable cells it reads (a leaf's
// reads, an if/while's condition port and comb group, and an empty set for
// Seq/Par/Repeat/Empty), recorded separately from the gen/kill dataflow.
// Uses is not part of the Live fixpoint; it is kept as a flat per-node map
// and returned in Result.Uses, and nothing else in this module reads it.
func computeUses(comp *ir.Component, cls ir.ShareClassifier, node ir.Control) map[ir.NodeID]CellSet {
	out := make(map[ir.NodeID]CellSet)
	var walk func(ir.Control)
	walk = func(n ir.Control) {
		switch v := n.(type) {
		case ir.Empty:
			out[v.Node] = CellSet{}
		case ir.Enable:
			out[v.Node] = groupUses(comp, cls, comp.Group(v.Group))
		case ir.Invoke:
			s := CellSet{}
			for _, b := range v.Inputs {
				addShareable(comp, cls, s, b.Value)
			}
			if v.CombGroup != "" {
				s = s.Union(groupUses(comp, cls, comp.Group(v.CombGroup)))
			}
			out[v.Node] = s
		case ir.Seq:
			out[v.Node] = CellSet{}
			for _, c := range v.Children {
				walk(c)
			}
		case ir.Par:
			out[v.Node] = CellSet{}
			for _, c := range v.Children {
				walk(c)
			}
		case ir.If:
			s := CellSet{}
			addShareable(comp, cls, s, v.Port)
			if v.CombGroup != "" {
				s = s.Union(groupUses(comp, cls, comp.Group(v.CombGroup)))
			}
			out[v.Node] = s
			walk(v.Then)
			if v.Else != nil {
				walk(v.Else)
			}
		case ir.While:
			s := CellSet{}
			addShareable(comp, cls, s, v.Port)
			if v.CombGroup != "" {
				s = s.Union(groupUses(comp, cls, comp.Group(v.CombGroup)))
			}
			out[v.Node] = s
			walk(v.Body)
		case ir.Repeat:
			out[v.Node] = CellSet{}
			walk(v.Body)
		}
	}
	walk(node)
	return out
}

// groupUses collects every shareable or state-shareable cell read
// (guard reads and assignment sources) by a group, without the gen/kill
// done-exclusion logic — the uses map records raw reads.
func groupUses(comp *ir.Component, cls ir.ShareClassifier, g *ir.Group) CellSet {
	out := CellSet{}
	switch g.Kind {
	case ir.StaticGroupKind:
		for _, a := range g.StaticAssigns {
			for _, r := range staticGuardReads(a.Guard) {
				addShareable(comp, cls, out, r)
			}
			addShareable(comp, cls, out, a.Src)
		}
	default:
		for _, a := range g.Assigns {
			for _, r := range dynGuardReads(a.Guard) {
				addShareable(comp, cls, out, r)
			}
			addShareable(comp, cls, out, a.Src)
		}
	}
	return out
}

func addShareable(comp *ir.Component, cls ir.ShareClassifier, s CellSet, ref ir.PortRef) {
	cell := comp.CellAt(ref.CellIdx)
	switch cls.ClassOf(cell.Proto.Name) {
	case ir.Shareable, ir.StateShareable:
		s.Add(cell)
	}
}
