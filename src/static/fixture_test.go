package static

import "flowc/src/ir"

// newFixture returns a component with a pseudo-cell pre-declared for every
// group name passed, each named after its group and carrying synthetic
// go/done ports (the
// pseudo-cell convention childRefs relies on to resolve child[go]
// references without a real hardware cell per nested static group).
func newFixture(groupNames ...string) *ir.Component {
	comp := ir.NewComponent("top")
	for _, name := range groupNames {
		comp.AddCell(name, ir.Prototype{Name: name, IsComponent: true}, []ir.Port{
			{Name: "go", Width: 1, Dir: ir.Input, Attrs: ir.AttrGo},
			{Name: "done", Width: 1, Dir: ir.Output, Attrs: ir.AttrDone},
		})
	}
	return comp
}

// staticGroup builds a minimal static ir.Group of the given latency with one
// data assignment across [0, latency) between unbound ports (CellIdx -1), so
// it is neither read as a child[go] reference by childRefs nor retargeted by
// rewritePortRef.
func staticGroup(name string, latency int, attrs map[string]bool) *ir.Group {
	return &ir.Group{
		Name:    ir.Identifier{Name: name},
		Kind:    ir.StaticGroupKind,
		Latency: latency,
		Attrs:   attrs,
		StaticAssigns: []ir.StaticAssignment{
			{Dst: ir.PortRef{CellIdx: -1, Port: "in"}, Guard: ir.SGInterval{Lo: 0, Hi: latency}, Src: ir.PortRef{CellIdx: -1, Port: "out"}},
		},
	}
}

// childGoAssign builds the `child[go] = %[lo:hi] ? 1'd1` static assignment
// childRefs scans for, targeting the pseudo-cell named childGroup.
func childGoAssign(comp *ir.Component, childGroup string, lo, hi int) ir.StaticAssignment {
	return ir.StaticAssignment{
		Dst:   comp.Ref(childGroup, "go"),
		Guard: ir.SGInterval{Lo: lo, Hi: hi},
		Src:   comp.Ref(childGroup, "go"),
	}
}
