package static

import "flowc/src/ir"

// rewriteControl implements the closing paragraph of spec.md section 4.5:
// every top-level static Enable is replaced by an Enable of its wrapper
// group, and any remaining reference to a realized static group's go (via
// groupRewrites) is retargeted to its early-reset group. Control is an
// interface of value types, so rewriting builds a new tree rather than
// mutating in place (spec section 9, "prefer tagged variants over virtual
// dispatch").
func rewriteControl(n ir.Control, wrapperOf map[string]string) ir.Control {
	switch v := n.(type) {
	case ir.Enable:
		if w, ok := wrapperOf[v.Group]; ok {
			return ir.Enable{Node: v.Node, Group: w}
		}
		return v
	case ir.Seq:
		children := make([]ir.Control, len(v.Children))
		for i, c := range v.Children {
			children[i] = rewriteControl(c, wrapperOf)
		}
		return ir.Seq{Node: v.Node, Children: children}
	case ir.Par:
		children := make([]ir.Control, len(v.Children))
		for i, c := range v.Children {
			children[i] = rewriteControl(c, wrapperOf)
		}
		return ir.Par{Node: v.Node, Children: children}
	case ir.If:
		then := rewriteControl(v.Then, wrapperOf)
		var els ir.Control
		if v.Else != nil {
			els = rewriteControl(v.Else, wrapperOf)
		}
		return ir.If{Node: v.Node, Port: v.Port, CombGroup: v.CombGroup, Then: then, Else: els}
	case ir.While:
		return ir.While{Node: v.Node, Port: v.Port, CombGroup: v.CombGroup, Body: rewriteControl(v.Body, wrapperOf), HasBound: v.HasBound, Bound: v.Bound}
	case ir.Repeat:
		return ir.Repeat{Node: v.Node, Count: v.Count, Body: rewriteControl(v.Body, wrapperOf)}
	default:
		return n
	}
}

// rewriteAssigns retargets any assignment whose Dst or Src names a port
// listed in rewrites to the early-reset group it maps to (spec.md section
// 4.3, "group_rewrites"), e.g. an assignment that drives `g.go` now drives
// `early_reset_g.go`. Realization only records go ports in rewrites, so a
// `g.done` reference is left unchanged.
func rewriteAssigns(comp *ir.Component, assigns []ir.Assignment, rewrites map[[2]string][2]string) {
	for i, a := range assigns {
		assigns[i].Dst = rewritePortRef(comp, a.Dst, rewrites)
		assigns[i].Src = rewritePortRef(comp, a.Src, rewrites)
	}
}

func rewritePortRef(comp *ir.Component, ref ir.PortRef, rewrites map[[2]string][2]string) ir.PortRef {
	if ref.CellIdx < 0 {
		return ref
	}
	name := comp.CellName(ref)
	if to, ok := rewrites[[2]string{name, ref.Port}]; ok && comp.HasGroup(to[0]) {
		exists := false
		for _, c := range comp.Cells {
			if c.Name == to[0] {
				exists = true
				break
			}
		}
		if !exists {
			// The early-reset group gets its own pseudo-cell, with the same
			// ports as the static group's pseudo-cell it replaces.
			ports := append([]ir.Port(nil), comp.CellAt(ref.CellIdx).Ports...)
			comp.AddCell(to[0], ir.Prototype{Name: to[0], IsComponent: true}, ports)
		}
		return comp.Ref(to[0], to[1])
	}
	return ref
}

// stableWhileCandidate reports whether w's body is a single Enable of a
// static group and its condition port carries the @stable attribute (spec.md
// section 4.5: the while-specialized wrapper applies only then). It returns
// the enabled group's name and the condition PortRef.
func stableWhileCandidate(comp *ir.Component, w ir.While) (group string, cond ir.PortRef, ok bool) {
	en, isEnable := w.Body.(ir.Enable)
	if !isEnable {
		return "", ir.PortRef{}, false
	}
	g := comp.Group(en.Group)
	if g.Kind != ir.StaticGroupKind {
		return "", ir.PortRef{}, false
	}
	if w.Port.CellIdx < 0 {
		return "", ir.PortRef{}, false
	}
	port := comp.ResolvePort(w.Port)
	if !port.Attrs.Has(ir.AttrStable) {
		return "", ir.PortRef{}, false
	}
	return en.Group, w.Port, true
}
