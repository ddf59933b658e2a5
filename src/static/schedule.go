package static

import (
	"fmt"

	"flowc/src/ir"
)

// childRef is one `child[go] = %[b:e] ? 1'd1` relationship found within a
// static group's assignments (spec.md section 4.6): the nested static group
// being invoked and the cycle window, in the parent's own numbering, during
// which it runs. Nested static groups are referenced the way Calyx-derived
// IRs expose a group's go/done as ordinary ports: a childRef's Dst names a
// cell whose name equals the nested group's name, carrying synthetic go/done
// ports (ir.AttrGo/ir.AttrDone) rather than a reference to a real hardware
// primitive.
type childRef struct {
	Group  string
	Lo, Hi int
}

// childRefs scans g's static assignments for the child[go] = %[b:e] ? 1 shape
// and returns one childRef per distinct child group name found.
func childRefs(comp *ir.Component, g *ir.Group) []childRef {
	seen := map[string]bool{}
	var out []childRef
	for _, a := range g.StaticAssigns {
		if a.Dst.Port != "go" {
			continue
		}
		iv, ok := a.Guard.(ir.SGInterval)
		if !ok {
			continue
		}
		name := comp.CellName(a.Dst)
		if !comp.HasGroup(name) || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, childRef{Group: name, Lo: iv.Lo, Hi: iv.Hi})
	}
	return out
}

// checkSchedule implements spec.md section 4.6's precondition check for a
// static group g of latency L: every nested child window must fall in
// [0, L], its width must be a positive multiple of the child's own latency,
// and windows must be pairwise non-overlapping unless g carries the "par"
// attribute, in which case every child window must start at 0.
func checkSchedule(comp *ir.Component, g *ir.Group) error {
	refs := childRefs(comp, g)
	isPar := g.HasAttr("par")

	for _, r := range refs {
		if !(0 <= r.Lo && r.Lo < r.Hi && r.Hi <= g.Latency) {
			return &ScheduleError{Group: g.Name, Message: fmt.Sprintf(
				"child %s's window [%d,%d) is not within [0,%d]", r.Group, r.Lo, r.Hi, g.Latency)}
		}
		child := comp.Group(r.Group)
		width := r.Hi - r.Lo
		if child.Latency <= 0 || width%child.Latency != 0 {
			return &ScheduleError{Group: g.Name, Message: fmt.Sprintf(
				"child %s's window width %d is not a positive multiple of its latency %d", r.Group, width, child.Latency)}
		}
		if isPar && r.Lo != 0 {
			return &ScheduleError{Group: g.Name, Message: fmt.Sprintf(
				"child %s does not start at 0 within a par static group", r.Group)}
		}
	}

	if !isPar {
		for i := range refs {
			for j := range refs {
				if i >= j {
					continue
				}
				a, b := refs[i], refs[j]
				if a.Lo < b.Hi && b.Lo < a.Hi {
					return &ScheduleError{Group: g.Name, Message: fmt.Sprintf(
						"children %s and %s have overlapping windows in a non-par static group", a.Group, b.Group)}
				}
			}
		}
	}
	return nil
}
