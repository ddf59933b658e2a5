package fsmtree

import "flowc/src/ir"

// FSMInfo is the per-early-reset-group metadata spec.md section 4.5 expects
// package static to carry forward: the FSM's stable id (for wrapper/
// signal-register deduplication) and its first/last-state queries (used to
// build the `while`-specialized wrapper's @stable condition).
type FSMInfo struct {
	FSMID      string
	FirstQuery ir.Guard
	LastQuery  ir.Guard
}

// Realization is the output of realizing one SingleNode or ParNode into its
// dynamic "early-reset" group (spec.md section 4.3 "Realization"). Nested
// children are not included: each is realized by a separate call.
type Realization struct {
	// Groups holds the early-reset ir.Group built (exactly one per Realize
	// or RealizePar call).
	Groups []*ir.Group

	// ResetEarlyMap maps an original static group name to its early-reset
	// group's name.
	ResetEarlyMap map[string]string

	// FSMInfoMap maps an early-reset group's name to its FSM metadata.
	FSMInfoMap map[string]FSMInfo

	// GroupRewrites maps (static group name, "go") to (early-reset group
	// name, "go") — spec.md section 4.3, "group_rewrites".
	GroupRewrites map[[2]string][2]string
}

func newRealization() *Realization {
	return &Realization{
		ResetEarlyMap: make(map[string]string),
		FSMInfoMap:    make(map[string]FSMInfo),
		GroupRewrites: make(map[[2]string][2]string),
	}
}

// Realize turns n into its own early-reset dynamic group (spec.md section
// 4.3 "Realization"). original is the static ir.Group n.RootGroup names,
// whose assignments supply the body to rewrite. Each offload child of n
// owns an independent static group of its own and is realized by a
// separate Realize call (the caller — package static's orchestrator —
// walks the whole forest and realizes every SingleNode, root and offload
// child alike, merging their ResetEarlyMap/FSMInfoMap/GroupRewrites
// entries); fsmtree itself has no notion of "the whole component" to
// recurse across.
func Realize(comp *ir.Component, ctx *ir.Context, n *SingleNode, original *ir.Group) *Realization {
	r := newRealization()
	realizeOne(comp, n, original, r)
	return r
}

func realizeOne(comp *ir.Component, n *SingleNode, original *ir.Group, r *Realization) *ir.Group {
	earlyName := "early_reset_" + original.Name.Name

	assigns := make([]ir.Assignment, 0, len(original.StaticAssigns)+1)
	for _, a := range original.StaticAssigns {
		assigns = append(assigns, ir.Assignment{
			Dst:   a.Dst,
			Guard: rewriteStaticGuard(n, a.Guard, original.Latency),
			Src:   a.Src,
		})
	}
	// spec.md section 4.3's group[done] = undef leaves the early-reset
	// group's own Done deliberately unset (the nil zero value): its
	// completion is never read directly — control flows through a wrapper
	// group instead (spec.md section 4.5), whose own Done is set from
	// signal_reg.

	if n.FSM != nil {
		assigns = append(assigns, n.CountToN(comp, nil)...)
	}

	g := &ir.Group{
		Name:    ir.Identifier{Name: earlyName},
		Kind:    ir.DynamicGroup,
		Assigns: assigns,
		Attrs:   original.Attrs,
	}
	r.Groups = append(r.Groups, g)
	r.ResetEarlyMap[original.Name.Name] = earlyName
	r.GroupRewrites[[2]string{original.Name.Name, "go"}] = [2]string{earlyName, "go"}

	info := FSMInfo{LastQuery: n.QueryBetween(n.LatencyVal*n.RepeatsVal-1, n.LatencyVal*n.RepeatsVal), FirstQuery: n.QueryBetween(0, 1)}
	if n.FSM != nil {
		info.FSMID = n.FSM.ID
	}
	r.FSMInfoMap[earlyName] = info

	return g
}

// rewriteStaticGuard substitutes every static timing interval %[i:j) within
// g with the equivalent dynamic guard n.getFSMQuery(i,j) (spec.md section
// 4.3: "Each original assignment's guard is rewritten by substituting every
// static timing [i,j) with get_fsm_query(i,j)"). A %[0:1) timing interval in
// a latency-1 group is dropped entirely rather than substituted — the only
// case spec.md names where "a flag instructs the realizer to drop timing
// entirely".
func rewriteStaticGuard(n *SingleNode, g ir.StaticGuard, latency int) ir.Guard {
	switch v := g.(type) {
	case ir.SGTrue:
		return ir.GuardTrue{}
	case ir.SGInterval:
		if v.Lo == 0 && v.Hi == 1 && latency == 1 {
			return ir.GuardTrue{}
		}
		return n.getFSMQuery(v.Lo, v.Hi)
	case ir.SGPort:
		return ir.GuardPort{Port: v.Port}
	case ir.SGNot:
		return ir.GuardNot{G: rewriteStaticGuard(n, v.G, latency)}
	case ir.SGAnd:
		return ir.GuardAnd{L: rewriteStaticGuard(n, v.L, latency), R: rewriteStaticGuard(n, v.R, latency)}
	case ir.SGOr:
		return ir.GuardOr{L: rewriteStaticGuard(n, v.L, latency), R: rewriteStaticGuard(n, v.R, latency)}
	case ir.SGCompare:
		return ir.GuardCompare{Op: v.Op, L: v.L, R: v.R}
	default:
		return ir.GuardTrue{}
	}
}

// RealizePar builds a single early-reset group for a ParNode: the body is
// the concatenation of each thread's triggering assignments, with timing
// guards resolved against the longest child's FSM (spec.md section 4.3
// "Par realization"). threads supplies, per child, the original static
// group it realizes.
func RealizePar(comp *ir.Component, ctx *ir.Context, p *ParNode, threads []*ir.Group) *Realization {
	r := newRealization()
	earlyName := "early_reset_" + p.Name

	var assigns []ir.Assignment
	longest := p.Children[p.LongestIdx].(*SingleNode)
	for i, child := range p.Children {
		sn, ok := child.(*SingleNode)
		if !ok {
			continue
		}
		original := threads[i]
		for _, a := range original.StaticAssigns {
			var guard ir.Guard
			if sn == longest {
				guard = rewriteStaticGuard(longest, a.Guard, original.Latency)
			} else {
				// A shorter thread's assignments are gated by its own
				// %[0:Lchild) window, resolved against the longest child's
				// schedule (spec.md section 4.3: "shorter children drive
				// their own go via %[0:Lchild] guards").
				guard = ir.GuardAnd{
					L: longest.getFSMQuery(0, sn.LatencyVal),
					R: rewriteStaticGuard(longest, a.Guard, original.Latency),
				}
			}
			assigns = append(assigns, ir.Assignment{Dst: a.Dst, Guard: guard, Src: a.Src})
		}
		r.ResetEarlyMap[original.Name.Name] = earlyName
		r.GroupRewrites[[2]string{original.Name.Name, "go"}] = [2]string{earlyName, "go"}
	}

	if longest.FSM != nil {
		assigns = append(assigns, longest.CountToN(comp, nil)...)
	}

	g := &ir.Group{Name: ir.Identifier{Name: earlyName}, Kind: ir.DynamicGroup, Assigns: assigns}
	r.Groups = append(r.Groups, g)

	info := FSMInfo{LastQuery: p.QueryBetween(p.Latency()*p.NumRepeats()-1, p.Latency()*p.NumRepeats()), FirstQuery: p.QueryBetween(0, 1)}
	if longest.FSM != nil {
		info.FSMID = longest.FSM.ID
	}
	r.FSMInfoMap[earlyName] = info

	return r
}
