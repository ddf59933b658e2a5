package fsmtree

import "flowc/src/ir"

// iterQuery answers "is the current repeat index in [r1, r2)?" (spec.md
// section 4.3 "Query": "AND the iteration-register query repeat ∈ [r1,r2)
// with the single-iteration FSM query"). A node with no repeat register
// (RepeatsVal <= 1) always answers True: there is only ever iteration 0.
func (n *SingleNode) iterQuery(r1, r2 int) ir.Guard {
	if n.IterFSM == nil {
		return ir.GuardTrue{}
	}
	return n.IterFSM.QueryBetween(r1, r2)
}

// getFSMQuery implements spec.md section 4.3's `get_fsm_query`: converts a
// cycle window [a, b) within a single iteration (0 to LatencyVal) into a
// guard over this node's own FSM register and, where the window clips an
// Offload child's window, that child's own query.
func (n *SingleNode) getFSMQuery(a, b int) ir.Guard {
	if a <= 0 && b >= n.LatencyVal {
		return ir.GuardTrue{}
	}
	// A node that offloads its entire latency to one child (spec.md
	// section 4.3: "If the node offloads its entire latency ... the query
	// is delegated to that child") has no schedule of its own to narrow.
	if len(n.Schedule) == 1 && n.NumStates == 1 {
		if off, ok := n.Schedule[0].State.(Offload); ok && n.Schedule[0].Lo == 0 && n.Schedule[0].Hi == n.LatencyVal {
			_ = off
			cw, _ := n.childWindowFor(0, n.LatencyVal)
			return cw.Child.QueryBetween(a, b)
		}
	}

	var g ir.Guard
	or := func(x ir.Guard) {
		if g == nil {
			g = x
		} else {
			g = ir.GuardOr{L: g, R: x}
		}
	}

	for _, e := range n.Schedule {
		if e.Hi <= a || e.Lo >= b {
			continue
		}
		clo, chi := e.Lo, e.Hi
		if clo < a {
			clo = a
		}
		if chi > b {
			chi = b
		}
		switch st := e.State.(type) {
		case Normal:
			fstart := st.Start + (clo - e.Lo)
			fend := st.Start + (chi - e.Lo)
			or(n.FSM.QueryBetween(fstart, fend))
		case Offload:
			stateQuery := n.FSM.QueryBetween(st.State, st.State+1)
			if clo == e.Lo && chi == e.Hi {
				or(stateQuery)
			} else {
				cw, _ := n.childWindowFor(e.Lo, e.Hi)
				childQuery := cw.Child.QueryBetween(clo-e.Lo, chi-e.Lo)
				or(ir.GuardAnd{L: stateQuery, R: childQuery})
			}
		}
	}
	if g == nil {
		return ir.GuardNot{G: ir.GuardTrue{}}
	}
	return g
}

// QueryBetween implements spec.md section 4.3's `query_between`: converts a
// cycle window [i, j) in this node's full execution (across all repeats)
// into a dynamic guard, splitting at iteration boundaries.
func (n *SingleNode) QueryBetween(i, j int) ir.Guard {
	total := n.LatencyVal * n.RepeatsVal
	if i <= 0 && j >= total {
		return ir.GuardTrue{}
	}
	lat := n.LatencyVal
	r1, a := i/lat, i%lat
	lastCycle := j - 1
	r2, b := lastCycle/lat, lastCycle%lat

	if r1 == r2 {
		return ir.GuardAnd{L: n.iterQuery(r1, r1+1), R: n.getFSMQuery(a, b+1)}
	}

	var parts []ir.Guard
	if a > 0 {
		parts = append(parts, ir.GuardAnd{L: n.iterQuery(r1, r1+1), R: n.getFSMQuery(a, lat)})
		r1++
	}
	if b+1 < lat {
		parts = append(parts, ir.GuardAnd{L: n.iterQuery(r2, r2+1), R: n.getFSMQuery(0, b+1)})
		r2--
	}
	if r1 <= r2 {
		parts = append(parts, n.iterQuery(r1, r2+1))
	}

	var out ir.Guard
	for _, p := range parts {
		if out == nil {
			out = p
		} else {
			out = ir.GuardOr{L: out, R: p}
		}
	}
	if out == nil {
		return ir.GuardNot{G: ir.GuardTrue{}}
	}
	return out
}
