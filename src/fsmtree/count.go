package fsmtree

import "flowc/src/ir"

// CountToN implements spec.md section 4.3 "Counting" (`count_to_n`): the
// assignments driving this node's own FSM register (and, if present, its
// iteration counter) from cycle to cycle. incrStartCond is the optional
// external predicate guarding the 0→1 transition (nil if none).
//
// Per spec.md section 8 scenario S8 (carried from SPEC_FULL.md's
// supplement), a child window of exactly one cycle is not treated as an
// "offload state" for counting purposes — the parent increments through it
// unconditionally, identically to a Normal state, since there is no
// meaningful intermediate cycle during which the child could still be
// running.
func (n *SingleNode) CountToN(comp *ir.Component, incrStartCond ir.Guard) []ir.Assignment {
	if n.NumStates <= 1 {
		return nil
	}

	type offloadInfo struct {
		state int
		cw    ChildWindow
	}
	var offloads []offloadInfo
	for _, e := range n.Schedule {
		off, ok := e.State.(Offload)
		if !ok {
			continue
		}
		if e.Hi-e.Lo <= 1 {
			continue // S8: single-cycle offload behaves like Normal.
		}
		cw, found := n.childWindowFor(e.Lo, e.Hi)
		if !found {
			continue
		}
		offloads = append(offloads, offloadInfo{state: off.State, cw: cw})
	}

	finalState := n.FSM.FinalStateQuery()

	var notOffloading ir.Guard = ir.GuardTrue{}
	if len(offloads) > 0 {
		var anyOffload ir.Guard
		for _, o := range offloads {
			eq := n.FSM.QueryBetween(o.state, o.state+1)
			if anyOffload == nil {
				anyOffload = eq
			} else {
				anyOffload = ir.GuardOr{L: anyOffload, R: eq}
			}
		}
		notOffloading = ir.GuardNot{G: anyOffload}
	}

	var out []ir.Assignment
	incrWiring, _ := n.FSM.BuildIncrementer()
	out = append(out, incrWiring...)

	incrGuard := ir.Guard(ir.GuardAnd{L: notOffloading, R: ir.GuardNot{G: finalState}})
	if incrStartCond != nil {
		// The 0→1 transition is guarded by the external predicate instead
		// of the general increment guard (spec.md section 4.3: "an optional
		// external predicate incr_start_cond guards the 0→1 transition...
		// otherwise a separate (fsm == 0) ∧ cond → fsm+1 assignment is
		// emitted, with fsm ≠ 0 appended to the main increment guard").
		notZero := ir.GuardNot{G: n.FSM.QueryBetween(0, 1)}
		incrGuard = ir.GuardAnd{L: incrGuard, R: notZero}
		startGuard := ir.GuardAnd{L: n.FSM.QueryBetween(0, 1), R: incrStartCond}
		out = append(out, n.FSM.ConditionalIncrement(startGuard)...)
	}
	out = append(out, n.FSM.ConditionalIncrement(incrGuard)...)

	for _, o := range offloads {
		total := o.cw.Child.Latency() * o.cw.Child.NumRepeats()
		childDone := o.cw.Child.QueryBetween(total-1, total)
		guard := ir.GuardAnd{L: n.FSM.QueryBetween(o.state, o.state+1), R: childDone}
		out = append(out, n.FSM.ConditionalIncrement(guard)...)
	}

	out = append(out, n.FSM.ConditionalReset(finalState)...)

	if n.IterFSM != nil {
		iterFinal := n.IterFSM.FinalStateQuery()
		iterIncrGuard := ir.GuardAnd{L: finalState, R: ir.GuardNot{G: iterFinal}}
		iterWiring, _ := n.IterFSM.BuildIncrementer()
		out = append(out, iterWiring...)
		out = append(out, n.IterFSM.ConditionalIncrement(iterIncrGuard)...)
		out = append(out, n.IterFSM.ConditionalReset(ir.GuardAnd{L: finalState, R: iterFinal})...)
	}

	return out
}
