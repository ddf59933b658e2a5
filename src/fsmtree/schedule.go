package fsmtree

import (
	"sort"

	"flowc/src/fsm"
	"flowc/src/ir"
)

// BuildTreeSchedule implements spec.md section 4.3 "Schedule construction"
// (`build_tree_schedule`): walks children in window order, inserting a
// Normal range for each gap between (or before/after) child windows and a
// single Offload state for each child window, then instantiates the
// node's FSM register (and, if repeats > 1, its iteration counter).
func BuildTreeSchedule(comp *ir.Component, ctx *ir.Context, opts Options, name, rootGroup string, latency, repeats int, children []ChildWindow) *SingleNode {
	sorted := make([]ChildWindow, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	var schedule []ScheduleEntry
	cursor, fsmCursor := 0, 0
	for _, cw := range sorted {
		if gap := cw.Lo - cursor; gap > 0 {
			schedule = append(schedule, ScheduleEntry{Lo: cursor, Hi: cw.Lo, State: Normal{Start: fsmCursor, End: fsmCursor + gap}})
			fsmCursor += gap
		}
		schedule = append(schedule, ScheduleEntry{Lo: cw.Lo, Hi: cw.Hi, State: Offload{State: fsmCursor}})
		fsmCursor++
		cursor = cw.Hi
	}
	if gap := latency - cursor; gap > 0 {
		schedule = append(schedule, ScheduleEntry{Lo: cursor, Hi: latency, State: Normal{Start: fsmCursor, End: fsmCursor + gap}})
		fsmCursor += gap
	}

	n := &SingleNode{
		Name:       name,
		LatencyVal: latency,
		RepeatsVal: repeats,
		NumStates:  fsmCursor,
		Schedule:   schedule,
		Children:   sorted,
		RootGroup:  rootGroup,
	}
	if n.NumStates > 1 {
		n.FSM = fsm.New(comp, ctx, name+"_fsm", n.NumStates, opts.OneHotCutoff)
	}
	if repeats > 1 {
		n.IterFSM = fsm.New(comp, ctx, name+"_iter", repeats, opts.OneHotCutoff)
	}
	return n
}

// childWindowFor returns the ChildWindow whose Offload schedule entry spans
// [lo, hi), or the zero value and false if none matches.
func (n *SingleNode) childWindowFor(lo, hi int) (ChildWindow, bool) {
	for _, cw := range n.Children {
		if cw.Lo == lo && cw.Hi == hi {
			return cw, true
		}
	}
	return ChildWindow{}, false
}
