// Package fsmtree implements static-island compilation (spec.md section
// 4.3): building a schedule tree over a static group's nested children,
// counting logic that drives the tree's FSM registers, interval queries
// translating a high-level cycle window into a hardware guard, and
// realization of the tree into a dynamic "early-reset" group.
//
// Grounded on the teacher's src/ir/lir/block.go parent-pointer + ordered
// child-instruction-list shape (generalized from "basic block of
// instructions" to "schedule window of cycles") and
// src/backend/riscv/function.go / src/backend/arm/function.go's pattern of
// threading a builder object through recursive emission.
package fsmtree

import (
	"flowc/src/fsm"
	"flowc/src/ir"
)

// StateType is the closed sum type of one schedule entry's behavior
// (spec.md section 4.3, "StateType variants").
type StateType interface {
	isState()
}

// Normal occupies the half-open FSM state range [Start, End); the parent
// FSM increments by one each cycle while here.
type Normal struct {
	Start, End int
}

func (Normal) isState() {}

// Offload holds the parent FSM at a single value while the child node
// occupying this window runs; the parent only increments again once the
// child reaches its own final cycle (spec.md section 4.3 "Offload").
type Offload struct {
	State int
}

func (Offload) isState() {}

// ScheduleEntry is one [Lo, Hi) cycle window of a SingleNode's schedule and
// the StateType it holds during that window.
type ScheduleEntry struct {
	Lo, Hi int
	State  StateType
}

// Node is the closed sum type of an FSM tree node (spec.md section 9,
// "Node is a closed sum type (Single | Par)").
type Node interface {
	isNode()
	Latency() int
	NumRepeats() int
	// QueryBetween converts a cycle window [i, j) in this node's own global
	// cycle numbering (0 to Latency()*NumRepeats()) into a dynamic guard
	// (spec.md section 4.3, "Query").
	QueryBetween(i, j int) ir.Guard
}

// ChildWindow pairs a nested Node with the cycle window, in its parent's
// cycle numbering, during which it runs.
type ChildWindow struct {
	Child  Node
	Lo, Hi int
}

// SingleNode is a static group with its own (possibly offloaded) schedule
// (spec.md section 4.3, "SingleNode state").
type SingleNode struct {
	Name       string
	LatencyVal int
	RepeatsVal int
	NumStates  int

	Schedule []ScheduleEntry
	Children []ChildWindow

	FSM     *fsm.StaticFSM // the parent FSM register driving this node's own schedule.
	IterFSM *fsm.StaticFSM // nil if RepeatsVal <= 1.

	// RootGroup names the original static ir.Group this node realizes.
	RootGroup string
}

func (*SingleNode) isNode()          {}
func (n *SingleNode) Latency() int   { return n.LatencyVal }
func (n *SingleNode) NumRepeats() int { return n.RepeatsVal }

// ParNode is a set of sibling trees executing in parallel under one name
// (spec.md section 4.3, "ParNode"). A par never owns its own FSM register:
// all schedule queries at the par level are answered by its longest child.
type ParNode struct {
	Name       string
	Children   []Node
	LongestIdx int
}

func (*ParNode) isNode() {}

func (p *ParNode) longest() Node { return p.Children[p.LongestIdx] }

func (p *ParNode) Latency() int    { return p.longest().Latency() }
func (p *ParNode) NumRepeats() int { return p.longest().NumRepeats() }

// QueryBetween on a ParNode delegates entirely to the longest child's
// schedule (spec.md section 4.3, "its FSMs are used for all schedule
// queries at the par level").
func (p *ParNode) QueryBetween(i, j int) ir.Guard {
	return p.longest().QueryBetween(i, j)
}

// ShorterChildGo returns the %[0:Lchild) static timing guard a shorter
// ParNode child's own `go` is driven by (spec.md section 4.3, "shorter
// children drive their own go via %[0:Lchild] guards"), expressed over the
// par's own cycle numbering (equivalently the longest child's, since par
// nodes share one numbering).
func (p *ParNode) ShorterChildGo(child Node) ir.StaticGuard {
	return ir.SGInterval{Lo: 0, Hi: child.Latency()}
}
