// Package ir defines the in-memory data model of the structured
// control-plus-dataflow intermediate language: cells, ports, guarded
// assignments, groups and the hierarchical control program. It is the
// "leaves first" layer every other package in this module builds on.
package ir

import (
	"fmt"

	"github.com/rs/xid"
)

// Pos is a source position, carried on every Identifier purely for
// diagnostic messages (spec section 7); the core never re-derives or
// validates it.
type Pos struct {
	File string
	Line int
	Col  int
}

// String renders Pos the way a compiler diagnostic would reference it.
func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Identifier is an interned symbol with a source position, used for cell
// names, group names and control-node tags.
type Identifier struct {
	Name string
	Pos  Pos
}

func (id Identifier) String() string {
	return id.Name
}

// Context is the explicit, non-global state-holder for id and label
// generation (spec section 9, "global mutable state: none"). The teacher's
// util/label.go hands out assembly labels from a package-global channel
// listener serving many concurrent goroutines; this module's pass is
// specified to run single-threaded against one exclusively-held component
// (spec section 5), so Context is instead a plain per-compilation counter
// threaded explicitly through the pipeline, with no channels or listener
// goroutine.
type Context struct {
	nextNodeID int
	labelSeq   map[string]int
}

// NewContext returns a fresh id/label generator.
func NewContext() *Context {
	return &Context{labelSeq: make(map[string]int)}
}

// NodeID uniquely identifies a control node (spec section 3 invariant:
// "every control node has a unique identifier assigned before analysis").
type NodeID int

// NextNodeID returns a fresh, unique NodeID.
func (c *Context) NextNodeID() NodeID {
	c.nextNodeID++
	return NodeID(c.nextNodeID)
}

// NewLabel returns a fresh name of the form "<prefix>_<seq>", numbering
// occurrences of prefix independently, mirroring the teacher's
// util/label.go numbering scheme (e.g. "LWhileHead_003") but generalized
// from a fixed enum of label kinds to an arbitrary caller-supplied prefix.
func (c *Context) NewLabel(prefix string) string {
	n := c.labelSeq[prefix]
	c.labelSeq[prefix] = n + 1
	return fmt.Sprintf("%s_%d", prefix, n)
}

// NewStableID returns a globally unique, collision-resistant identifier
// (spec section 4.2, StaticFSM.unique_id()) used to key wrapper and signal
// register deduplication across an entire compilation, independent of any
// single Context's counters.
func NewStableID() string {
	return xid.New().String()
}
