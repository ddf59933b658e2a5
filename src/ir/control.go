package ir

// Control is the closed sum type of the hierarchical control program (spec
// section 3). Per the design note in section 9 ("Dynamic dispatch"), Node
// (and Control) prefer tagged variants over virtual dispatch: each variant
// is its own concrete struct implementing the unexported isControl marker,
// which lets a switch over a Control value be checked for exhaustiveness by
// tooling, unlike an open interface with arbitrary external implementers.
type Control interface {
	isControl()
	ID() NodeID
}

// Empty is the no-op control node.
type Empty struct {
	Node NodeID
}

func (Empty) isControl()     {}
func (n Empty) ID() NodeID   { return n.Node }

// Enable runs the named group until it signals done.
type Enable struct {
	Node  NodeID
	Group string
}

func (Enable) isControl()   {}
func (n Enable) ID() NodeID { return n.Node }

// PortBinding connects a port on an invoked cell to a port in the invoking
// scope, e.g. invoke's `in1 = a.out`.
type PortBinding struct {
	Port  string
	Value PortRef
}

// Invoke directly drives a cell's inputs and reads its outputs for one
// invocation, optionally computing some of those connections through a
// combinational group, and optionally binding the cell's own `ref` cell
// parameters to caller-supplied cells.
type Invoke struct {
	Node      NodeID
	Cell      string
	Inputs    []PortBinding
	Outputs   []PortBinding
	CombGroup string // "" if none
	RefCells  map[string]string
}

func (Invoke) isControl()   {}
func (n Invoke) ID() NodeID { return n.Node }

// Seq runs its children one after another.
type Seq struct {
	Node     NodeID
	Children []Control
}

func (Seq) isControl()     {}
func (n Seq) ID() NodeID   { return n.Node }

// Par runs all of its children starting together (spec section 3 invariant:
// "par children are mutually concurrent").
type Par struct {
	Node     NodeID
	Children []Control
}

func (Par) isControl()   {}
func (n Par) ID() NodeID { return n.Node }

// If runs Then or Else depending on Port, optionally computed by CombGroup.
type If struct {
	Node      NodeID
	Port      PortRef
	CombGroup string // "" if none
	Then      Control
	Else      Control // may be Empty
}

func (If) isControl()   {}
func (n If) ID() NodeID { return n.Node }

// While repeats Body while Port holds, optionally computed by CombGroup.
// Bound, when HasBound is true, is a statically known non-negative
// iteration count.
type While struct {
	Node      NodeID
	Port      PortRef
	CombGroup string // "" if none
	Body      Control
	HasBound  bool
	Bound     int
}

func (While) isControl()   {}
func (n While) ID() NodeID { return n.Node }

// Repeat runs Body exactly Count times. Count is always a compile-time
// constant — this is the control-tree repeat, distinct from While's
// optional dynamic bound.
type Repeat struct {
	Node  NodeID
	Count int
	Body  Control
}

func (Repeat) isControl()   {}
func (n Repeat) ID() NodeID { return n.Node }

// StaticControl mirrors Control for the static sublanguage (spec section 3:
// "Static sub-tree mirroring the above, plus StaticRepeat; every static node
// carries a latency"). The static-island compilation pass (package static)
// operates on ordinary Control trees whose Enable leaves happen to name
// static Groups (spec section 4.5); StaticControl represents the
// source-level static program before an earlier, separate pass flattens it
// into such static Groups with %[i:j] assignments, and is therefore carried
// here for data-model completeness rather than walked by this module's
// passes.
type StaticControl interface {
	isStaticControl()
	Latency() int
}

type StaticEmpty struct{ Node NodeID }

func (StaticEmpty) isStaticControl() {}
func (StaticEmpty) Latency() int     { return 0 }

type StaticEnable struct {
	Node NodeID
	Group string
	Lat  int
}

func (StaticEnable) isStaticControl() {}
func (s StaticEnable) Latency() int   { return s.Lat }

type StaticInvoke struct {
	Node    NodeID
	Cell    string
	Inputs  []PortBinding
	Outputs []PortBinding
	Lat     int
}

func (StaticInvoke) isStaticControl() {}
func (s StaticInvoke) Latency() int   { return s.Lat }

// StaticSeq's latency is the sum of its children's.
type StaticSeq struct {
	Node     NodeID
	Children []StaticControl
}

func (StaticSeq) isStaticControl() {}
func (s StaticSeq) Latency() int {
	total := 0
	for _, c := range s.Children {
		total += c.Latency()
	}
	return total
}

// StaticPar's latency is the max of its children's (they start together).
type StaticPar struct {
	Node     NodeID
	Children []StaticControl
}

func (StaticPar) isStaticControl() {}
func (s StaticPar) Latency() int {
	max := 0
	for _, c := range s.Children {
		if l := c.Latency(); l > max {
			max = l
		}
	}
	return max
}

// StaticIf's latency is the max of its two branches'.
type StaticIf struct {
	Node      NodeID
	Port      PortRef
	CombGroup string
	Then      StaticControl
	Else      StaticControl
}

func (StaticIf) isStaticControl() {}
func (s StaticIf) Latency() int {
	t, f := 0, 0
	if s.Then != nil {
		t = s.Then.Latency()
	}
	if s.Else != nil {
		f = s.Else.Latency()
	}
	if t > f {
		return t
	}
	return f
}

// StaticRepeat's latency is Count times its body's.
type StaticRepeat struct {
	Node  NodeID
	Count int
	Body  StaticControl
}

func (StaticRepeat) isStaticControl() {}
func (s StaticRepeat) Latency() int   { return s.Count * s.Body.Latency() }
