package ir

// Direction is the signal direction of a Port.
type Direction int

const (
	Input Direction = iota
	Output
	Inout
)

var directionNames = [...]string{"input", "output", "inout"}

func (d Direction) String() string {
	if d < Input || d > Inout {
		return "invalid-direction"
	}
	return directionNames[d]
}

// Attribute is a role attribute a Port may carry, drawn from
// {go, done, clk, reset, data, stable} (spec section 3). Ports may carry
// more than one, so Attribute is a bit flag.
type Attribute uint8

const (
	AttrGo Attribute = 1 << iota
	AttrDone
	AttrClk
	AttrReset
	AttrData
	AttrStable
)

var attributeNames = []struct {
	bit  Attribute
	name string
}{
	{AttrGo, "go"},
	{AttrDone, "done"},
	{AttrClk, "clk"},
	{AttrReset, "reset"},
	{AttrData, "data"},
	{AttrStable, "stable"},
}

// String renders the set of attributes, e.g. "go|done".
func (a Attribute) String() string {
	if a == 0 {
		return ""
	}
	s := ""
	for _, e := range attributeNames {
		if a&e.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += e.name
		}
	}
	return s
}

// Has reports whether a carries every bit of want.
func (a Attribute) Has(want Attribute) bool {
	return a&want == want
}

// Port is a named, width-typed, directional pin of a Cell. Per spec section
// 9 ("Cyclic graphs"), Port holds an index back to its owning Cell rather
// than an owning pointer, mirroring the teacher's lir.Block.f parent-pointer
// shape generalized to an arena index.
type Port struct {
	Name    string
	Width   int
	Dir     Direction
	Attrs   Attribute
	CellIdx int // index into Component.Cells of the owning cell; -1 if unbound
}

// PortRef names a port by (cell, port) index pair, resolved against a
// Component. Using indices instead of pointers keeps the cyclic cell/port
// graph arena-owned (spec section 9).
type PortRef struct {
	CellIdx int
	Port    string
}

// Prototype describes what a Cell is an instance of: either a primitive
// (by name, with parameter bindings) or a reference to another component.
type Prototype struct {
	Name       string
	Params     map[string]int
	IsComb     bool // true if the primitive is purely combinational
	Latency    int  // cycle latency; 0 if not a fixed-latency primitive
	IsComponent bool // true if Name refers to another component, not a primitive
}

// Cell is an instance with a prototype and an ordered list of ports.
type Cell struct {
	Name  string
	Proto Prototype
	Ports []Port
}

// Port looks up a port by name on the cell. It panics if absent: a
// reference to a non-existent port is an internal invariant violation
// (spec section 7), never a user-facing error.
func (c *Cell) Port(name string) *Port {
	for i := range c.Ports {
		if c.Ports[i].Name == name {
			return &c.Ports[i]
		}
	}
	panic("ir: cell " + c.Name + " has no port " + name)
}

// HasPort reports whether the cell declares a port of the given name.
func (c *Cell) HasPort(name string) bool {
	for i := range c.Ports {
		if c.Ports[i].Name == name {
			return true
		}
	}
	return false
}

// AttrPort returns the first port carrying every bit of want, or nil.
// Used to find e.g. a cell's @go or @done port without hard-coding names.
func (c *Cell) AttrPort(want Attribute) *Port {
	for i := range c.Ports {
		if c.Ports[i].Attrs.Has(want) {
			return &c.Ports[i]
		}
	}
	return nil
}
