package ir

import "fmt"

// Component owns the cell and group arenas for one hardware component
// (spec section 9, "Cyclic graphs": "arena-owned cells and indices; ports
// hold a parent index, not an owning handle"), generalizing the teacher's
// lir.Function owning a []*Block (src/ir/lir/function.go) to a component
// owning []*Cell and []*Group.
type Component struct {
	Name    string
	Cells   []*Cell
	Groups  []*Group
	Control Control

	// Continuous holds assignments active every cycle regardless of any
	// group's go/done, outside the group/control structure entirely (spec
	// section 4.5: a wrapper's signal_reg reset, and a promoted static
	// component's top-level group body, are both emitted here).
	Continuous []Assignment

	// Promoted marks a component whose signature bears the "promoted"
	// attribute (spec section 4.5): when its entire control is a single
	// static enable, that group compiles to continuous assignments and a
	// delay-register/signal_reg done instead of a wrapper group.
	Promoted bool

	cellIdx  map[string]int
	groupIdx map[string]int
}

// NewComponent returns an empty Component ready to have cells and groups
// added to it.
func NewComponent(name string) *Component {
	return &Component{
		Name:     name,
		cellIdx:  make(map[string]int),
		groupIdx: make(map[string]int),
	}
}

// AddCell appends a new cell to the component's arena and returns it.
// Panics on a duplicate name: a bug in the caller (spec section 7, internal
// invariant violation), never a user-facing error.
func (c *Component) AddCell(name string, proto Prototype, ports []Port) *Cell {
	if _, ok := c.cellIdx[name]; ok {
		panic("ir: duplicate cell " + name)
	}
	idx := len(c.Cells)
	cell := &Cell{Name: name, Proto: proto, Ports: ports}
	for i := range cell.Ports {
		cell.Ports[i].CellIdx = idx
	}
	c.Cells = append(c.Cells, cell)
	c.cellIdx[name] = idx
	return cell
}

// Cell looks up a cell by name. Panics if absent.
func (c *Component) Cell(name string) *Cell {
	idx, ok := c.cellIdx[name]
	if !ok {
		panic("ir: component " + c.Name + " has no cell " + name)
	}
	return c.Cells[idx]
}

// CellAt resolves a PortRef's CellIdx to its owning Cell. Panics on an
// out-of-range index: a dangling reference is an internal invariant
// violation (spec section 7).
func (c *Component) CellAt(idx int) *Cell {
	if idx < 0 || idx >= len(c.Cells) {
		panic(fmt.Sprintf("ir: cell index %d out of range for component %s", idx, c.Name))
	}
	return c.Cells[idx]
}

// Ref builds a PortRef naming cellName.portName, resolved once against the
// component's cell arena. Convenience for hand-building fixtures and for
// passes that work with names; the resulting PortRef itself only stores the
// resolved index, matching the index-not-pointer design note.
func (c *Component) Ref(cellName, portName string) PortRef {
	cell := c.Cell(cellName)
	if !cell.HasPort(portName) {
		panic("ir: cell " + cellName + " has no port " + portName)
	}
	return PortRef{CellIdx: c.cellIdx[cellName], Port: portName}
}

// ResolvePort returns the Port named by ref.
func (c *Component) ResolvePort(ref PortRef) *Port {
	return c.CellAt(ref.CellIdx).Port(ref.Port)
}

// CellName returns the name of the cell owning ref, for diagnostics.
func (c *Component) CellName(ref PortRef) string {
	return c.CellAt(ref.CellIdx).Name
}

// AddGroup appends a new group to the component's arena and returns it.
// Panics on a duplicate name.
func (c *Component) AddGroup(g *Group) *Group {
	name := g.Name.Name
	if _, ok := c.groupIdx[name]; ok {
		panic("ir: duplicate group " + name)
	}
	c.groupIdx[name] = len(c.Groups)
	c.Groups = append(c.Groups, g)
	return g
}

// Group looks up a group by name. Panics if absent: spec section 7 treats a
// reference to a group absent from the input as a bug in the caller.
func (c *Component) Group(name string) *Group {
	idx, ok := c.groupIdx[name]
	if !ok {
		panic("ir: component " + c.Name + " has no group " + name)
	}
	return c.Groups[idx]
}

// HasGroup reports whether the component declares a group of the given name.
func (c *Component) HasGroup(name string) bool {
	_, ok := c.groupIdx[name]
	return ok
}

// RemoveGroup deletes a group by name, used once static groups have been
// fully realized into early-reset/wrapper groups (spec section 6, "all
// static groups removed").
func (c *Component) RemoveGroup(name string) {
	idx, ok := c.groupIdx[name]
	if !ok {
		return
	}
	c.Groups = append(c.Groups[:idx], c.Groups[idx+1:]...)
	delete(c.groupIdx, name)
	for n, i := range c.groupIdx {
		if i > idx {
			c.groupIdx[n] = i - 1
		}
	}
}

// StaticGroups returns every group of Kind StaticGroupKind, in declaration
// order.
func (c *Component) StaticGroups() []*Group {
	res := make([]*Group, 0)
	for _, g := range c.Groups {
		if g.Kind == StaticGroupKind {
			res = append(res, g)
		}
	}
	return res
}
