package fsm

import (
	"fmt"

	"flowc/src/ir"
)

// StaticFSM is a counter register with value range [0, N) and a chosen
// encoding (spec section 4.2). It is grounded on the teacher's
// src/backend/regfile/regfile.go interface-for-a-hardware-resource idiom,
// generalized from "virtual register file" to "one FSM counter register",
// and on src/ir/lir/types/types.go's iota-enum-with-width-rule idiom for
// Encoding/Width above.
type StaticFSM struct {
	ID       string // unique_id(): stable across the lifetime of this StaticFSM.
	Name     string // base name, used to derive cell and group names.
	Count    int    // N: number of distinct states.
	Encoding Encoding
	Width    int

	Reg   *ir.Cell // nil if Count <= 1: no register is instantiated.
	adder *ir.Cell // built lazily by BuildIncrementer.

	comp      *ir.Component
	ctx       *ir.Context
	constCache map[int]*ir.Cell
}

// New builds a StaticFSM able to count to count (exclusive), choosing its
// encoding via the one-hot cutoff pass option.
func New(comp *ir.Component, ctx *ir.Context, name string, count, oneHotCutoff int) *StaticFSM {
	enc := ChooseEncoding(count, oneHotCutoff)
	f := &StaticFSM{
		ID:         ir.NewStableID(),
		Name:       name,
		Count:      count,
		Encoding:   enc,
		Width:      Width(count, enc),
		comp:       comp,
		ctx:        ctx,
		constCache: make(map[int]*ir.Cell),
	}
	if count > 1 {
		f.Reg = f.newRegisterCell(name, f.Width)
	}
	return f
}

// newRegisterCell instantiates a std_reg-shaped cell: in/write_en/out ports.
func (f *StaticFSM) newRegisterCell(name string, width int) *ir.Cell {
	cellName := f.ctx.NewLabel(name)
	return f.comp.AddCell(cellName, ir.Prototype{Name: "std_reg", Params: map[string]int{"width": width}}, []ir.Port{
		{Name: "in", Width: width, Dir: ir.Input, Attrs: ir.AttrData},
		{Name: "write_en", Width: 1, Dir: ir.Input},
		{Name: "out", Width: width, Dir: ir.Output, Attrs: ir.AttrData},
		{Name: "clk", Width: 1, Dir: ir.Input, Attrs: ir.AttrClk},
		{Name: "reset", Width: 1, Dir: ir.Input, Attrs: ir.AttrReset},
	})
}

// constant returns (creating and caching on first use) a std_const cell
// producing the literal value val at the FSM's register width.
func (f *StaticFSM) constant(val int) ir.PortRef {
	if c, ok := f.constCache[val]; ok {
		return f.comp.Ref(c.Name, "out")
	}
	name := f.ctx.NewLabel(fmt.Sprintf("%s_const_%d", f.Name, val))
	c := f.comp.AddCell(name, ir.Prototype{Name: "std_const", Params: map[string]int{"width": f.Width, "value": val}}, []ir.Port{
		{Name: "out", Width: f.Width, Dir: ir.Output, Attrs: ir.AttrData},
	})
	f.constCache[val] = c
	return f.comp.Ref(c.Name, "out")
}

// resetValue is the value the register is loaded with by ConditionalReset:
// 0 for binary, 1 (i.e. 1<<0) for one-hot.
func (f *StaticFSM) resetValue() int {
	if f.Encoding == OneHot {
		return 1
	}
	return 0
}

// BuildIncrementer builds (once, idempotently) the combinational cell that
// computes the FSM's next state from its current state: an adder for
// binary encoding, a left-shift-by-one for one-hot (spec section 4.2:
// "build_incrementer(builder) -> (assigns, adder_cell)"). It returns the
// assignments wiring the cell's inputs and the cell itself.
func (f *StaticFSM) BuildIncrementer() ([]ir.Assignment, *ir.Cell) {
	if f.adder != nil {
		return nil, f.adder
	}
	if f.Reg == nil {
		panic("fsm: BuildIncrementer called on an FSM with no register (count <= 1)")
	}
	regOut := f.comp.Ref(f.Reg.Name, "out")
	switch f.Encoding {
	case OneHot:
		name := f.ctx.NewLabel(f.Name + "_lsh")
		cell := f.comp.AddCell(name, ir.Prototype{Name: "std_lsh", Params: map[string]int{"width": f.Width, "by": 1}, IsComb: true}, []ir.Port{
			{Name: "left", Width: f.Width, Dir: ir.Input},
			{Name: "right", Width: f.Width, Dir: ir.Input},
			{Name: "out", Width: f.Width, Dir: ir.Output, Attrs: ir.AttrData},
		})
		f.adder = cell
		return []ir.Assignment{
			{Dst: f.comp.Ref(name, "left"), Guard: ir.GuardTrue{}, Src: regOut},
			{Dst: f.comp.Ref(name, "right"), Guard: ir.GuardTrue{}, Src: f.constant(1)},
		}, cell
	default:
		name := f.ctx.NewLabel(f.Name + "_add")
		cell := f.comp.AddCell(name, ir.Prototype{Name: "std_add", Params: map[string]int{"width": f.Width}, IsComb: true}, []ir.Port{
			{Name: "left", Width: f.Width, Dir: ir.Input},
			{Name: "right", Width: f.Width, Dir: ir.Input},
			{Name: "out", Width: f.Width, Dir: ir.Output, Attrs: ir.AttrData},
		})
		f.adder = cell
		return []ir.Assignment{
			{Dst: f.comp.Ref(name, "left"), Guard: ir.GuardTrue{}, Src: regOut},
			{Dst: f.comp.Ref(name, "right"), Guard: ir.GuardTrue{}, Src: f.constant(1)},
		}, cell
	}
}

// ConditionalIncrement returns the assignments that, while guard holds,
// write the incrementer's output into the register (spec section 4.2:
// "writes next = adder_out and write_en = 1 guarded by guard").
func (f *StaticFSM) ConditionalIncrement(guard ir.Guard) []ir.Assignment {
	_, adder := f.BuildIncrementer()
	return []ir.Assignment{
		{Dst: f.comp.Ref(f.Reg.Name, "in"), Guard: guard, Src: f.comp.Ref(adder.Name, "out")},
		{Dst: f.comp.Ref(f.Reg.Name, "write_en"), Guard: guard, Src: f.constant(1)},
	}
}

// ConditionalReset returns the assignments that, while guard holds, load
// the register back to its reset state (spec section 4.2).
func (f *StaticFSM) ConditionalReset(guard ir.Guard) []ir.Assignment {
	return []ir.Assignment{
		{Dst: f.comp.Ref(f.Reg.Name, "in"), Guard: guard, Src: f.constant(f.resetValue())},
		{Dst: f.comp.Ref(f.Reg.Name, "write_en"), Guard: guard, Src: f.constant(1)},
	}
}

// QueryBetween returns a dynamic Guard that is true exactly when
// i <= state < j (spec section 4.2 and section 8 testable properties 4-5).
func (f *StaticFSM) QueryBetween(i, j int) ir.Guard {
	if i <= 0 && j >= f.Count {
		return ir.GuardTrue{}
	}
	if f.Count <= 1 {
		// A single-state FSM (no register) is always "in" its one state.
		if i <= 0 && j >= 1 {
			return ir.GuardTrue{}
		}
		return ir.GuardNot{G: ir.GuardTrue{}} // outside [0,1): unsatisfiable
	}
	out := f.comp.Ref(f.Reg.Name, "out")
	switch f.Encoding {
	case OneHot:
		var g ir.Guard
		for k := i; k < j; k++ {
			eq := ir.GuardCompare{Op: ir.CmpEq, L: out, R: f.constant(1 << uint(k))}
			if g == nil {
				g = eq
			} else {
				g = ir.GuardOr{L: g, R: eq}
			}
		}
		return g
	default:
		var lo, hi ir.Guard
		if i > 0 {
			lo = ir.GuardCompare{Op: ir.CmpGe, L: out, R: f.constant(i)}
		}
		if j < f.Count {
			hi = ir.GuardCompare{Op: ir.CmpLt, L: out, R: f.constant(j)}
		}
		switch {
		case lo == nil && hi == nil:
			return ir.GuardTrue{}
		case lo == nil:
			return hi
		case hi == nil:
			return lo
		default:
			return ir.GuardAnd{L: lo, R: hi}
		}
	}
}

// FinalStateQuery is QueryBetween(Count-1, Count), the guard used to detect
// the FSM's last cycle (used pervasively by counting and wrapper synthesis).
func (f *StaticFSM) FinalStateQuery() ir.Guard {
	return f.QueryBetween(f.Count-1, f.Count)
}

// FirstStateQuery is QueryBetween(0, 1).
func (f *StaticFSM) FirstStateQuery() ir.Guard {
	return f.QueryBetween(0, 1)
}
