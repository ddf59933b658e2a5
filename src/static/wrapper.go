package static

import (
	"strconv"

	"flowc/src/fsmtree"
	"flowc/src/ir"
)

// wrapperBuilder tracks the per-FSM-unique-id state shared by every
// early-reset group that was colored onto the same FSM (spec.md section
// 4.5, section 9 "FSM sharing and wrappers": "key wrappers by FSM unique
// id, not group name, so that groups sharing an FSM also share a signal
// register, and its continuous reset is emitted exactly once").
type wrapperBuilder struct {
	comp *ir.Component
	ctx  *ir.Context

	signalRegs   map[string]*ir.Cell // fsm unique id -> shared signal_reg cell
	resetEmitted map[string]bool     // fsm unique id -> continuous reset already added
	wrapperOf    map[string]string   // early-reset group name -> wrapper group name
	continuous   []ir.Assignment     // accumulated continuous (always-on) assignments
}

func newWrapperBuilder(comp *ir.Component, ctx *ir.Context) *wrapperBuilder {
	return &wrapperBuilder{
		comp:         comp,
		ctx:          ctx,
		signalRegs:   make(map[string]*ir.Cell),
		resetEmitted: make(map[string]bool),
		wrapperOf:    make(map[string]string),
	}
}

func (w *wrapperBuilder) signalReg(fsmID string) *ir.Cell {
	if c, ok := w.signalRegs[fsmID]; ok {
		return c
	}
	name := w.ctx.NewLabel("sig_" + fsmID)
	c := w.comp.AddCell(name, ir.Prototype{Name: "std_reg", Params: map[string]int{"width": 1}}, []ir.Port{
		{Name: "in", Width: 1, Dir: ir.Input, Attrs: ir.AttrData},
		{Name: "write_en", Width: 1, Dir: ir.Input},
		{Name: "out", Width: 1, Dir: ir.Output, Attrs: ir.AttrData},
		{Name: "clk", Width: 1, Dir: ir.Input, Attrs: ir.AttrClk},
		{Name: "reset", Width: 1, Dir: ir.Input, Attrs: ir.AttrReset},
	})
	w.signalRegs[fsmID] = c
	return c
}

func (w *wrapperBuilder) constOne() ir.PortRef {
	return w.comp.Ref(w.constCellName(1), "out")
}

// constCellName returns (creating on first use) the name of a 1-bit
// std_const cell producing val.
func (w *wrapperBuilder) constCellName(val int) string {
	name := "static_const1_" + strconv.Itoa(val)
	if _, ok := w.findCell(name); ok {
		return name
	}
	w.comp.AddCell(name, ir.Prototype{Name: "std_const", Params: map[string]int{"width": 1, "value": val}}, []ir.Port{
		{Name: "out", Width: 1, Dir: ir.Output, Attrs: ir.AttrData},
	})
	return name
}

func (w *wrapperBuilder) findCell(name string) (*ir.Cell, bool) {
	for _, c := range w.comp.Cells {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// BuildWrapper implements spec.md section 4.5's per-top-level-enable wrapper
// synthesis: `early` is the early-reset group name being wrapped, `info` its
// FSM metadata. Returns the wrapper group's name, building the group (and,
// on first use of its FSM unique id, the shared signal_reg and the single
// continuous reset assignment) only once per early-reset group.
func (w *wrapperBuilder) BuildWrapper(early string, info fsmtree.FSMInfo) string {
	if name, ok := w.wrapperOf[early]; ok {
		return name
	}
	reg := w.signalReg(info.FSMID)
	wrapperName := "wrapper_" + early
	sigOut := w.comp.Ref(reg.Name, "out")

	raiseGuard := ir.GuardAnd{L: info.LastQuery, R: ir.GuardNot{G: ir.GuardCompare{Op: ir.CmpEq, L: sigOut, R: w.constOne()}}}
	done := ir.GuardCompare{Op: ir.CmpEq, L: sigOut, R: w.constOne()}

	g := &ir.Group{
		Name: ir.Identifier{Name: wrapperName},
		Kind: ir.DynamicGroup,
		Done: done,
		// Drives early[go] = 1 unconditionally for as long as the wrapper
		// itself runs (spec.md section 4.5).
		Enables: []string{early},
		Assigns: []ir.Assignment{
			{Dst: w.comp.Ref(reg.Name, "in"), Guard: raiseGuard, Src: w.comp.Ref(w.constCellName(1), "out")},
			{Dst: w.comp.Ref(reg.Name, "write_en"), Guard: raiseGuard, Src: w.comp.Ref(w.constCellName(1), "out")},
		},
	}
	w.comp.AddGroup(g)
	w.wrapperOf[early] = wrapperName

	if !w.resetEmitted[info.FSMID] {
		w.continuous = append(w.continuous,
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "in"), Guard: done, Src: w.comp.Ref(w.constCellName(0), "out")},
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "write_en"), Guard: done, Src: w.comp.Ref(w.constCellName(1), "out")},
		)
		w.resetEmitted[info.FSMID] = true
	}
	return wrapperName
}

// BuildStableWrapper implements the while-specialized wrapper of spec.md
// section 4.5: for a `while` whose body is a single static enable and whose
// condition port is declared @stable, drives early[go] unconditionally and
// declares done when the FSM is in its first state and the condition no
// longer holds, saving the one cycle a normal wrapper spends checking it.
func (w *wrapperBuilder) BuildStableWrapper(early string, info fsmtree.FSMInfo, condPort ir.PortRef) string {
	wrapperName := "wrapper_" + early
	done := ir.GuardAnd{L: info.FirstQuery, R: ir.GuardNot{G: ir.GuardPort{Port: condPort}}}
	g := &ir.Group{
		Name:    ir.Identifier{Name: wrapperName},
		Kind:    ir.DynamicGroup,
		Done:    done,
		Enables: []string{early},
	}
	w.comp.AddGroup(g)
	w.wrapperOf[early] = wrapperName
	return wrapperName
}

// ContinuousAssigns returns every continuous reset assignment accumulated so
// far (one signal_reg reset pair per distinct FSM unique id).
func (w *wrapperBuilder) ContinuousAssigns() []ir.Assignment {
	return w.continuous
}

// SignalRegCells returns the fsm-unique-id -> signal register cell map, for
// Result.SignalRegMap.
func (w *wrapperBuilder) SignalRegCells() map[string]*ir.Cell {
	return w.signalRegs
}

// WrapperOf returns the early-reset-group -> wrapper-group map, for
// Result.WrapperMap.
func (w *wrapperBuilder) WrapperOf() map[string]string {
	return w.wrapperOf
}
