package static

import (
	"flowc/src/fsmtree"
	"flowc/src/ir"
)

// selfCell returns (creating on first use) a synthetic cell representing the
// component's own signature go/done ports. ir.Component otherwise has no
// notion of its own signature ports — every other operation in this package
// only ever references cell ports — so this is deliberately narrow: it
// exists solely to give promoteComponent something to assign `done` to.
func (w *wrapperBuilder) selfCell() *ir.Cell {
	if c, ok := w.findCell("this"); ok {
		return c
	}
	return w.comp.AddCell("this", ir.Prototype{Name: w.comp.Name, IsComponent: true}, []ir.Port{
		{Name: "go", Width: 1, Dir: ir.Input, Attrs: ir.AttrGo},
		{Name: "done", Width: 1, Dir: ir.Output, Attrs: ir.AttrDone},
	})
}

// promoteComponent implements spec.md section 4.5's promoted-static-component
// special case: comp's entire control is a single static enable of g, and
// comp's signature carries the "promoted" attribute (ir.Component.Promoted).
// early's realized (timing-rewritten) assignments become continuous
// assignments instead of living in a group; done is produced by a one-cycle
// delay register of go when g has latency 1, or by (fsm in last state AND
// signal_reg) otherwise.
func (w *wrapperBuilder) promoteComponent(earlyGroup *ir.Group, info fsmtree.FSMInfo, latencyOne bool) {
	w.comp.Continuous = append(w.comp.Continuous, earlyGroup.Assigns...)
	self := w.selfCell()
	goPort := w.comp.Ref(self.Name, "go")

	if latencyOne {
		reg := w.comp.AddCell(w.ctx.NewLabel("promoted_delay"), ir.Prototype{Name: "std_reg", Params: map[string]int{"width": 1}}, []ir.Port{
			{Name: "in", Width: 1, Dir: ir.Input, Attrs: ir.AttrData},
			{Name: "write_en", Width: 1, Dir: ir.Input},
			{Name: "out", Width: 1, Dir: ir.Output, Attrs: ir.AttrData},
			{Name: "clk", Width: 1, Dir: ir.Input, Attrs: ir.AttrClk},
			{Name: "reset", Width: 1, Dir: ir.Input, Attrs: ir.AttrReset},
		})
		w.comp.Continuous = append(w.comp.Continuous,
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "in"), Guard: ir.GuardTrue{}, Src: goPort},
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "write_en"), Guard: ir.GuardTrue{}, Src: w.constOne()},
			ir.Assignment{Dst: w.comp.Ref(self.Name, "done"), Guard: ir.GuardTrue{}, Src: w.comp.Ref(reg.Name, "out")},
		)
		return
	}

	reg := w.signalReg(info.FSMID)
	sigOut := w.comp.Ref(reg.Name, "out")
	raiseGuard := ir.GuardAnd{L: info.LastQuery, R: ir.GuardNot{G: ir.GuardCompare{Op: ir.CmpEq, L: sigOut, R: w.constOne()}}}
	done := ir.GuardAnd{L: info.LastQuery, R: ir.GuardCompare{Op: ir.CmpEq, L: sigOut, R: w.constOne()}}

	w.comp.Continuous = append(w.comp.Continuous,
		ir.Assignment{Dst: w.comp.Ref(reg.Name, "in"), Guard: raiseGuard, Src: w.constOne()},
		ir.Assignment{Dst: w.comp.Ref(reg.Name, "write_en"), Guard: raiseGuard, Src: w.constOne()},
		ir.Assignment{Dst: w.comp.Ref(self.Name, "done"), Guard: done, Src: w.constOne()},
	)
	if !w.resetEmitted[info.FSMID] {
		w.comp.Continuous = append(w.comp.Continuous,
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "in"), Guard: done, Src: w.comp.Ref(w.constCellName(0), "out")},
			ir.Assignment{Dst: w.comp.Ref(reg.Name, "write_en"), Guard: done, Src: w.constOne()},
		)
		w.resetEmitted[info.FSMID] = true
	}
}
