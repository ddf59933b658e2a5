package static

import (
	"testing"

	"flowc/src/fsmtree"
	"flowc/src/ir"
)

func TestPromoteComponentLatencyOneUsesDelayRegister(t *testing.T) {
	comp := ir.NewComponent("top")
	ctx := ir.NewContext()
	wb := newWrapperBuilder(comp, ctx)
	early := &ir.Group{Name: ir.Identifier{Name: "early_reset_g"}}
	info := fsmtree.FSMInfo{FSMID: "fsm-1", FirstQuery: ir.GuardTrue{}, LastQuery: ir.GuardTrue{}}

	wb.promoteComponent(early, info, true)

	if _, ok := wb.findCell("this"); !ok {
		t.Fatal("promoteComponent did not create the synthetic \"this\" cell")
	}
	foundDone := false
	for _, a := range comp.Continuous {
		if comp.CellName(a.Dst) == "this" && a.Dst.Port == "done" {
			foundDone = true
		}
	}
	if !foundDone {
		t.Fatal("latency-1 promoteComponent produced no this.done continuous assignment")
	}
	if _, ok := wb.SignalRegCells()[info.FSMID]; ok {
		t.Fatal("latency-1 promoteComponent should not allocate a signal_reg")
	}
}

func TestPromoteComponentGeneralCaseUsesSignalReg(t *testing.T) {
	comp := ir.NewComponent("top")
	ctx := ir.NewContext()
	wb := newWrapperBuilder(comp, ctx)
	early := &ir.Group{Name: ir.Identifier{Name: "early_reset_g"}}
	info := fsmtree.FSMInfo{FSMID: "fsm-2", FirstQuery: ir.GuardTrue{}, LastQuery: ir.GuardTrue{}}

	wb.promoteComponent(early, info, false)

	if _, ok := wb.SignalRegCells()[info.FSMID]; !ok {
		t.Fatal("general-case promoteComponent did not allocate a signal_reg for its FSM id")
	}
	foundDone := false
	for _, a := range comp.Continuous {
		if comp.CellName(a.Dst) == "this" && a.Dst.Port == "done" {
			foundDone = true
		}
	}
	if !foundDone {
		t.Fatal("general-case promoteComponent produced no this.done continuous assignment")
	}
}

func TestPromoteComponentEmitsResetOncePerFSMID(t *testing.T) {
	comp := ir.NewComponent("top")
	ctx := ir.NewContext()
	wb := newWrapperBuilder(comp, ctx)
	info := fsmtree.FSMInfo{FSMID: "fsm-3", FirstQuery: ir.GuardTrue{}, LastQuery: ir.GuardTrue{}}

	wb.promoteComponent(&ir.Group{Name: ir.Identifier{Name: "early_reset_a"}}, info, false)
	before := len(comp.Continuous)
	wb.promoteComponent(&ir.Group{Name: ir.Identifier{Name: "early_reset_b"}}, info, false)
	after := len(comp.Continuous)

	// The second call for the same FSM id must not add the reset-to-0
	// assignments again, only its own raise/done pair.
	if after-before != 3 {
		t.Fatalf("second promoteComponent call for a shared FSM id added %d continuous assignments, want 3 (no duplicate reset)", after-before)
	}
}
