package static

import (
	"testing"

	"flowc/src/fsmtree"
	"flowc/src/ir"
)

func newWrapperFixture(t *testing.T) (*ir.Component, *ir.Context, *wrapperBuilder, fsmtree.FSMInfo) {
	t.Helper()
	comp := ir.NewComponent("top")
	ctx := ir.NewContext()
	comp.AddCell("early_reset_g", ir.Prototype{Name: "early_reset_g", IsComponent: true}, []ir.Port{
		{Name: "go", Width: 1, Dir: ir.Input, Attrs: ir.AttrGo},
	})
	wb := newWrapperBuilder(comp, ctx)
	info := fsmtree.FSMInfo{FSMID: "fsm-1", FirstQuery: ir.GuardTrue{}, LastQuery: ir.GuardTrue{}}
	return comp, ctx, wb, info
}

func TestBuildWrapperIdempotentPerEarlyName(t *testing.T) {
	_, _, wb, info := newWrapperFixture(t)

	first := wb.BuildWrapper("early_reset_g", info)
	reset1 := len(wb.ContinuousAssigns())
	second := wb.BuildWrapper("early_reset_g", info)
	reset2 := len(wb.ContinuousAssigns())

	if first != second {
		t.Fatalf("BuildWrapper returned different names on repeat calls: %q then %q", first, second)
	}
	if reset2 != reset1 {
		t.Fatalf("continuous reset assignments grew on repeat BuildWrapper call: %d then %d", reset1, reset2)
	}
}

func TestBuildWrapperDrivesEarlyThroughEnables(t *testing.T) {
	_, _, wb, info := newWrapperFixture(t)
	name := wb.BuildWrapper("early_reset_g", info)
	g := wb.comp.Group(name)
	if len(g.Enables) != 1 || g.Enables[0] != "early_reset_g" {
		t.Fatalf("wrapper group Enables = %+v, want [\"early_reset_g\"]", g.Enables)
	}
	if g.Done == nil {
		t.Fatal("wrapper group must set an explicit Done guard")
	}
}

func TestSignalRegSharedAcrossSameFSMID(t *testing.T) {
	_, _, wb, info := newWrapperFixture(t)
	r1 := wb.signalReg(info.FSMID)
	r2 := wb.signalReg(info.FSMID)
	if r1 != r2 {
		t.Fatal("signalReg built two distinct registers for the same FSM unique id")
	}
}
