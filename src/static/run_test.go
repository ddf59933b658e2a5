package static

import (
	"testing"

	"flowc/src/ir"
)

// singleGroupComponent builds a component whose entire control is one
// top-level static enable of group "g" with the given latency, with no
// nested children.
func singleGroupComponent(latency int, promoted bool) *ir.Component {
	comp := newFixture()
	comp.AddGroup(staticGroup("g", latency, nil))
	comp.Control = ir.Enable{Node: 1, Group: "g"}
	comp.Promoted = promoted
	return comp
}

func TestRunRemovesStaticGroupsAndBuildsWrapper(t *testing.T) {
	comp := singleGroupComponent(4, false)
	ctx := ir.NewContext()

	res, err := Run(comp, ctx, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(comp.StaticGroups()) != 0 {
		t.Fatalf("expected no static groups left, got %d", len(comp.StaticGroups()))
	}
	early, ok := res.ResetEarlyMap["g"]
	if !ok {
		t.Fatal("ResetEarlyMap missing entry for \"g\"")
	}
	if !comp.HasGroup(early) {
		t.Fatalf("early-reset group %q not added to component", early)
	}
	wrapperName, ok := res.WrapperMap[early]
	if !ok {
		t.Fatalf("WrapperMap missing entry for early-reset group %q", early)
	}
	en, ok := comp.Control.(ir.Enable)
	if !ok {
		t.Fatalf("control not rewritten to an Enable, got %T", comp.Control)
	}
	if en.Group != wrapperName {
		t.Fatalf("control enables %q, want wrapper %q", en.Group, wrapperName)
	}
}

func TestRunPromotedComponentClearsControl(t *testing.T) {
	comp := singleGroupComponent(1, true)
	ctx := ir.NewContext()

	_, err := Run(comp, ctx, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, ok := comp.Control.(ir.Empty); !ok {
		t.Fatalf("promoted component's control not cleared to Empty, got %T", comp.Control)
	}
	if len(comp.Continuous) == 0 {
		t.Fatal("promoted component produced no continuous assignments")
	}
	if len(comp.StaticGroups()) != 0 {
		t.Fatalf("expected no static groups left, got %d", len(comp.StaticGroups()))
	}
}

func TestRunNoStaticGroupsIsNoop(t *testing.T) {
	comp := ir.NewComponent("top")
	comp.Control = ir.Empty{Node: 1}
	ctx := ir.NewContext()

	res, err := Run(comp, ctx, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.ResetEarlyMap) != 0 || len(res.WrapperMap) != 0 {
		t.Fatalf("expected empty result for a component with no static groups, got %+v", res)
	}
}

func TestRunNestedChildRewiresChildGo(t *testing.T) {
	comp := newFixture("child")
	parent := staticGroup("parent", 40, nil)
	parent.StaticAssigns = append(parent.StaticAssigns, childGoAssign(comp, "child", 0, 20))
	comp.AddGroup(parent)
	comp.AddGroup(staticGroup("child", 20, nil))
	comp.Control = ir.Enable{Node: 1, Group: "parent"}
	ctx := ir.NewContext()

	res, err := Run(comp, ctx, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	earlyParent, ok := res.ResetEarlyMap["parent"]
	if !ok {
		t.Fatal("ResetEarlyMap missing entry for \"parent\"")
	}
	earlyChild, ok := res.ResetEarlyMap["child"]
	if !ok {
		t.Fatal("ResetEarlyMap missing entry for \"child\"")
	}

	g := comp.Group(earlyParent)
	found := false
	for _, a := range g.Assigns {
		if a.Dst.CellIdx >= 0 && comp.CellName(a.Dst) == earlyChild && a.Dst.Port == "go" {
			found = true
		}
	}
	if !found {
		t.Fatalf("parent early-reset group %q still references the child pseudo-cell instead of %q", earlyParent, earlyChild)
	}
}
