package static

import (
	"strings"
	"testing"

	"flowc/src/fsmtree"
	"flowc/src/ir"
)

func TestBuildForestFindsTopLevelStaticEnable(t *testing.T) {
	comp := newFixture()
	comp.AddGroup(staticGroup("g", 10, nil))
	comp.Control = ir.Enable{Node: 1, Group: "g"}

	f, err := buildForest(comp, ir.NewContext(), Options{})
	if err != nil {
		t.Fatalf("buildForest error: %v", err)
	}
	if _, ok := f.roots["g"]; !ok {
		t.Fatal("buildForest did not register \"g\" as a root")
	}
	if _, ok := f.nodes["g"]; !ok {
		t.Fatal("buildForest did not register \"g\" in nodes")
	}
}

func TestBuildForestIgnoresDynamicEnable(t *testing.T) {
	comp := newFixture()
	comp.AddGroup(&ir.Group{Name: ir.Identifier{Name: "d"}, Kind: ir.DynamicGroup})
	comp.Control = ir.Enable{Node: 1, Group: "d"}

	f, err := buildForest(comp, ir.NewContext(), Options{})
	if err != nil {
		t.Fatalf("buildForest error: %v", err)
	}
	if len(f.roots) != 0 {
		t.Fatalf("expected no roots for a dynamic-group enable, got %+v", f.roots)
	}
}

func TestBuildForestRecursesIntoNestedChild(t *testing.T) {
	comp := newFixture("child")
	parent := staticGroup("parent", 40, nil)
	parent.StaticAssigns = append(parent.StaticAssigns, childGoAssign(comp, "child", 0, 20))
	comp.AddGroup(parent)
	comp.AddGroup(staticGroup("child", 20, nil))
	comp.Control = ir.Enable{Node: 1, Group: "parent"}

	f, err := buildForest(comp, ir.NewContext(), Options{})
	if err != nil {
		t.Fatalf("buildForest error: %v", err)
	}
	if _, ok := f.nodes["child"]; !ok {
		t.Fatal("buildForest did not recurse into the nested child island")
	}
	if len(f.items) != 2 {
		t.Fatalf("got %d color.Items, want 2 (parent + child)", len(f.items))
	}
}

func TestBuildForestParGroupBuildsParNode(t *testing.T) {
	comp := newFixture("a", "b")
	parent := staticGroup("parent", 20, map[string]bool{"par": true})
	parent.StaticAssigns = append(parent.StaticAssigns,
		childGoAssign(comp, "a", 0, 20),
		childGoAssign(comp, "b", 0, 10),
	)
	comp.AddGroup(parent)
	comp.AddGroup(staticGroup("a", 20, nil))
	comp.AddGroup(staticGroup("b", 10, nil))
	comp.Control = ir.Enable{Node: 1, Group: "parent"}

	f, err := buildForest(comp, ir.NewContext(), Options{})
	if err != nil {
		t.Fatalf("buildForest error: %v", err)
	}
	n, ok := f.nodes["parent"]
	if !ok {
		t.Fatal("buildForest did not register \"parent\"")
	}
	if _, ok := n.(*fsmtree.ParNode); !ok {
		t.Fatalf("parent node is %T, want *fsmtree.ParNode", n)
	}
	threads, ok := f.parThreads["parent"]
	if !ok || len(threads) != 2 {
		t.Fatalf("parThreads[\"parent\"] = %+v, want 2 entries", threads)
	}
}

func TestBuildForestOffloadPauseFalseKeepsFullItemsForColoring(t *testing.T) {
	comp := newFixture("child")
	parent := staticGroup("parent", 40, nil)
	parent.StaticAssigns = append(parent.StaticAssigns, childGoAssign(comp, "child", 0, 20))
	comp.AddGroup(parent)
	comp.AddGroup(staticGroup("child", 20, nil))
	comp.Control = ir.Enable{Node: 1, Group: "parent"}

	f, err := buildForest(comp, ir.NewContext(), Options{OffloadPause: false})
	if err != nil {
		t.Fatalf("buildForest error: %v", err)
	}
	if len(f.items) != 2 {
		t.Fatalf("got %d color.Items with OffloadPause=false, want 2 (items stay full regardless)", len(f.items))
	}
	n := f.nodes["parent"].(*fsmtree.SingleNode)
	if len(n.Children) != 0 {
		t.Fatalf("parent SingleNode has %d children with OffloadPause=false, want 0 (no offload pausing)", len(n.Children))
	}
}

func TestBuildForestScheduleErrorPropagates(t *testing.T) {
	comp := newFixture("child")
	parent := staticGroup("parent", 10, nil)
	parent.StaticAssigns = append(parent.StaticAssigns, childGoAssign(comp, "child", 5, 20))
	comp.AddGroup(parent)
	comp.AddGroup(staticGroup("child", 15, nil))
	comp.Control = ir.Enable{Node: 1, Group: "parent"}

	_, err := buildForest(comp, ir.NewContext(), Options{})
	if err == nil {
		t.Fatal("expected buildForest to propagate a ScheduleError from a bad child window")
	}
}

func TestBuildForestAggregatesErrorsAcrossIndependentIslands(t *testing.T) {
	comp := newFixture("childAlpha", "childBravo")
	badAlpha := staticGroup("grpAlpha", 10, nil)
	badAlpha.StaticAssigns = append(badAlpha.StaticAssigns, childGoAssign(comp, "childAlpha", 5, 20))
	badBravo := staticGroup("grpBravo", 10, nil)
	badBravo.StaticAssigns = append(badBravo.StaticAssigns, childGoAssign(comp, "childBravo", 5, 20))
	comp.AddGroup(badAlpha)
	comp.AddGroup(staticGroup("childAlpha", 15, nil))
	comp.AddGroup(badBravo)
	comp.AddGroup(staticGroup("childBravo", 15, nil))
	comp.Control = ir.Seq{Node: 1, Children: []ir.Control{
		ir.Enable{Node: 2, Group: "grpAlpha"},
		ir.Enable{Node: 3, Group: "grpBravo"},
	}}

	_, err := buildForest(comp, ir.NewContext(), Options{})
	if err == nil {
		t.Fatal("expected buildForest to report errors from both malformed islands")
	}
	msg := err.Error()
	if !strings.Contains(msg, "grpAlpha") || !strings.Contains(msg, "grpBravo") {
		t.Fatalf("expected the aggregated error to mention both malformed groups, got: %v", msg)
	}
}
