package static

import (
	"errors"

	"flowc/src/color"
	"flowc/src/fsmtree"
	"flowc/src/ir"
	"flowc/src/util"
)

// forest is the result of walking the dynamic control tree and building one
// fsmtree.Node per top-level static group found at a leaf Enable (spec.md
// section 2 step 4, section 4.3).
type forest struct {
	roots      map[string]fsmtree.Node // top-level static group name -> its tree
	nodes      map[string]fsmtree.Node // every static group name reached, root or nested, -> its own Node
	parThreads map[string][]*ir.Group  // ParNode group name -> its threads' original static groups, in child order
	items      []color.Item            // one per static group reachable, for coloring
	islandOf   map[ir.NodeID]int       // Enable node id -> its island's TreeID
}

// buildForest walks comp.Control for leaf Enable nodes naming a static
// group, validates each island's schedule (spec.md section 4.6), and builds
// its fsmtree.Node (spec.md section 4.3). A static group enabled directly
// as a Repeat control node's body inherits that Repeat's Count as its own
// num_repeats (an enable reached through a Seq/Par/If/While inside the
// Repeat gets 1);
// nested static children inherit their repeat count from their own
// child[go] window width divided by their own latency (spec.md section 3
// invariant: "(j-i) is a positive multiple of the child group's latency").
//
// Every top-level island is attempted independently: a malformed schedule
// in one island does not stop the walk from validating the rest, so a
// single run reports every offending static group at once (spec section 7,
// "a small collector type accumulates zero or more errors from independent
// sub-computations"). A bad island's own nested children are not
// individually re-reported past the first failure found inside it, since
// that island's own tree can't be built at all once one of its schedules is
// invalid.
func buildForest(comp *ir.Component, ctx *ir.Context, opts Options) (*forest, error) {
	f := &forest{
		roots:      make(map[string]fsmtree.Node),
		nodes:      make(map[string]fsmtree.Node),
		parThreads: make(map[string][]*ir.Group),
		islandOf:   make(map[ir.NodeID]int),
	}
	treeID := 0
	diag := util.NewDiagnostics(0)

	var walk func(n ir.Control, repeats int)
	walk = func(n ir.Control, repeats int) {
		switch v := n.(type) {
		case ir.Enable:
			g := comp.Group(v.Group)
			if g.Kind != ir.StaticGroupKind {
				return
			}
			id := treeID
			treeID++
			f.islandOf[v.Node] = id
			node, err := buildIsland(comp, ctx, opts, v.Group, id, "", 0, g.Latency, repeats, &f.items, f.nodes, f.parThreads)
			if err != nil {
				diag.Append(err)
				return
			}
			f.roots[v.Group] = node
		case ir.Invoke, ir.Empty:
			return
		case ir.Seq:
			for _, c := range v.Children {
				walk(c, 1)
			}
		case ir.Par:
			for _, c := range v.Children {
				walk(c, 1)
			}
		case ir.If:
			walk(v.Then, 1)
			if v.Else != nil {
				walk(v.Else, 1)
			}
		case ir.While:
			walk(v.Body, 1)
		case ir.Repeat:
			walk(v.Body, v.Count)
		}
	}
	walk(comp.Control, 1)
	if diag.Len() > 0 {
		return nil, errors.Join(diag.Errors()...)
	}
	return f, nil
}

// buildIsland recursively builds the fsmtree.Node for one static group (root
// or nested child), validating its schedule and appending its color.Item.
// Every built Node, root or nested, is recorded into nodes so package
// static's orchestrator can later realize each one independently
// (fsmtree.Realize/RealizePar never recurses across a forest on its own);
// parThreads records, for a ParNode, the original static ir.Group of each of
// its threads in child order, since RealizePar needs each thread's own
// StaticAssigns to rewrite.
func buildIsland(comp *ir.Component, ctx *ir.Context, opts Options, name string, treeID int, parent string, lo, hi, repeats int, items *[]color.Item, nodes map[string]fsmtree.Node, parThreads map[string][]*ir.Group) (fsmtree.Node, error) {
	g := comp.Group(name)
	if err := checkSchedule(comp, g); err != nil {
		return nil, err
	}
	refs := childRefs(comp, g)

	if g.HasAttr("par") && len(refs) > 0 {
		children := make([]fsmtree.Node, 0, len(refs))
		threads := make([]*ir.Group, 0, len(refs))
		longestIdx := 0
		var longestSpan int
		for i, r := range refs {
			child := comp.Group(r.Group)
			childRepeats := (r.Hi - r.Lo) / child.Latency
			cn, err := buildIsland(comp, ctx, opts, r.Group, treeID, name, r.Lo, r.Hi, childRepeats, items, nodes, parThreads)
			if err != nil {
				return nil, err
			}
			children = append(children, cn)
			threads = append(threads, child)
			span := cn.Latency() * cn.NumRepeats()
			if span > longestSpan {
				longestSpan = span
				longestIdx = i
			}
		}
		p := &fsmtree.ParNode{Name: name, Children: children, LongestIdx: longestIdx}
		nodes[name] = p
		parThreads[name] = threads
		*items = append(*items, color.Item{
			Group: name, TreeID: treeID, Parent: parent, Lo: lo, Hi: hi,
			MaxStates: 1, MaxRepeats: 1,
		})
		return p, nil
	}

	children := make([]fsmtree.ChildWindow, 0, len(refs))
	for _, r := range refs {
		child := comp.Group(r.Group)
		childRepeats := (r.Hi - r.Lo) / child.Latency
		cn, err := buildIsland(comp, ctx, opts, r.Group, treeID, name, r.Lo, r.Hi, childRepeats, items, nodes, parThreads)
		if err != nil {
			return nil, err
		}
		children = append(children, fsmtree.ChildWindow{Child: cn, Lo: r.Lo, Hi: r.Hi})
	}

	// opts.OffloadPause == false: the parent FSM counts independently of any
	// child rather than pausing on it (spec.md section 6). Passing no
	// children to BuildTreeSchedule degenerates its own counting to a single
	// Normal run through [0, g.Latency); the full children slice built above
	// still feeds *items so coloring sees the real tree (spec.md section 6:
	// "coloring still uses full trees to preserve conflicts").
	scheduleChildren := children
	if !opts.OffloadPause {
		scheduleChildren = nil
	}
	n := fsmtree.BuildTreeSchedule(comp, ctx, fsmtree.Options{OneHotCutoff: opts.OneHotCutoff}, name, name, g.Latency, repeats, scheduleChildren)
	nodes[name] = n
	*items = append(*items, color.Item{
		Group: name, TreeID: treeID, Parent: parent, Lo: lo, Hi: hi,
		MaxStates: n.NumStates, MaxRepeats: repeats,
	})
	return n, nil
}
