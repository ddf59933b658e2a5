package static

import (
	"flowc/src/color"
	"flowc/src/fsmtree"
	"flowc/src/ir"
)

// Result is the pass's side tables (spec.md section 6): the component itself
// is mutated in place (static groups removed, early-reset/wrapper groups and
// continuous assignments added, the control tree rewritten); these maps are
// left available to downstream passes such as dead-group removal or Verilog
// emission.
type Result struct {
	ResetEarlyMap  map[string]string
	WrapperMap     map[string]string
	SignalRegMap   map[string]*ir.Cell
	FSMInfoMap     map[string]fsmtree.FSMInfo
	Coloring       color.Coloring
	ColorAggregate map[int]color.ColorInfo
}

func emptyResult() *Result {
	return &Result{
		ResetEarlyMap:  map[string]string{},
		WrapperMap:     map[string]string{},
		SignalRegMap:   map[string]*ir.Cell{},
		FSMInfoMap:     map[string]fsmtree.FSMInfo{},
		Coloring:       color.Coloring{},
		ColorAggregate: map[int]color.ColorInfo{},
	}
}

// Run executes the static-island compilation pass end to end (spec.md
// sections 4.3-4.6) over comp: it validates every static island's schedule,
// builds and colors the conflict graph, realizes every island into
// early-reset groups, removes the now-dead static groups, synthesizes
// wrappers (sharing signal registers by FSM unique id), and rewrites the
// control tree and continuous assignments. ctx supplies fresh node ids
// and label names for every cell/group this pass creates.
func Run(comp *ir.Component, ctx *ir.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	originalControl := comp.Control
	f, err := buildForest(comp, ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(f.roots) == 0 {
		return emptyResult(), nil
	}
	// Computed before any static group is removed: stableWhileCandidate
	// resolves en.Group against comp.Group, which only still exists while
	// the original static groups remain in comp.Groups.
	stableConds := collectStableWhileConds(comp, originalControl)

	graph := color.NewGraph(f.items)
	graph.BuildIntraTree(f.items)
	graph.BuildParConflicts(f.items, color.ConcurrentIslands(comp.Control, f.islandOf))
	coloring := graph.Color(color.Options{GreedyShare: opts.GreedyShare})
	aggregate := color.Aggregate(f.items, coloring)
	if opts.Verbose {
		traceColoring(f.items, coloring, aggregate)
	}

	resetEarly := make(map[string]string)
	fsmInfo := make(map[string]fsmtree.FSMInfo)
	groupRewrites := make(map[[2]string][2]string)
	var newGroups []*ir.Group

	for name, n := range f.nodes {
		switch v := n.(type) {
		case *fsmtree.SingleNode:
			r := fsmtree.Realize(comp, ctx, v, comp.Group(name))
			mergeRealization(r, resetEarly, fsmInfo, groupRewrites)
			newGroups = append(newGroups, r.Groups...)
		case *fsmtree.ParNode:
			r := fsmtree.RealizePar(comp, ctx, v, f.parThreads[name])
			mergeRealization(r, resetEarly, fsmInfo, groupRewrites)
			// RealizePar records reset_early_map/group_rewrites per thread
			// (spec.md section 4.3: each thread's own go is retargeted), but
			// never for the ParNode's own name, since a par static group has
			// no single triggering assignment of its own to rewrite. A
			// top-level enable of the par group itself, or a childRef
			// naming it, still needs par's own name to resolve to the one
			// early-reset group RealizePar built.
			if len(r.Groups) == 1 {
				earlyName := r.Groups[0].Name.Name
				resetEarly[name] = earlyName
				groupRewrites[[2]string{name, "go"}] = [2]string{earlyName, "go"}
			}
			newGroups = append(newGroups, r.Groups...)
		}
	}

	// Every early-reset group must exist in the component's group arena
	// before any rewrite runs: rewritePortRef only retargets a reference
	// once comp.HasGroup confirms the destination group is real, so adding
	// them first and rewriting second (not the reverse) is required.
	for _, g := range newGroups {
		comp.AddGroup(g)
	}
	// Nested static children still reference each other through the
	// pseudo-cell `child[go] = ...` convention (spec.md section 4.6); once
	// every island is realized, those references must be retargeted to the
	// realized children's early-reset groups too.
	for _, g := range newGroups {
		rewriteAssigns(comp, g.Assigns, groupRewrites)
	}

	staticLatency := make(map[string]int)
	for _, g := range comp.StaticGroups() {
		staticLatency[g.Name.Name] = g.Latency
	}
	for name := range staticLatency {
		comp.RemoveGroup(name)
	}

	wb := newWrapperBuilder(comp, ctx)
	controlWrapperOf := make(map[string]string)

	promotedSingle := false
	if comp.Promoted {
		if en, ok := originalControl.(ir.Enable); ok {
			if _, isRoot := f.roots[en.Group]; isRoot {
				promotedSingle = true
				early := resetEarly[en.Group]
				var earlyGroup *ir.Group
				for _, g := range newGroups {
					if g.Name.Name == early {
						earlyGroup = g
					}
				}
				if earlyGroup != nil {
					info := fsmInfo[early]
					wb.promoteComponent(earlyGroup, info, staticLatency[earlyNameToOriginal(early)] == 1)
					comp.RemoveGroup(early)
				}
				comp.Control = ir.Empty{Node: en.Node}
			}
		}
	}

	if !promotedSingle {
		for rootName := range f.roots {
			early, ok := resetEarly[rootName]
			if !ok {
				continue
			}
			info := fsmInfo[early]
			var wrapperName string
			if cond, isStable := stableConds[rootName]; isStable {
				wrapperName = wb.BuildStableWrapper(early, info, cond)
			} else {
				wrapperName = wb.BuildWrapper(early, info)
			}
			controlWrapperOf[rootName] = wrapperName
		}
		comp.Control = rewriteControl(originalControl, controlWrapperOf)
	}

	rewriteAssigns(comp, comp.Continuous, groupRewrites)
	comp.Continuous = append(comp.Continuous, wb.ContinuousAssigns()...)

	if opts.Verbose {
		traceReset(resetEarly, wb.WrapperOf())
	}

	return &Result{
		ResetEarlyMap:  resetEarly,
		WrapperMap:     wb.WrapperOf(),
		SignalRegMap:   wb.SignalRegCells(),
		FSMInfoMap:     fsmInfo,
		Coloring:       coloring,
		ColorAggregate: aggregate,
	}, nil
}

func mergeRealization(r *fsmtree.Realization, resetEarly map[string]string, fsmInfo map[string]fsmtree.FSMInfo, groupRewrites map[[2]string][2]string) {
	for k, v := range r.ResetEarlyMap {
		resetEarly[k] = v
	}
	for k, v := range r.FSMInfoMap {
		fsmInfo[k] = v
	}
	for k, v := range r.GroupRewrites {
		groupRewrites[k] = v
	}
}

// collectStableWhileConds walks root for While nodes whose body is a single
// static enable with an @stable condition port (spec.md section 4.5),
// returning the enabled group's name mapped to its condition PortRef.
func collectStableWhileConds(comp *ir.Component, root ir.Control) map[string]ir.PortRef {
	out := make(map[string]ir.PortRef)
	var walk func(ir.Control)
	walk = func(n ir.Control) {
		switch v := n.(type) {
		case ir.While:
			if group, cond, ok := stableWhileCandidate(comp, v); ok {
				out[group] = cond
			}
			walk(v.Body)
		case ir.Seq:
			for _, c := range v.Children {
				walk(c)
			}
		case ir.Par:
			for _, c := range v.Children {
				walk(c)
			}
		case ir.If:
			walk(v.Then)
			if v.Else != nil {
				walk(v.Else)
			}
		case ir.Repeat:
			walk(v.Body)
		}
	}
	walk(root)
	return out
}

// earlyNameToOriginal strips the "early_reset_" prefix Realize/RealizePar
// always add, recovering the original static group's name.
func earlyNameToOriginal(early string) string {
	const prefix = "early_reset_"
	if len(early) > len(prefix) && early[:len(prefix)] == prefix {
		return early[len(prefix):]
	}
	return early
}
