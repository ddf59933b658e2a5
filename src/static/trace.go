package static

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"flowc/src/color"
)

// traceColoring prints the coloring assignment and per-color aggregate
// (spec.md section 4.4) when opts.Verbose is set, in the teacher's
// plain-to-stderr verbose-mode spirit (src/ir/optimise.go,
// src/backend/lir/regalloc.go print their own pass decisions directly
// rather than through a structured logger) but rendered as a table, since a
// flat Printf loses the tabular island/color/window structure a reviewer
// actually wants to scan.
func traceColoring(items []color.Item, coloring color.Coloring, aggregate map[int]color.ColorInfo) {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Group)
	}
	sort.Strings(names)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stderr)
	tw.SetTitle("static island coloring")
	tw.AppendHeader(table.Row{"group", "color", "tree", "window"})
	byName := make(map[string]color.Item, len(items))
	for _, it := range items {
		byName[it.Group] = it
	}
	for _, name := range names {
		it := byName[name]
		tw.AppendRow(table.Row{name, coloring[name], it.TreeID, fmt.Sprintf("[%d:%d)", it.Lo, it.Hi)})
	}
	fmt.Fprintln(os.Stderr, tw.Render())

	colors := make([]int, 0, len(aggregate))
	for c := range aggregate {
		colors = append(colors, c)
	}
	sort.Ints(colors)

	ct := table.NewWriter()
	ct.SetOutputMirror(os.Stderr)
	ct.SetTitle("color register requirements")
	ct.AppendHeader(table.Row{"color", "max states", "max repeats"})
	for _, c := range colors {
		info := aggregate[c]
		ct.AppendRow(table.Row{c, info.MaxStates, info.MaxRepeats})
	}
	fmt.Fprintln(os.Stderr, ct.Render())
}

// traceReset prints the reset_early_map/wrapper assignments (spec.md
// sections 4.3 and 4.5) when opts.Verbose is set.
func traceReset(resetEarly, wrapperOf map[string]string) {
	names := make([]string, 0, len(resetEarly))
	for name := range resetEarly {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stderr)
	tw.SetTitle("early-reset and wrapper groups")
	tw.AppendHeader(table.Row{"static group", "early-reset group", "wrapper group"})
	for _, name := range names {
		early := resetEarly[name]
		tw.AppendRow(table.Row{name, early, wrapperOf[early]})
	}
	fmt.Fprintln(os.Stderr, tw.Render())
}
