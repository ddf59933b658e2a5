// Package static orchestrates the static-island compilation pass (spec.md
// section 4.5, 4.6): schedule validation, FSM-tree construction
// (package fsmtree), coloring (package color), realization, wrapper
// synthesis and control-tree rewriting. Grounded on the teacher's
// src/ir/optimise.go top-level "Optimise walks every function, applying one
// pass after another" shape, generalized from "one pass over a function
// list" to "one pass over a component's static groups".
package static

import "fmt"

// Options carries the pass's configuration (spec.md section 6, "Pass
// options"), mirroring the teacher's util.Options/util.ParseArgs shape
// (src/util/args.go) without the command-line parsing, which is explicitly
// out of scope.
type Options struct {
	// OneHotCutoff: an FSM with strictly more states than this uses binary
	// encoding; otherwise one-hot. Default 0 (always binary).
	OneHotCutoff int

	// OffloadPause: when true, a parent FSM pauses (Offload states) while a
	// child runs; when false, the parent counts independently and trees
	// degenerate to single nodes for counting purposes (coloring still uses
	// full trees to preserve conflicts, per spec.md section 6).
	OffloadPause bool

	// GreedyShare: when false, coloring degenerates to identity (no FSM
	// sharing).
	GreedyShare bool

	// Verbose gates tracing of pass decisions to os.Stderr: the coloring,
	// per-color register requirements and early-reset/wrapper names, rendered
	// as go-pretty tables (trace.go) rather than through a logging library.
	Verbose bool
}

// Validate rejects a negative one-hot cutoff before the pass runs (spec.md
// section 7, "option parse error").
func (o Options) Validate() error {
	if o.OneHotCutoff < 0 {
		return fmt.Errorf("static: one-hot cutoff must be non-negative, got %d", o.OneHotCutoff)
	}
	return nil
}
