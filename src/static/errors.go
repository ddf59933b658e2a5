package static

import "flowc/src/ir"

// ScheduleError is a malformed-control diagnostic (spec.md section 4.6,
// section 7): a source-positioned error the pass returns rather than
// panics on, since a bad input schedule is a caller mistake in the IL, not
// an internal invariant violation. Grounded on original_source's
// calyx-opt/src/analysis/live_range_analysis.rs and
// calyx/opt/src/passes/compile_static.rs carrying a span on every
// malformed-schedule diagnostic.
type ScheduleError struct {
	Group   ir.Identifier
	Message string
}

func (e *ScheduleError) Error() string {
	return e.Group.Pos.String() + ": static group " + e.Group.Name + ": " + e.Message
}
