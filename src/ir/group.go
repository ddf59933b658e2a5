package ir

// Assignment is a guarded continuous assignment `dst = guard ? src` in the
// dynamic guard algebra (spec section 3), used by dynamic and combinational
// groups.
type Assignment struct {
	Dst   PortRef
	Guard Guard
	Src   PortRef
}

// StaticAssignment is a guarded assignment in the static guard algebra, used
// only by static groups; its Guard may carry a %[i:j] timing interval.
type StaticAssignment struct {
	Dst   PortRef
	Guard StaticGuard
	Src   PortRef
}

// GroupKind distinguishes the three Group variants (spec section 3).
type GroupKind int

const (
	DynamicGroup GroupKind = iota
	StaticGroupKind
	CombGroup
)

var groupKindNames = [...]string{"dynamic", "static", "comb"}

func (k GroupKind) String() string {
	if k < DynamicGroup || k > CombGroup {
		return "invalid-group-kind"
	}
	return groupKindNames[k]
}

// Group is a named, ordered list of guarded assignments.
//
//   - Dynamic: Assigns holds its body; exposes implicit go/done holes; runs
//     until its done condition goes high.
//   - Static: StaticAssigns holds its body; Latency is the cycle count every
//     assignment implicitly holds within [0, Latency).
//   - Comb: Assigns holds its body; no state, no timing; used as side
//     computation for if/while/invoke conditions.
type Group struct {
	Name          Identifier
	Kind          GroupKind
	Assigns       []Assignment
	StaticAssigns []StaticAssignment
	Latency       int // > 0 only for StaticGroupKind
	Attrs         map[string]bool

	// Done overrides the group's implicit done condition. Most dynamic
	// groups leave this nil: their done is a @done-attributed port write
	// among Assigns, resolved by whatever consumes the group outside this
	// module. Synthesized groups that compute done structurally rather than
	// from a single port — wrapper groups (done on signal_reg) — set it
	// explicitly (spec section 4.5). Early-reset groups leave it nil: their
	// completion is only observed through the wrapper.
	Done Guard

	// Enables names other groups this group unconditionally drives `go` on
	// for as long as it is itself active. Used by wrapper groups to drive
	// the early-reset group they wrap (spec section 4.5: "drives
	// early[go] = 1") without requiring a PortRef into a group that has no
	// backing cell.
	Enables []string
}

// HasAttr reports whether the group carries a named boolean attribute, e.g.
// the "par" marker used by the schedule check (spec section 4.6) to tell a
// parallel static group (children all start at 0) from a sequential one
// (children's windows must be pairwise non-overlapping).
func (g *Group) HasAttr(name string) bool {
	return g.Attrs != nil && g.Attrs[name]
}

// ComputedLatency returns the latency implied by the group's own
// %[i:j) timing guards: the maximum j over any interval guard found in its
// static assignments (spec section 3 invariant: "A static group's latency
// equals the maximum j over any %[i:j] timing guard within it"). Nothing in
// this module compares it against Group.Latency; it does not itself set
// Latency.
func (g *Group) ComputedLatency() int {
	max := 0
	for _, a := range g.StaticAssigns {
		if iv, ok := intervalOf(a.Guard); ok && iv.Hi > max {
			max = iv.Hi
		}
	}
	return max
}

// intervalOf extracts an SGInterval from a static guard that is either an
// `SGInterval` itself or one reached through ANDs, returning the first one
// found (left operand before right). Intervals under NOT or OR are not
// searched.
func intervalOf(g StaticGuard) (SGInterval, bool) {
	switch v := g.(type) {
	case SGInterval:
		return v, true
	case SGAnd:
		if iv, ok := intervalOf(v.L); ok {
			return iv, true
		}
		return intervalOf(v.R)
	default:
		return SGInterval{}, false
	}
}
