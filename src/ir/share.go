package ir

// ShareClass classifies a cell prototype by whether it carries state across
// cycles (state-shareable) or is purely combinational and reusable within a
// single cycle (shareable). Decided per-prototype by an external classifier
// (spec section 3) — this module never infers it from primitive semantics.
type ShareClass int

const (
	NotShareable ShareClass = iota
	Shareable
	StateShareable
)

var shareClassNames = [...]string{"not-shareable", "shareable", "state-shareable"}

func (s ShareClass) String() string {
	if s < NotShareable || s > StateShareable {
		return "invalid-share-class"
	}
	return shareClassNames[s]
}

// ShareClassifier is the external collaborator contract for share
// classification (spec section 3): "provided by an external classifier".
// liverange consumes this interface; it never hard-codes a primitive
// library.
type ShareClassifier interface {
	ClassOf(protoName string) ShareClass
}

// StaticClassifier is a map-based ShareClassifier, grounded on the
// teacher's src/ir/validate.go lutExp lookup-table idiom: a flat table keyed
// by a small enum (here, primitive name) rather than re-derived logic.
// Prototypes absent from the table classify as NotShareable.
type StaticClassifier map[string]ShareClass

// ClassOf implements ShareClassifier.
func (s StaticClassifier) ClassOf(protoName string) ShareClass {
	if c, ok := s[protoName]; ok {
		return c
	}
	return NotShareable
}

// DefaultClassifier is a reasonable classification of calyx-style primitive
// names, used by tests and by callers that haven't wired their own
// primitive library classification yet.
var DefaultClassifier = StaticClassifier{
	"std_reg":    StateShareable,
	"std_mem_d1": StateShareable,
	"std_mem_d2": StateShareable,
	"std_mem_d3": StateShareable,
	"std_mem_d4": StateShareable,

	"std_add":  Shareable,
	"std_sub":  Shareable,
	"std_mult_pipe": Shareable,
	"std_div_pipe":  Shareable,
	"std_lt":   Shareable,
	"std_gt":   Shareable,
	"std_eq":   Shareable,
	"std_wire": Shareable,
}
