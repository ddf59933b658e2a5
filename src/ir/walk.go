package ir

// Children returns the direct control-node children of n, in execution
// order. Leaves (Empty, Enable, Invoke) return nil.
func Children(n Control) []Control {
	switch v := n.(type) {
	case Seq:
		return v.Children
	case Par:
		return v.Children
	case If:
		if v.Else != nil {
			return []Control{v.Then, v.Else}
		}
		return []Control{v.Then}
	case While:
		return []Control{v.Body}
	case Repeat:
		return []Control{v.Body}
	default:
		return nil
	}
}

// Walk calls visit on n and recursively on every descendant, pre-order.
func Walk(n Control, visit func(Control)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}

// IsLeaf reports whether n is an Enable or Invoke node — the two control
// variants live(N) is defined over (spec section 4.1).
func IsLeaf(n Control) bool {
	switch n.(type) {
	case Enable, Invoke:
		return true
	default:
		return false
	}
}
