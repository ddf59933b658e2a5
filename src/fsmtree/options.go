package fsmtree

// Options carries the subset of pass options fsmtree needs to build FSM
// registers (spec.md section 4.2's one-hot cutoff). Mirrors static.Options'
// OneHotCutoff field rather than importing package static, which itself
// imports fsmtree.
type Options struct {
	OneHotCutoff int
}
