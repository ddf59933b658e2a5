package color

import "flowc/src/ir"

// ConcurrentIslands walks the dynamic control tree (spec.md section 4.4
// rule 2: "walking the dynamic control tree, whenever two static groups
// reside on different threads of a par, at any nesting, add a conflict")
// and returns every distinct pair of static-island TreeIDs found on
// different children of a common Par ancestor. islandOf maps the NodeID of
// a leaf Enable that roots a static island (as constructed by package
// fsmtree) to that island's TreeID; leaves absent from islandOf are
// ignored (they enable a plain dynamic group, not a static island).
func ConcurrentIslands(root ir.Control, islandOf map[ir.NodeID]int) [][2]int {
	seen := map[[2]int]bool{}
	var pairs [][2]int
	record := func(a, b int) {
		if a == b {
			return
		}
		key := [2]int{a, b}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}

	var islandsUnder func(ir.Control) []int
	islandsUnder = func(n ir.Control) []int {
		switch v := n.(type) {
		case ir.Enable:
			if id, ok := islandOf[v.Node]; ok {
				return []int{id}
			}
			return nil
		case ir.Invoke:
			return nil
		case ir.Empty:
			return nil
		case ir.Seq:
			var all []int
			for _, c := range v.Children {
				all = append(all, islandsUnder(c)...)
			}
			return all
		case ir.Par:
			childSets := make([][]int, len(v.Children))
			for i, c := range v.Children {
				childSets[i] = islandsUnder(c)
			}
			for i := range childSets {
				for j := i + 1; j < len(childSets); j++ {
					for _, a := range childSets[i] {
						for _, b := range childSets[j] {
							record(a, b)
						}
					}
				}
			}
			var all []int
			for _, s := range childSets {
				all = append(all, s...)
			}
			return all
		case ir.If:
			all := islandsUnder(v.Then)
			if v.Else != nil {
				all = append(all, islandsUnder(v.Else)...)
			}
			return all
		case ir.While:
			return islandsUnder(v.Body)
		case ir.Repeat:
			return islandsUnder(v.Body)
		default:
			return nil
		}
	}
	islandsUnder(root)
	return pairs
}
