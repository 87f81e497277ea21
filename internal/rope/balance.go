package rope

// Rebalance returns a rope with the same content as r whose tree has
// minimal depth over r's leaves. Leaves are shared with r, not copied, and r
// is left unchanged.
//
// Ropes are never rebalanced implicitly. Repeated one-sided Concat produces
// a tree whose depth grows linearly, which makes At and Sub linear too;
// callers that build that way should rebalance at a convenient point.
func (r *Rope) Rebalance() *Rope {
	if r.IsLeaf() {
		return r.Ref()
	}
	leaves := r.leaves()
	for _, l := range leaves {
		l.Ref()
	}
	b := balanced(leaves)
	if invariantsEnabled {
		b.mustValidate()
	}
	return b
}

// balanced builds a tree of minimal depth over nodes, in order, consuming
// one reference to each node.
func balanced(nodes []*Rope) *Rope {
	switch len(nodes) {
	case 0:
		return FromString("")
	case 1:
		return nodes[0]
	}
	mid := len(nodes) / 2
	left := balanced(nodes[:mid])
	right := balanced(nodes[mid:])
	n := Concat(left, right)
	left.Release()
	right.Release()
	return n
}
