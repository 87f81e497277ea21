package rope

// Sub returns a rope spanning [start, end) of r. Leaves and subtrees that
// lie entirely inside the range are shared, not copied; new nodes are only
// allocated where the range splits a node. When the range covers r exactly,
// r itself is returned with an added reference.
//
// The caller owns one reference to the result.
func (r *Rope) Sub(start, end int) (*Rope, error) {
	if start < 0 || start > end || end > r.length {
		return nil, rangeError(start, end, r.length)
	}
	s := r.sub(start, end)
	if invariantsEnabled {
		s.mustValidate()
	}
	return s, nil
}

// sub requires 0 <= start <= end <= r.length.
func (r *Rope) sub(start, end int) *Rope {
	if start == 0 && end == r.length {
		return r.Ref()
	}
	if r.IsLeaf() {
		r.chunk.Ref()
		return newLeaf(r.chunk, r.offset+start, end-start)
	}

	split := r.left.length
	switch {
	case end <= split:
		return r.left.sub(start, end)
	case start >= split:
		return r.right.sub(start-split, end-split)
	}

	left := r.left.sub(start, split)
	right := r.right.sub(0, end-split)
	n := Concat(left, right)
	left.Release()
	right.Release()
	return n
}
