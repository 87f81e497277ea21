package rope

import (
	"bytes"
	"iter"
)

// Chunks returns an iterator over the leaf windows of r in order. Empty
// leaves are skipped. The yielded slices alias chunk storage and must not be
// modified or retained past the lifetime of r.
//
// Traversal uses an explicit stack, so arbitrarily deep trees are fine.
func (r *Rope) Chunks() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		stack := make([]*Rope, 1, 16)
		stack[0] = r
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !n.IsLeaf() {
				stack = append(stack, n.right, n.left)
				continue
			}
			if n.length == 0 {
				continue
			}
			if !yield(n.chunk.Bytes()[n.offset : n.offset+n.length]) {
				return
			}
		}
	}
}

// leaves returns the leaf nodes of r in order, including empty ones.
func (r *Rope) leaves() []*Rope {
	var out []*Rope
	stack := []*Rope{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			out = append(out, n)
			continue
		}
		stack = append(stack, n.right, n.left)
	}
	return out
}

// Equal returns true if a and b hold the same bytes. It compares content,
// not structure, and does not flatten either rope.
func Equal(a, b *Rope) bool {
	if a == b {
		return true
	}
	if a.length != b.length {
		return false
	}

	next, stop := iter.Pull(b.Chunks())
	defer stop()

	var pending []byte
	for p := range a.Chunks() {
		for len(p) > 0 {
			if len(pending) == 0 {
				var ok bool
				if pending, ok = next(); !ok {
					return false
				}
			}
			n := min(len(p), len(pending))
			if !bytes.Equal(p[:n], pending[:n]) {
				return false
			}
			p, pending = p[n:], pending[n:]
		}
	}
	return true
}
