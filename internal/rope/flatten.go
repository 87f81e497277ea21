package rope

// Flatten returns a chunk holding the whole content of r in one contiguous
// buffer. The caller owns one reference to the chunk.
//
// Flattening is a cache fill. Every node visited is rewritten into a leaf
// over the new chunk, and internal nodes drop their children. Other ropes
// sharing those nodes see the rewrite but never a change in content.
//
// The result is always owned storage; a borrowed leaf is copied even when it
// spans its whole buffer. A leaf that already spans a whole owned chunk
// returns that chunk, so flattening the same rope twice copies once.
func (r *Rope) Flatten() *Chunk {
	if r.IsLeaf() && r.chunk.Owned() && r.offset == 0 && r.length == r.chunk.Len() {
		r.chunk.Ref()
		return r.chunk
	}
	c := newChunk(ownedBytes(allocBuffer(r.length)))
	r.fold(c, 0)
	if invariantsEnabled {
		r.mustValidate()
	}
	return c
}

// fold writes the content of r into c at offset and turns r into a leaf
// over that window. A node reachable along several paths is folded once per
// path; later visits copy from c itself, which is already correct.
func (r *Rope) fold(c *Chunk, offset int) {
	if r.IsLeaf() {
		old := r.chunk
		copy(c.Bytes()[offset:offset+r.length], old.Bytes()[r.offset:r.offset+r.length])
		c.Ref()
		r.chunk, r.offset = c, offset
		old.Release()
		return
	}

	left, right := r.left, r.right
	left.fold(c, offset)
	right.fold(c, offset+left.length)

	c.Ref()
	r.chunk, r.offset = c, offset
	r.left, r.right = nil, nil
	left.Release()
	right.Release()
}
