package rope

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Rope is a node in a rope tree and the handle callers hold.
//
// A node is either a leaf, holding a shared reference to a Chunk and the
// window [offset, offset+length) into it, or an internal node holding owned
// references to two children whose lengths sum to length.
//
// A node may have several owners: the caller's handles and any number of
// parent nodes. Flatten rewrites internal nodes into leaves in place; every
// owner observes the rewrite, but never a change in content.
type Rope struct {
	refs   refcnt
	length int

	// Leaf fields (chunk != nil).
	chunk  *Chunk
	offset int

	// Internal node fields (chunk == nil).
	left  *Rope
	right *Rope
}

// newLeaf creates a leaf over c. The leaf takes over one reference to c
// from the caller.
func newLeaf(c *Chunk, offset, length int) *Rope {
	r := &Rope{
		length: length,
		chunk:  c,
		offset: offset,
	}
	r.refs.init(1)
	return r
}

// New creates a rope over b without copying it. The caller must keep b
// alive and unmodified for as long as any rope derived from it exists.
func New(b []byte) *Rope {
	return newLeaf(newChunk(borrowedBytes(b)), 0, len(b))
}

// NewWindow creates a rope over b[offset:offset+length] without copying.
// The same lifetime rules as New apply.
func NewWindow(b []byte, offset, length int) (*Rope, error) {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return nil, rangeError(offset, offset+length, len(b))
	}
	return newLeaf(newChunk(borrowedBytes(b)), offset, length), nil
}

// NewCopy creates a rope over a private copy of b. Use it when the
// lifetime of b is not guaranteed.
func NewCopy(b []byte) *Rope {
	buf := allocBuffer(len(b))
	copy(buf, b)
	return newLeaf(newChunk(ownedBytes(buf)), 0, len(b))
}

// FromString creates a rope over s without copying it.
func FromString(s string) *Rope {
	return newLeaf(newChunk(borrowedString(s)), 0, len(s))
}

// IsLeaf returns true if this node references a chunk directly.
func (r *Rope) IsLeaf() bool {
	return r.chunk != nil
}

// Len returns the number of bytes in the rope.
func (r *Rope) Len() int {
	return r.length
}

// IsEmpty returns true if the rope contains no bytes.
func (r *Rope) IsEmpty() bool {
	return r.length == 0
}

// Refs returns the number of owners of this node.
func (r *Rope) Refs() int {
	return int(r.refs.refs())
}

// Ref adds an owner to the node and returns it, for handing the same node
// out as a new handle.
func (r *Rope) Ref() *Rope {
	if v := r.refs.acquire(); v <= 1 {
		panic(errors.AssertionFailedf("rope: node acquired after release: refs=%d\n%s", v, r.refs.traces()))
	}
	return r
}

// Release drops an owner. The last release of an internal node releases
// both children; the last release of a leaf releases its chunk.
func (r *Rope) Release() {
	switch v := r.refs.release(); {
	case v < 0:
		panic(errors.AssertionFailedf("rope: inconsistent node reference count: %d\n%s", v, r.refs.traces()))
	case v == 0:
		if r.chunk != nil {
			r.chunk.Release()
			r.chunk = nil
			return
		}
		left, right := r.left, r.right
		r.left, r.right = nil, nil
		left.Release()
		right.Release()
	}
}

// At returns the byte at index i. It descends by cumulative length, so it
// costs O(depth).
func (r *Rope) At(i int) (byte, error) {
	if i < 0 || i >= r.length {
		return 0, indexError(i, r.length)
	}
	n := r
	for !n.IsLeaf() {
		if i < n.left.length {
			n = n.left
		} else {
			i -= n.left.length
			n = n.right
		}
	}
	return n.chunk.Bytes()[n.offset+i], nil
}

// Concat returns a new internal node with x on the left and y on the right.
// It takes its own reference to each operand; the caller keeps, and must
// still release, the references it holds. No bytes are copied.
func Concat(x, y *Rope) *Rope {
	x.Ref()
	y.Ref()
	r := &Rope{
		length: x.length + y.length,
		left:   x,
		right:  y,
	}
	r.refs.init(1)
	return r
}

// Concat is shorthand for Concat(r, other).
func (r *Rope) Concat(other *Rope) *Rope {
	return Concat(r, other)
}

// String returns the content of the rope without flattening it.
func (r *Rope) String() string {
	return string(r.AppendTo(make([]byte, 0, r.length)))
}

// AppendTo appends the content of the rope to dst and returns the extended
// slice. The tree is not modified.
func (r *Rope) AppendTo(dst []byte) []byte {
	for p := range r.Chunks() {
		dst = append(dst, p...)
	}
	return dst
}

// WriteTo implements io.WriterTo. The tree is not modified.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for p := range r.Chunks() {
		n, err := w.Write(p)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Validate checks the structural invariants of the subtree: every node is
// live and exactly one variant, leaf windows lie inside their chunks, and
// internal lengths equal the sum of their children.
func (r *Rope) Validate() error {
	stack := []*Rope{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if v := n.refs.refs(); v <= 0 {
			return errors.AssertionFailedf("rope: node %p has refs=%d", n, v)
		}
		if n.IsLeaf() {
			if n.left != nil || n.right != nil {
				return errors.AssertionFailedf("rope: leaf %p has children", n)
			}
			if v := n.chunk.refs.refs(); v <= 0 {
				return errors.AssertionFailedf("rope: leaf %p references released chunk", n)
			}
			if n.offset < 0 || n.length < 0 || n.offset+n.length > n.chunk.Len() {
				return errors.AssertionFailedf("rope: leaf %p window [%d, %d) outside chunk of %d bytes",
					n, n.offset, n.offset+n.length, n.chunk.Len())
			}
			continue
		}
		if n.left == nil || n.right == nil {
			return errors.AssertionFailedf("rope: internal node %p is missing a child", n)
		}
		if n.length != n.left.length+n.right.length {
			return errors.AssertionFailedf("rope: internal node %p has length %d, children sum to %d",
				n, n.length, n.left.length+n.right.length)
		}
		stack = append(stack, n.right, n.left)
	}
	return nil
}

func (r *Rope) mustValidate() {
	if err := r.Validate(); err != nil {
		panic(err)
	}
}
