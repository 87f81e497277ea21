package rope

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ChunkKind identifies where a chunk's bytes live and who frees them.
type ChunkKind uint8

const (
	// KindBytes is a caller-owned byte slice. The rope never frees or
	// writes it; the caller must keep it alive and unmodified while any
	// rope references it.
	KindBytes ChunkKind = iota

	// KindString is a borrowed Go string. Strings are immutable, so this
	// is always safe to share.
	KindString

	// KindOwned is a buffer allocated by the rope, either a copy made by
	// NewCopy or Builder, or the output of Flatten. Its storage is recycled
	// when the last reference is released.
	KindOwned
)

// String returns the name of the kind.
func (k ChunkKind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindOwned:
		return "owned"
	default:
		return fmt.Sprintf("ChunkKind(%d)", uint8(k))
	}
}

// storage is the tagged variant behind a Chunk. Exactly one of
// borrowedBytes, borrowedString or ownedBytes.
type storage interface {
	kind() ChunkKind
}

type borrowedBytes []byte

type borrowedString string

type ownedBytes []byte

func (borrowedBytes) kind() ChunkKind  { return KindBytes }
func (borrowedString) kind() ChunkKind { return KindString }
func (ownedBytes) kind() ChunkKind     { return KindOwned }

// Chunk is a reference-counted, fixed-size byte buffer. It is the only
// thing in a rope that holds bytes. Leaves reference a window of a chunk,
// and many leaves across many ropes may share one chunk.
//
// A chunk is never modified after creation. Its lifetime ends when the last
// reference is released, at which point owned storage is recycled and Bytes
// is empty.
type Chunk struct {
	refs refcnt
	data storage
}

// newChunk returns a chunk holding one reference for the caller.
func newChunk(data storage) *Chunk {
	c := &Chunk{data: data}
	c.refs.init(1)
	return c
}

// Len returns the size of the buffer.
func (c *Chunk) Len() int {
	switch d := c.data.(type) {
	case borrowedBytes:
		return len(d)
	case borrowedString:
		return len(d)
	case ownedBytes:
		return len(d)
	default:
		return 0
	}
}

// Bytes returns the buffer. The slice is valid until the caller releases
// its reference and must not be modified.
func (c *Chunk) Bytes() []byte {
	switch d := c.data.(type) {
	case borrowedBytes:
		return d
	case borrowedString:
		return unsafe.Slice(unsafe.StringData(string(d)), len(d))
	case ownedBytes:
		return d
	default:
		return nil
	}
}

// String returns a copy of the buffer as a string.
func (c *Chunk) String() string {
	if s, ok := c.data.(borrowedString); ok {
		return string(s)
	}
	return string(c.Bytes())
}

// Kind reports where the chunk's bytes live.
func (c *Chunk) Kind() ChunkKind {
	return c.data.kind()
}

// Owned reports whether the rope owns, and will recycle, the buffer.
func (c *Chunk) Owned() bool {
	return c.Kind() == KindOwned
}

// Refs returns the current reference count.
func (c *Chunk) Refs() int {
	return int(c.refs.refs())
}

// Ref adds a reference to the chunk.
func (c *Chunk) Ref() {
	if v := c.refs.acquire(); v <= 1 {
		panic(errors.AssertionFailedf("rope: chunk acquired after release: refs=%d\n%s", v, c.refs.traces()))
	}
}

// Release drops a reference. When the count reaches zero owned storage is
// returned to the buffer pool; borrowed storage is left to its owner.
func (c *Chunk) Release() {
	switch v := c.refs.release(); {
	case v < 0:
		panic(errors.AssertionFailedf("rope: inconsistent chunk reference count: %d\n%s", v, c.refs.traces()))
	case v == 0:
		switch d := c.data.(type) {
		case ownedBytes:
			freeBuffer(d)
			c.data = ownedBytes(nil)
		case borrowedBytes:
			c.data = borrowedBytes(nil)
		case borrowedString:
			c.data = borrowedString("")
		}
	}
}
