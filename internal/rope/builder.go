package rope

import (
	"io"

	"github.com/cockroachdb/errors"
)

// DefaultBlockSize is the size of the owned leaves a Builder produces.
const DefaultBlockSize = 64 << 10

// Builder accumulates bytes into owned leaves of a fixed block size and
// assembles them into a balanced rope. Use it to load content whose source
// buffer does not outlive the rope, such as a file or a network stream.
type Builder struct {
	blockSize int
	leaves    []*Rope
	block     []byte
	total     int
}

// NewBuilder creates a builder producing leaves of blockSize bytes. A
// non-positive blockSize selects DefaultBlockSize.
func NewBuilder(blockSize int) *Builder {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Builder{blockSize: blockSize}
}

// Write implements io.Writer. It never fails.
func (b *Builder) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if b.block == nil {
			b.block = allocBuffer(b.blockSize)[:0]
		}
		m := min(len(p), b.blockSize-len(b.block))
		b.block = append(b.block, p[:m]...)
		p = p[m:]
		if len(b.block) == b.blockSize {
			b.flush()
		}
	}
	b.total += n
	return n, nil
}

// WriteString appends s.
func (b *Builder) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// Len returns the total number of bytes written since the last Build or
// Reset.
func (b *Builder) Len() int {
	return b.total
}

// flush turns the pending block into a leaf. The block's buffer becomes
// the chunk's storage without another copy.
func (b *Builder) flush() {
	if len(b.block) == 0 {
		return
	}
	b.leaves = append(b.leaves, newLeaf(newChunk(ownedBytes(b.block)), 0, len(b.block)))
	b.block = nil
}

// Build returns a balanced rope over everything written and resets the
// builder. The caller owns one reference to the result.
func (b *Builder) Build() *Rope {
	b.flush()
	r := balanced(b.leaves)
	b.leaves = nil
	b.total = 0
	if invariantsEnabled {
		r.mustValidate()
	}
	return r
}

// Reset discards everything written since the last Build.
func (b *Builder) Reset() {
	for _, l := range b.leaves {
		l.Release()
	}
	b.leaves = nil
	if b.block != nil {
		freeBuffer(b.block)
		b.block = nil
	}
	b.total = 0
}

// FromReader reads r to EOF into a balanced rope of owned leaves of
// blockSize bytes.
func FromReader(r io.Reader, blockSize int) (*Rope, error) {
	b := NewBuilder(blockSize)
	if _, err := io.Copy(b, r); err != nil {
		b.Reset()
		return nil, errors.Wrap(err, "rope: reading content")
	}
	return b.Build(), nil
}
