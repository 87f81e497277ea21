package rope

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder(4)
	_, _ = b.WriteString("hello")
	require.NoError(t, b.WriteByte(' '))
	_, _ = b.Write([]byte("world"))
	assert.Equal(t, 11, b.Len())

	r := b.Build()
	defer r.Release()
	assert.Equal(t, "hello world", r.String())
	assert.Equal(t, 0, b.Len())

	s := r.Stats()
	assert.Equal(t, 3, s.Leaves)
	assert.Equal(t, 3, s.Chunks)
	assert.Equal(t, 11, s.OwnedBytes)
	assert.Equal(t, 3, s.Depth)
	require.NoError(t, r.Validate())
}

func TestBuilderEmpty(t *testing.T) {
	r := NewBuilder(0).Build()
	defer r.Release()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.IsLeaf())
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder(2)
	_, _ = b.WriteString("abcde")
	b.Reset()
	assert.Equal(t, 0, b.Len())

	_, _ = b.WriteString("xy")
	r := b.Build()
	defer r.Release()
	assert.Equal(t, "xy", r.String())
}

func TestBuilderReuse(t *testing.T) {
	b := NewBuilder(8)
	_, _ = b.WriteString("first")
	r1 := b.Build()
	_, _ = b.WriteString("second")
	r2 := b.Build()
	defer r1.Release()
	defer r2.Release()
	assert.Equal(t, "first", r1.String())
	assert.Equal(t, "second", r2.String())
}

func TestFromReader(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 500)

	for _, blockSize := range []int{0, 1, 7, 64, 4096, len(text), 2 * len(text)} {
		r, err := FromReader(iotest.OneByteReader(strings.NewReader(text)), blockSize)
		require.NoError(t, err)
		require.Equal(t, len(text), r.Len())
		require.Equal(t, text, r.String(), "block size %d", blockSize)
		require.NoError(t, r.Validate())

		// Balanced: depth is logarithmic in the leaf count.
		s := r.Stats()
		depth, leaves := 1, 1
		for leaves < s.Leaves {
			depth++
			leaves *= 2
		}
		assert.Equal(t, depth, s.Depth, "block size %d", blockSize)
		r.Release()
	}
}

func TestFromReaderError(t *testing.T) {
	boom := errors.New("boom")
	r, err := FromReader(iotest.ErrReader(boom), 16)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, boom))
}
