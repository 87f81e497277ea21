package rope

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloText = "Hello my name is Yuichi"

// buildHello builds helloText from six borrowed windows in the same shape
// as the selftest command: ((v) (w z)) with v = "Hello "+"my ",
// w = "na"+"me i", z = "s"+" Yuichi".
func buildHello(t testing.TB, text []byte) *Rope {
	t.Helper()
	pair := func(o1, n1, o2, n2 int) *Rope {
		a, err := NewWindow(text, o1, n1)
		require.NoError(t, err)
		b, err := NewWindow(text, o2, n2)
		require.NoError(t, err)
		r := Concat(a, b)
		a.Release()
		b.Release()
		return r
	}
	z := pair(15, 1, 16, 7)
	w := pair(9, 2, 11, 4)
	v := pair(0, 6, 6, 3)
	y := Concat(w, z)
	x := Concat(v, y)
	y.Release()
	z.Release()
	w.Release()
	v.Release()
	return x
}

func TestSelfTestScenario(t *testing.T) {
	text := []byte(helloText)
	x := buildHello(t, text)
	defer x.Release()

	assert.Equal(t, len(text), x.Len())
	for _, i := range []int{3, 10, 15} {
		b, err := x.At(i)
		require.NoError(t, err)
		assert.Equal(t, text[i], b, "At(%d)", i)
	}

	c := x.Flatten()
	assert.Equal(t, helloText, string(c.Bytes()))
	c.Release()
	require.True(t, x.IsLeaf())

	// The suffix is a window on the flattened leaf.
	s, err := x.Sub(13, x.Len())
	require.NoError(t, err)
	require.True(t, s.IsLeaf())
	assert.Same(t, x.chunk, s.chunk)
	c = s.Flatten()
	assert.Equal(t, helloText[13:], string(c.Bytes()))
	c.Release()
	s.Release()
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		make func() *Rope
		kind ChunkKind
		want string
	}{
		{"borrowed bytes", func() *Rope { return New([]byte("hello")) }, KindBytes, "hello"},
		{"copy", func() *Rope { return NewCopy([]byte("hello")) }, KindOwned, "hello"},
		{"string", func() *Rope { return FromString("hello") }, KindString, "hello"},
		{"empty bytes", func() *Rope { return New(nil) }, KindBytes, ""},
		{"empty copy", func() *Rope { return NewCopy(nil) }, KindOwned, ""},
		{"empty string", func() *Rope { return FromString("") }, KindString, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.make()
			defer r.Release()

			require.True(t, r.IsLeaf())
			assert.Equal(t, 1, r.Refs())
			assert.Equal(t, len(tt.want), r.Len())
			assert.Equal(t, tt.want == "", r.IsEmpty())
			assert.Equal(t, tt.kind, r.chunk.Kind())
			assert.Equal(t, tt.want, r.String())
			require.NoError(t, r.Validate())
		})
	}
}

func TestNewWindow(t *testing.T) {
	buf := []byte("abcdef")

	r, err := NewWindow(buf, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "cde", r.String())
	r.Release()

	r, err = NewWindow(buf, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, "", r.String())
	r.Release()

	for _, w := range [][2]int{{-1, 2}, {0, -1}, {4, 3}, {7, 0}} {
		_, err := NewWindow(buf, w[0], w[1])
		assert.True(t, errors.Is(err, ErrRangeOutOfBounds), "window %v: %v", w, err)
	}
}

func TestCopyIsIndependentOfSource(t *testing.T) {
	src := []byte("hello")
	borrowed := New(src)
	copied := NewCopy(src)
	defer borrowed.Release()
	defer copied.Release()

	src[0] = 'j'
	assert.Equal(t, "jello", borrowed.String())
	assert.Equal(t, "hello", copied.String())
}

func TestAt(t *testing.T) {
	x := buildHello(t, []byte(helloText))
	defer x.Release()

	for i := 0; i < len(helloText); i++ {
		b, err := x.At(i)
		require.NoError(t, err)
		require.Equal(t, helloText[i], b, "At(%d)", i)
	}

	for _, i := range []int{-1, len(helloText), len(helloText) + 10} {
		_, err := x.At(i)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange), "At(%d): %v", i, err)
	}

	empty := FromString("")
	defer empty.Release()
	_, err := empty.At(0)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestConcat(t *testing.T) {
	a := FromString("hello ")
	b := FromString("world")

	r := Concat(a, b)
	assert.Equal(t, a.Len()+b.Len(), r.Len())
	assert.Equal(t, "hello world", r.String())
	assert.False(t, r.IsLeaf())
	assert.Equal(t, 1, r.Refs())
	assert.Equal(t, 2, a.Refs())
	assert.Equal(t, 2, b.Refs())

	// Operands are not consumed.
	a.Release()
	b.Release()
	assert.Equal(t, 1, a.Refs())
	assert.Equal(t, "hello world", r.String())

	// Concatenating a rope with itself is legal.
	rr := r.Concat(r)
	assert.Equal(t, "hello worldhello world", rr.String())
	assert.Equal(t, 3, r.Refs())
	rr.Release()
	assert.Equal(t, 1, r.Refs())

	r.Release()
}

func TestConcatLengthAdditive(t *testing.T) {
	pieces := []string{"", "a", "bc", "def", strings.Repeat("x", 1000)}
	for _, p := range pieces {
		for _, q := range pieces {
			x, y := FromString(p), FromString(q)
			r := Concat(x, y)
			require.Equal(t, x.Len()+y.Len(), r.Len())
			require.Equal(t, p+q, r.String())
			r.Release()
			x.Release()
			y.Release()
		}
	}
}

func TestReleaseCascade(t *testing.T) {
	a := NewCopy([]byte("abc"))
	b := NewCopy([]byte("def"))
	ca, cb := a.chunk, b.chunk
	r := Concat(a, b)
	a.Release()
	b.Release()

	require.Equal(t, 1, ca.Refs())
	r.Release()
	assert.Equal(t, 0, a.Refs())
	assert.Equal(t, 0, b.Refs())
	assert.Equal(t, 0, ca.Refs())
	assert.Equal(t, 0, cb.Refs())
	assert.Equal(t, 0, ca.Len(), "owned storage is recycled on last release")
	assert.Equal(t, KindOwned, ca.Kind())
}

func TestReleaseDoesNotCorruptSibling(t *testing.T) {
	buf := []byte("shared storage")
	base := New(buf)
	left, err := base.Sub(0, 6)
	require.NoError(t, err)
	right, err := base.Sub(7, len(buf))
	require.NoError(t, err)
	base.Release()

	require.Same(t, left.chunk, right.chunk)
	assert.Equal(t, 2, left.chunk.Refs())

	left.Release()
	c := right.Flatten()
	assert.Equal(t, "storage", string(c.Bytes()))
	c.Release()
	right.Release()
}

func TestOverReleasePanics(t *testing.T) {
	r := FromString("x")
	r.Release()
	assert.Panics(t, func() { r.Release() })

	r = NewCopy([]byte("y"))
	c := r.Flatten()
	r.Release()
	c.Release()
	assert.Panics(t, func() { c.Release() })
}

func TestRefAfterReleasePanics(t *testing.T) {
	r := FromString("x")
	r.Release()
	assert.Panics(t, func() { r.Ref() })
}

func TestValidate(t *testing.T) {
	x := buildHello(t, []byte(helloText))
	require.NoError(t, x.Validate())

	// Corrupt a cached length.
	x.length++
	assert.Error(t, x.Validate())
	x.length--

	leaf := x.left.left
	leaf.offset = 100
	assert.Error(t, x.Validate())
	leaf.offset = 0

	x.Release()
}

func TestWriteToAndAppendTo(t *testing.T) {
	x := buildHello(t, []byte(helloText))
	defer x.Release()

	var buf bytes.Buffer
	n, err := x.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(helloText)), n)
	assert.Equal(t, helloText, buf.String())

	out := x.AppendTo([]byte("> "))
	assert.Equal(t, "> "+helloText, string(out))

	// Neither read flattens.
	assert.False(t, x.IsLeaf())
}

func TestDeepSkewedTree(t *testing.T) {
	n := 100000
	if tracingEnabled {
		// Every count change records a stack.
		n = 2000
	}
	r := FromString("")
	var want strings.Builder
	for i := 0; i < n; i++ {
		s := string(rune('a' + i%26))
		leaf := FromString(s)
		next := Concat(r, leaf)
		leaf.Release()
		r.Release()
		r = next
		want.WriteString(s)
	}
	defer r.Release()

	assert.Equal(t, n, r.Len())
	assert.Equal(t, n+1, r.Stats().Depth)

	b, err := r.At(n - 1)
	require.NoError(t, err)
	assert.Equal(t, want.String()[n-1], b)
	assert.Equal(t, want.String(), r.String())

	s, err := r.Sub(n/2, n/2+26)
	require.NoError(t, err)
	assert.Equal(t, want.String()[n/2:n/2+26], s.String())
	s.Release()
}
