package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xrope/internal/logging"
)

func newTestState(t *testing.T, opts ...Option) (*State, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	opts = append([]Option{
		WithOutput(&out),
		WithLogger(logging.NewWithWriter(&logs, "debug")),
	}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, &out, &logs
}

const scenarioScript = `
local text = rope.new("Hello my name is Yuichi")
local function w(o, n)
	return text:sub(o, o + n)
end
local function cat(a, b)
	local r = rope.cat(a, b)
	a:release()
	b:release()
	return r
end

local z = cat(w(15, 1), w(16, 7))
local ww = cat(w(9, 2), w(11, 4))
local v = cat(w(0, 6), w(6, 3))
local x = cat(v, cat(ww, z))
text:release()

print(#x, x:at(3), x:at(10), x:at(15))
local s = x:sub(13, #x)
print(s:flatten())
print(x:flatten())
s:release()
x:release()
`

func TestScenario(t *testing.T) {
	s, out, logs := newTestState(t)

	require.NoError(t, s.DoString(context.Background(), scenarioScript))
	assert.Equal(t, "23\tl\ta\ts\n is Yuichi\nHello my name is Yuichi\n", out.String())
	assert.Equal(t, 0, s.Live())

	require.NoError(t, s.Close())
	assert.Empty(t, logs.String())
}

func TestHandleMethods(t *testing.T) {
	s, out, _ := newTestState(t)

	code := `
local a = rope.new("hello ")
local b = rope.copy("world")
local c = a .. b
local d = c .. "!"
print(tostring(d), d:len(), c:refs(), a:refs())
print(rope.equal(d, "hello world!"), rope.equal(c, d))
local st = c:stats()
print(st.len, st.depth, st.leaves, st.internal, st.owned_bytes, st.borrowed_bytes)
local r = d:rebalance()
print(r:str(), r:stats().depth)
`
	require.NoError(t, s.DoString(context.Background(), code))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "hello world!\t12\t2\t2", lines[0])
	assert.Equal(t, "true\tfalse", lines[1])
	assert.Equal(t, "11\t2\t2\t1\t5\t6", lines[2])
	assert.Equal(t, "hello world!\t3", lines[3])
	assert.Equal(t, 5, s.Live())
}

func TestTree(t *testing.T) {
	s, out, _ := newTestState(t)
	require.NoError(t, s.DoString(context.Background(), `print(rope.new("ab"):tree())`))
	assert.Contains(t, out.String(), "leaf len=2")
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"at out of range", `rope.new("ab"):at(2)`, "index out of range"},
		{"sub out of range", `rope.new("ab"):sub(1, 5)`, "range out of bounds"},
		{"use after release", `local r = rope.new("ab"); r:release(); r:len()`, "already released"},
		{"double release", `local r = rope.new("ab"); r:release(); r:release()`, "already released"},
		{"wrong operand", `rope.cat(rope.new("a"), 1)`, "userdata expected"},
		{"syntax", `this is not lua`, "script"},
		{"missing loader", `load("return 1")`, "attempt to call"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestState(t)
			err := s.DoString(context.Background(), tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCloseReleasesLeakedHandles(t *testing.T) {
	s, _, logs := newTestState(t)

	require.NoError(t, s.DoString(context.Background(), `
		leaked = rope.cat(rope.new("a"), rope.copy("b"))
		kept = leaked:sub(0, 1)
	`))
	assert.Equal(t, 4, s.Live())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Live())
	assert.Contains(t, logs.String(), "handles=4")

	// Closing twice is fine; running after close is not.
	require.NoError(t, s.Close())
	err := s.DoString(context.Background(), `print(1)`)
	assert.True(t, errors.Is(err, ErrStateClosed))
	assert.Equal(t, lua.LNil, s.GetGlobal("leaked"))
}

func TestTimeout(t *testing.T) {
	s, _, _ := newTestState(t, WithTimeout(50*time.Millisecond))

	err := s.DoString(context.Background(), `while true do end`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCancel(t *testing.T) {
	s, _, _ := newTestState(t, WithTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.DoString(ctx, `while true do end`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDoFileAndLoad(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(data, []byte(strings.Repeat("abc", 10)), 0o600))

	script := filepath.Join(dir, "stat.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
		local r = rope.load(path)
		local st = r:stats()
		print(#r, st.leaves, st.owned_bytes, r:at(4))
		r:release()
	`), 0o600))

	s, out, _ := newTestState(t, WithBlockSize(8))
	s.L.SetGlobal("path", lua.LString(data))
	require.NoError(t, s.DoFile(context.Background(), script))
	assert.Equal(t, "30\t4\t30\tb\n", out.String())

	err := s.DoString(context.Background(), `rope.load("`+filepath.Join(dir, "missing")+`")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load:")
}
