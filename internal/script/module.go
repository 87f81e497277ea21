package script

import (
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xrope/internal/rope"
)

const handleTypeName = "rope"

// handle is the userdata payload behind a Lua rope value. It owns one
// reference to r until released.
type handle struct {
	r *rope.Rope
}

func (h *handle) release() {
	if h.r != nil {
		h.r.Release()
		h.r = nil
	}
}

// registerRopeModule installs the global rope table and the handle
// metatable.
func (s *State) registerRopeModule() error {
	L := s.L

	mt := L.NewTypeMetatable(handleTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"len":       s.handleLen,
		"at":        s.handleAt,
		"sub":       s.handleSub,
		"str":       s.handleStr,
		"flatten":   s.handleFlatten,
		"rebalance": s.handleRebalance,
		"stats":     s.handleStats,
		"tree":      s.handleTree,
		"refs":      s.handleRefs,
		"release":   s.handleRelease,
	}))
	L.SetField(mt, "__len", L.NewFunction(s.handleLen))
	L.SetField(mt, "__tostring", L.NewFunction(s.handleStr))
	L.SetField(mt, "__concat", L.NewFunction(s.handleConcat))
	L.SetField(mt, "__eq", L.NewFunction(s.ropeEqual))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new":   s.ropeNew,
		"copy":  s.ropeCopy,
		"cat":   s.ropeCat,
		"equal": s.ropeEqual,
		"load":  s.ropeLoad,
	})
	L.SetField(mod, "block_size", lua.LNumber(s.blockSize))
	L.SetGlobal("rope", mod)
	return nil
}

// push wraps r in a new handle. The handle takes over the caller's
// reference.
func (s *State) push(L *lua.LState, r *rope.Rope) {
	h := &handle{r: r}
	s.handles[h] = struct{}{}

	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(handleTypeName))
	L.Push(ud)
}

// check returns the live rope behind argument n.
func (s *State) check(L *lua.LState, n int) *rope.Rope {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*handle)
	if !ok {
		L.ArgError(n, "rope expected")
		return nil
	}
	if h.r == nil {
		L.ArgError(n, "rope handle already released")
		return nil
	}
	return h.r
}

// operand accepts either a rope handle or a string. A string becomes a
// temporary leaf; the returned release func drops it.
func (s *State) operand(L *lua.LState, n int) (*rope.Rope, func()) {
	if str, ok := L.Get(n).(lua.LString); ok {
		r := rope.FromString(string(str))
		return r, r.Release
	}
	return s.check(L, n), func() {}
}

// rope.new(s) -> rope
func (s *State) ropeNew(L *lua.LState) int {
	s.push(L, rope.FromString(L.CheckString(1)))
	return 1
}

// rope.copy(s) -> rope
// The rope owns a private copy of s.
func (s *State) ropeCopy(L *lua.LState) int {
	s.push(L, rope.NewCopy([]byte(L.CheckString(1))))
	return 1
}

// rope.cat(a, b) -> rope
func (s *State) ropeCat(L *lua.LState) int {
	a, ra := s.operand(L, 1)
	defer ra()
	b, rb := s.operand(L, 2)
	defer rb()
	s.push(L, rope.Concat(a, b))
	return 1
}

// rope.equal(a, b) -> bool
func (s *State) ropeEqual(L *lua.LState) int {
	a, ra := s.operand(L, 1)
	defer ra()
	b, rb := s.operand(L, 2)
	defer rb()
	L.Push(lua.LBool(rope.Equal(a, b)))
	return 1
}

// rope.load(path) -> rope
func (s *State) ropeLoad(L *lua.LState) int {
	path := L.CheckString(1)
	f, err := os.Open(path)
	if err != nil {
		L.RaiseError("load: %v", err)
		return 0
	}
	defer f.Close()

	r, err := rope.FromReader(f, s.blockSize)
	if err != nil {
		L.RaiseError("load: %v", err)
		return 0
	}
	s.push(L, r)
	return 1
}

// h:len() -> number
func (s *State) handleLen(L *lua.LState) int {
	L.Push(lua.LNumber(s.check(L, 1).Len()))
	return 1
}

// h:at(i) -> string
// Returns the byte at zero-based index i as a one-byte string.
func (s *State) handleAt(L *lua.LState) int {
	r := s.check(L, 1)
	b, err := r.At(L.CheckInt(2))
	if err != nil {
		L.RaiseError("at: %v", err)
		return 0
	}
	L.Push(lua.LString([]byte{b}))
	return 1
}

// h:sub(start, end) -> rope
func (s *State) handleSub(L *lua.LState) int {
	r := s.check(L, 1)
	sub, err := r.Sub(L.CheckInt(2), L.CheckInt(3))
	if err != nil {
		L.RaiseError("sub: %v", err)
		return 0
	}
	s.push(L, sub)
	return 1
}

// h:str() -> string
// Reads the content without flattening.
func (s *State) handleStr(L *lua.LState) int {
	L.Push(lua.LString(s.check(L, 1).String()))
	return 1
}

// h:flatten() -> string
// Collapses the tree into one buffer and returns its content.
func (s *State) handleFlatten(L *lua.LState) int {
	c := s.check(L, 1).Flatten()
	defer c.Release()
	L.Push(lua.LString(c.String()))
	return 1
}

// h:rebalance() -> rope
func (s *State) handleRebalance(L *lua.LState) int {
	s.push(L, s.check(L, 1).Rebalance())
	return 1
}

// h:stats() -> table
func (s *State) handleStats(L *lua.LState) int {
	st := s.check(L, 1).Stats()
	t := L.NewTable()
	t.RawSetString("len", lua.LNumber(st.Len))
	t.RawSetString("depth", lua.LNumber(st.Depth))
	t.RawSetString("leaves", lua.LNumber(st.Leaves))
	t.RawSetString("internal", lua.LNumber(st.Internal))
	t.RawSetString("chunks", lua.LNumber(st.Chunks))
	t.RawSetString("owned_bytes", lua.LNumber(st.OwnedBytes))
	t.RawSetString("borrowed_bytes", lua.LNumber(st.BorrowedBytes))
	t.RawSetString("shared", lua.LNumber(st.Shared))
	L.Push(t)
	return 1
}

// h:tree() -> string
func (s *State) handleTree(L *lua.LState) int {
	L.Push(lua.LString(s.check(L, 1).DebugString()))
	return 1
}

// h:refs() -> number
func (s *State) handleRefs(L *lua.LState) int {
	L.Push(lua.LNumber(s.check(L, 1).Refs()))
	return 1
}

// h:release()
// Releasing twice is an error.
func (s *State) handleRelease(L *lua.LState) int {
	s.check(L, 1)
	h := L.CheckUserData(1).Value.(*handle)
	h.release()
	delete(s.handles, h)
	return 0
}

// a .. b -> rope
// Either operand may be a string.
func (s *State) handleConcat(L *lua.LState) int {
	return s.ropeCat(L)
}
