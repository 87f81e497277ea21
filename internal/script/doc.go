// Package script hosts Lua scripts that build and inspect ropes.
//
// Scripts run in a gopher-lua state with only the base, table, string and
// math libraries. A global rope module creates handles:
//
//	local x = rope.new("Hello my name is Yuichi")
//	local s = x:sub(13, #x)
//	print(s:flatten())   --> " is Yuichi"
//	s:release()
//
// Each handle owns one reference to a rope node. Handles a script forgets
// to release are released by Close.
//
// Offsets are zero-based byte offsets and ranges are half-open, the same
// as in package rope.
package script
