//go:build tracing

package rope

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// tracingEnabled is true if we were built with the "tracing" tag.
const tracingEnabled = true

// refcnt is a reference count that records a stack trace for every change,
// which makes over-release and leak bugs traceable to their call sites.
type refcnt struct {
	val  int32
	msgs []string
}

func (v *refcnt) init(val int32) {
	v.val = val
	v.trace("init")
}

func (v *refcnt) refs() int32 {
	return v.val
}

func (v *refcnt) acquire() int32 {
	v.val++
	v.trace("acquire")
	return v.val
}

func (v *refcnt) release() int32 {
	v.val--
	v.trace("release")
	return v.val
}

func (v *refcnt) trace(msg string) {
	v.msgs = append(v.msgs, fmt.Sprintf("%s: refs=%d\n%s", msg, v.val, debug.Stack()))
}

func (v *refcnt) traces() string {
	return strings.Join(v.msgs, "\n")
}
