//go:build !tracing

package rope

// tracingEnabled is true if we were built with the "tracing" tag.
const tracingEnabled = false

// refcnt is a plain reference count. Ropes are single-threaded so no atomic
// operations are used. See refcnt_tracing.go for the "tracing" build.
type refcnt int32

func (v *refcnt) init(val int32) {
	*v = refcnt(val)
}

func (v *refcnt) refs() int32 {
	return int32(*v)
}

func (v *refcnt) acquire() int32 {
	*v++
	return int32(*v)
}

func (v *refcnt) release() int32 {
	*v--
	return int32(*v)
}

func (v *refcnt) traces() string {
	return ""
}
