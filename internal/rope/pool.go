package rope

import "sync"

// maxPooledBufferSize bounds the buffers kept for reuse. Larger owned
// buffers are left to the garbage collector.
const maxPooledBufferSize = 64 << 10

// bufferPool recycles the storage of owned chunks once their last
// reference is released.
var bufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 256)
		return &b
	},
}

// allocBuffer returns a buffer of length n. Its contents are unspecified;
// callers overwrite every byte.
func allocBuffer(n int) []byte {
	if n > maxPooledBufferSize {
		return make([]byte, n)
	}
	bp := bufferPool.Get().(*[]byte)
	if cap(*bp) < n {
		return make([]byte, n)
	}
	return (*bp)[:n]
}

// freeBuffer returns an owned buffer to the pool. The buffer must not be
// used after calling this.
func freeBuffer(b []byte) {
	if cap(b) == 0 || cap(b) > maxPooledBufferSize {
		return
	}
	b = b[:0]
	bufferPool.Put(&b)
}
