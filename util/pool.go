package util

import "sync"

// DefaultBufSize is the read size used for device I/O.
const DefaultBufSize = 4096

// BufPool provides reusable read buffers for the stream reader.  A
// buffer taken from the pool is only ever scratch space: bytes that
// outlive a read (capture chunks) are copied out first.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
