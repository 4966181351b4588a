package utils

import "sync"

var chunkPool = &sync.Pool{
	New: func() any {
		buf := make([]byte, StreamChunkSize)
		return &buf
	},
}

// GetChunkBuffer retrieves a StreamChunkSize buffer; return it with PutChunkBuffer.
func GetChunkBuffer() *[]byte {
	return chunkPool.Get().(*[]byte)
}

func PutChunkBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == StreamChunkSize {
		chunkPool.Put(buf)
	}
}
