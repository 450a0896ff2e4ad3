package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_PushWithinCapacity(t *testing.T) {
	r := newRingBuffer()
	r.push([]byte("hello "))
	r.push([]byte("world"))
	assert.Equal(t, "hello world", string(r.bytes()))
}

func TestRingBuffer_DropsOldestOnOverflow(t *testing.T) {
	r := &ringBuffer{capacity: 10}
	r.push([]byte("0123456789"))
	r.push([]byte("ABC"))
	assert.Equal(t, "3456789ABC", string(r.bytes()))
}

func TestRingBuffer_ChunkLargerThanCapacity(t *testing.T) {
	r := &ringBuffer{capacity: 4}
	r.push([]byte("abcdefgh"))
	assert.Equal(t, "efgh", string(r.bytes()))
}

func TestRingBuffer_Clear(t *testing.T) {
	r := newRingBuffer()
	r.push([]byte("data"))
	r.clear()
	assert.Empty(t, r.bytes())
}
