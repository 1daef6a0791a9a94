package util

import (
	"sync"
)

// RingBuffer implements a circular buffer of samples.
type RingBuffer struct {
	sync.RWMutex
	buf   []float64
	index int
}

// NewRingBuffer creates a new ring buffer with the given size.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]float64, size)}
}

// Len is the capacity of the buffer.
func (r *RingBuffer) Len() int { return len(r.buf) }

// Push data onto the ring buffer. When data is longer than the buffer only
// its most recent samples are kept.
func (r *RingBuffer) Push(data []float64) {
	if len(data) > len(r.buf) {
		data = data[len(data)-len(r.buf):]
	}

	r.Lock()
	defer r.Unlock()

	n := copy(r.buf[r.index:], data)
	copy(r.buf, data[n:])

	r.index = (r.index + len(data)) % len(r.buf)
}

// Reset zeroes the buffer.
func (r *RingBuffer) Reset() {
	r.Lock()
	defer r.Unlock()
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.index = 0
}

// Get the most recent N data points from the buffer.
func (r *RingBuffer) Get(size int) []float64 {
	return r.GetOffset(size, 0)
}

// GetOffset gets the most recent N data points from the buffer, offset minus
// M samples. size is clamped to the buffer length.
func (r *RingBuffer) GetOffset(size, offset int) []float64 {
	if size > len(r.buf) {
		size = len(r.buf)
	}

	r.RLock()
	defer r.RUnlock()

	ret := make([]float64, size)
	n := len(r.buf)
	st := ((r.index-offset-size)%n + n) % n
	for i := range ret {
		ret[i] = r.buf[(st+i)%n]
	}
	return ret
}
