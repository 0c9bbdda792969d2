package mixaudio

import "sync/atomic"

// spscRing is a bounded single-producer/single-consumer queue. The
// producer's tryPush never blocks and reports failure on a full ring;
// the consumer drains with tryPop or drainAll. The backing array holds
// exactly capacity+1 slots, one of which is always left empty to
// distinguish full from empty without a separate counter — so a ring
// built with capacity n has exactly n usable slots, the way the
// teacher's FrameRingBuffer sizes itself, generalized here to any
// payload type and any requested size (not just a power of two).
type spscRing[T any] struct {
	slots    []T
	size     uint32
	readIdx  atomic.Uint32
	writeIdx atomic.Uint32
}

func newSPSCRing[T any](capacity int) *spscRing[T] {
	if capacity < 1 {
		capacity = 1
	}
	size := uint32(capacity) + 1
	return &spscRing[T]{
		slots: make([]T, size),
		size:  size,
	}
}

// tryPush appends v to the ring. It is safe to call only from the
// single producer goroutine/thread. Returns false (ErrBufferFull to
// the caller) if the ring is saturated, with no effect.
func (r *spscRing[T]) tryPush(v T) bool {
	w := r.writeIdx.Load()
	next := (w + 1) % r.size
	if next == r.readIdx.Load() {
		return false
	}
	r.slots[w] = v
	r.writeIdx.Store(next)
	return true
}

// tryPop removes and returns the oldest pending value. It is safe to
// call only from the single consumer goroutine/thread.
func (r *spscRing[T]) tryPop() (T, bool) {
	var zero T
	readIdx := r.readIdx.Load()
	if readIdx == r.writeIdx.Load() {
		return zero, false
	}
	v := r.slots[readIdx]
	r.slots[readIdx] = zero
	r.readIdx.Store((readIdx + 1) % r.size)
	return v, true
}

// drainAll pops every pending value in FIFO order, invoking fn for
// each. Used by the audio thread at the top of a callback to apply
// every command/registration that arrived since the last callback.
func (r *spscRing[T]) drainAll(fn func(T)) {
	for {
		v, ok := r.tryPop()
		if !ok {
			return
		}
		fn(v)
	}
}

// len reports the number of pending values. Approximate under
// concurrent access from the other side, fine for telemetry only.
func (r *spscRing[T]) len() int {
	w := r.writeIdx.Load()
	rd := r.readIdx.Load()
	return int((w + r.size - rd) % r.size)
}
