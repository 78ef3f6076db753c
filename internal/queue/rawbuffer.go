package queue

// RawBuffer is a fixed-capacity array of PixelHit with a running element
// count, protected by a mutex and condition variable. It is grounded on the
// original SafeBuff<T>'s addElements/copyClear contract: FIFO with
// tail-drop-on-overflow, strict 0 <= total <= capacity.
type RawBuffer struct {
	*guard
	data []PixelHit
	total int
}

// NewRawBuffer returns a RawBuffer with the given fixed capacity.
func NewRawBuffer(capacity int) *RawBuffer {
	return &RawBuffer{
		guard: newGuard(),
		data:  make([]PixelHit, capacity),
	}
}

func (b *RawBuffer) Capacity() int { return len(b.data) }

// AddElements copies min(len(src), capacity-total) elements into the tail.
// Caller must hold the lock (Lock/Unlock). Returns the new total and the
// number of elements refused due to overflow.
func (b *RawBuffer) AddElements(src []PixelHit) (newTotal, discarded int) {
	room := len(b.data) - b.total
	n := len(src)
	if n > room {
		discarded = n - room
		n = room
	}
	copy(b.data[b.total:b.total+n], src[:n])
	b.total += n
	return b.total, discarded
}

// CopyClear copies min(total, len(dst)) elements from the head into dst. If
// fewer than total were copied, the remainder is compacted to the front;
// otherwise total resets to zero. Caller must hold the lock.
func (b *RawBuffer) CopyClear(dst []PixelHit) (copied int) {
	n := b.total
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst[:n], b.data[:n])
	if n < b.total {
		remaining := copy(b.data, b.data[n:b.total])
		b.total = remaining
	} else {
		b.total = 0
	}
	return n
}

func (b *RawBuffer) Total() int {
	return b.total
}

// Lock/Unlock/Wait/NotifyOne expose the guard's primitives to callers that need
// to hold the lock across AddElements/CopyClear, matching the
// "caller holds the lock" contract.
func (b *RawBuffer) Lock()   { b.mu.Lock() }
func (b *RawBuffer) Unlock() { b.mu.Unlock() }
func (b *RawBuffer) Wait()   { b.cv.Wait() }
func (b *RawBuffer) NotifyOne() { b.cv.Signal() }

// StopRequested reports whether shutdown has been signaled. Caller must
// already hold the lock (via Lock()).
func (b *RawBuffer) StopRequested() bool { return b.stopLocked() }

// SignalStop marks the buffer stopped and wakes any waiter, part of the
// safe_finish shutdown sequence.
func (b *RawBuffer) SignalStop() { b.signalStop() }
