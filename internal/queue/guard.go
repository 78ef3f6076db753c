package queue

import "sync"

// guard is the common synchronization capability shared by every channel in
// the pipeline: a mutex, a condition variable over it, and a stop flag. It
// is composed into each buffer type rather than inherited, so the CV and
// stop flag stay a single shared primitive instead of being reimplemented
// per container.
type guard struct {
	mu   sync.Mutex
	cv   *sync.Cond
	stop bool
}

func newGuard() *guard {
	g := &guard{}
	g.cv = sync.NewCond(&g.mu)
	return g
}

// signalStop sets the stop flag and wakes every waiter so a blocked consumer
// can observe it and drain.
func (g *guard) signalStop() {
	g.mu.Lock()
	g.stop = true
	g.mu.Unlock()
	g.cv.Broadcast()
}

// stopRequested acquires the lock itself; only for callers that do not
// already hold it.
func (g *guard) stopRequested() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stop
}

// stopLocked reads the stop flag directly. Caller must already hold the
// lock (via Lock()) - sync.Mutex is not reentrant, so calling stopRequested
// here would deadlock.
func (g *guard) stopLocked() bool {
	return g.stop
}
