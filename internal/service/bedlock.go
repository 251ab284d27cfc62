package service

import "sync"

// bedLocks hands out one mutex per bed id. All position-changing paths
// (manual control, direct updates, emergency stop, scheduled execution) take
// the bed's lock before touching its row, so the scheduler cannot race a
// concurrent request against the same bed.
type bedLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newBedLocks() *bedLocks {
	return &bedLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for bedID and returns its unlock func.
// Lock entries are never evicted; the set of beds is small and stable.
func (l *bedLocks) lock(bedID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[bedID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[bedID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
