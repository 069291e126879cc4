package ledger

import "sync"

// keyedLocks hands out one mutex per logical key so that operations on the
// same stock record or order serialize while unrelated keys proceed in
// parallel. Locks are never evicted; the key space is bounded by the number
// of (product, warehouse) pairs and orders.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *keyedLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// lock acquires the mutex for key and returns its unlock function.
func (l *keyedLocks) lock(key string) func() {
	m := l.get(key)
	m.Lock()
	return m.Unlock
}
