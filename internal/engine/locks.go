package engine

import "sync"

// keyedMutex hands out one mutex per uint64 key, giving every facility
// (and every reservation) its own critical section so operations on
// distinct keys never contend.  Mutexes are created on first use and
// never evicted; the key space is small relative to process lifetime.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*sync.Mutex)}
}

func (k *keyedMutex) get(key uint64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
