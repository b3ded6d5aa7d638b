package session

import "sync"

// keyedLocks serializes orchestrator runs per session id. Lock entries are
// never dropped; the population is bounded by the number of live sessions.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the lock for key is held and returns the release
// function. Callers must release on every exit path.
func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (k *keyedLocks) forget(key string) {
	k.mu.Lock()
	delete(k.locks, key)
	k.mu.Unlock()
}
