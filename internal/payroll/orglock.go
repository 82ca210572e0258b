package payroll

import (
	"sync"

	"github.com/google/uuid"
)

// orgLocks serializes wallet operations per organization. The balance check,
// the gateway transfer and the debit for one employee must not interleave
// with another run (or another employee in the same run) spending from the
// same wallet.
type orgLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newOrgLocks() *orgLocks {
	return &orgLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for the given organization, creating it on first
// use, and returns the unlock func. Locks are never evicted; the map grows
// with the number of distinct organizations seen by this process.
func (l *orgLocks) Lock(orgID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[orgID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orgID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
