package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes trades per user. Trades for different users share
// nothing and run fully in parallel; two trades for the same user take the
// same mutex so the read-check-write sequence stays indivisible.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock locks the trade path for a specific user
func (l *userLocks) Lock(userID uuid.UUID) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
}

// Unlock unlocks the trade path for a specific user
func (l *userLocks) Unlock(userID uuid.UUID) {
	l.mu.Lock()
	m := l.locks[userID]
	l.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
