package services

import (
	"sync"

	"github.com/google/uuid"
)

// chatLocks serializes turns per chat. Two concurrent turns against the same
// chat would interleave their message appends; the second waits for the first.
type chatLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: make(map[uuid.UUID]*chatLock)}
}

// Lock acquires the lock for id and returns its unlock function.
func (c *chatLocks) Lock(id uuid.UUID) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &chatLock{}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}
