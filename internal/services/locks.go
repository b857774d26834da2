package services

import (
	"sync"
	"time"
)

// meetupLocks hands out one mutex per meetup id. Entries are reference
// counted and dropped once nobody holds or waits for them.
type meetupLocks struct {
	mu    sync.Mutex
	locks map[uint]*meetupLock
}

type meetupLock struct {
	mu   sync.Mutex
	refs int
}

func newMeetupLocks() *meetupLocks {
	return &meetupLocks{locks: make(map[uint]*meetupLock)}
}

// lock blocks until the meetup's mutex is held and returns its release func.
func (l *meetupLocks) lock(meetupID uint) func() {
	l.mu.Lock()
	entry, ok := l.locks[meetupID]
	if !ok {
		entry = &meetupLock{}
		l.locks[meetupID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, meetupID)
		}
		l.mu.Unlock()
	}
}

// utcNow keeps stored timestamps in one zone so SQLite's text comparison orders them.
func utcNow() time.Time { return time.Now().UTC() }
