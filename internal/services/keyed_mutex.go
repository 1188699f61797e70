package services

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// keyedMutex hands out one RWMutex per user. Entries are dropped once nobody holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*refLock
}

type refLock struct {
	sync.RWMutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[primitive.ObjectID]*refLock)}
}

func (k *keyedMutex) acquire(id primitive.ObjectID) *refLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	return l
}

func (k *keyedMutex) release(id primitive.ObjectID, l *refLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, id)
	}
}

// Lock takes the exclusive lock for id and returns its unlock func
func (k *keyedMutex) Lock(id primitive.ObjectID) func() {
	l := k.acquire(id)
	l.Lock()
	return func() {
		l.Unlock()
		k.release(id, l)
	}
}

// RLock takes the shared lock for id and returns its unlock func
func (k *keyedMutex) RLock(id primitive.ObjectID) func() {
	l := k.acquire(id)
	l.RLock()
	return func() {
		l.RUnlock()
		k.release(id, l)
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
