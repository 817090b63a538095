package services

import (
	"sync"

	"github.com/terraincognita07/khare/internal/models"
)

// SessionStore holds the current AuthState for one view. Writes replace the
// state wholesale and are dropped once the store is disposed.
type SessionStore struct {
	mu        sync.RWMutex
	state     models.AuthState
	listeners map[int]func(models.AuthState)
	nextID    int
	disposed  bool
}

// NewSessionStore starts in the loading state.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		state:     models.AuthState{Loading: true},
		listeners: make(map[int]func(models.AuthState)),
	}
}

func (store *SessionStore) State() models.AuthState {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

// Set replaces the state and notifies subscribers. It reports false when the
// store is disposed and the write was dropped.
func (store *SessionStore) Set(state models.AuthState) bool {
	store.mu.Lock()
	if store.disposed {
		store.mu.Unlock()
		return false
	}
	store.state = state
	listeners := make([]func(models.AuthState), 0, len(store.listeners))
	for _, listener := range store.listeners {
		listeners = append(listeners, listener)
	}
	store.mu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
	return true
}

// Subscribe registers fn for future state changes and returns its cancel func.
func (store *SessionStore) Subscribe(fn func(models.AuthState)) func() {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.disposed {
		return func() {}
	}

	id := store.nextID
	store.nextID++
	store.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			store.mu.Lock()
			delete(store.listeners, id)
			store.mu.Unlock()
		})
	}
}

func (store *SessionStore) Dispose() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.disposed = true
	store.listeners = make(map[int]func(models.AuthState))
}

func (store *SessionStore) Disposed() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.disposed
}
