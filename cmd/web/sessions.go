package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/myrjola/sherlockchat/internal/contexthelpers"
	"github.com/myrjola/sherlockchat/internal/models"
)

// sessionStore is implemented by the sqlite repository and the Redis store.
type sessionStore interface {
	Load(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

const maxSessionIDLength = 128

// resolveSessionID picks the explicit id, then the one remembered in the cookie session, then a fresh one.
// The result is remembered in the cookie session.
func (app *application) resolveSessionID(r *http.Request, explicit string) string {
	id := explicit
	if id == "" {
		id = contexthelpers.SessionID(r.Context())
	}
	if id == "" {
		id = uuid.NewString()
	}
	app.sessionManager.Put(r.Context(), sessionIDKey, id)
	return id
}

// requestedSessionID is the id named in the query string or else the cookie session.
func requestedSessionID(r *http.Request) string {
	if id := r.URL.Query().Get("session_id"); id != "" {
		return id
	}
	return contexthelpers.SessionID(r.Context())
}

// keyedMutex serialises work per key. Entries are dropped once nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		mu:    sync.Mutex{},
		locks: make(map[string]*keyedEntry),
	}
}

// Lock blocks until key is free and returns the function that releases it.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{mu: sync.Mutex{}, refs: 0}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
