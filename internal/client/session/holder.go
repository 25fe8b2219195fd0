// Package session keeps the current auth session in one explicit holder
// instead of an ambient client singleton. Components that care about session
// changes register a listener and get a handle to unregister with.
package session

import (
	"sync"

	"github.com/supabase-community/gotrue-go/types"
)

type Listener func(*types.Session)

type Holder struct {
	mu        sync.RWMutex
	session   *types.Session
	listeners map[int]Listener
	nextID    int
}

func NewHolder() *Holder {
	return &Holder{listeners: map[int]Listener{}}
}

// Set replaces the current session (nil on sign-out) and notifies listeners.
func (h *Holder) Set(s *types.Session) {
	h.mu.Lock()
	h.session = s
	ls := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		ls = append(ls, l)
	}
	h.mu.Unlock()

	for _, l := range ls {
		l(s)
	}
}

func (h *Holder) Get() *types.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// AccessToken returns the bearer token of the current session, or "" when
// signed out.
func (h *Holder) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return ""
	}
	return h.session.AccessToken
}

type Handle struct {
	holder *Holder
	id     int
}

// Subscribe registers a listener for session changes. The returned handle
// must be used to unsubscribe; there is no ambient registry.
func (h *Holder) Subscribe(l Listener) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	return Handle{holder: h, id: id}
}

func (s Handle) Unsubscribe() {
	if s.holder == nil {
		return
	}
	s.holder.mu.Lock()
	defer s.holder.mu.Unlock()
	delete(s.holder.listeners, s.id)
}
