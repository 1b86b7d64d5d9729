package app

import (
	"sync"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/rs/zerolog/log"
)

// Registry maps a connection to the session bound to it. A connection without
// an entry has not joined a room yet.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*core.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*core.Session),
	}
}

// Register overwrites any previous session of sid.
func (r *Registry) Register(sid core.SessionID, sess *core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = sess
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(sess.User())).Msg("bound session")
}

// Unregister removes and returns the session of sid. Only one caller ever
// receives a given session.
func (r *Registry) Unregister(sid core.SessionID) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sid)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return sess, true
}

func (r *Registry) Lookup(sid core.SessionID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sid]
	return sess, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
