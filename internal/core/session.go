package core

import "github.com/githubayushraj/My-Lobby-Backend/internal/domain"

// SessionID identifies one transport connection for its whole lifetime.
type SessionID string

// Session binds domain.Member and its transport endpoint.
// It is created on the first valid join and never mutated afterwards.
type Session struct {
	id     SessionID
	meta   *domain.Member
	signal SignalConnection
}

func NewSession(id SessionID, meta *domain.Member, signal SignalConnection) *Session {
	return &Session{id: id, meta: meta, signal: signal}
}

func (s *Session) ID() SessionID            { return s.id }
func (s *Session) Meta() *domain.Member     { return s.meta }
func (s *Session) User() domain.UserID      { return s.meta.User }
func (s *Session) Room() domain.RoomID      { return s.meta.Room }
func (s *Session) Signal() SignalConnection { return s.signal }
