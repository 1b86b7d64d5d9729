package app

import (
	"slices"
	"strings"
	"sync"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinFunc runs inside the room critical section right after a session was
// added. existing is the membership before the add (sorted by user id, never
// containing the newcomer). evicted is the earlier session with the same
// user id, if any.
type JoinFunc func(existing []*core.Session, evicted *core.Session)

// LeaveFunc runs inside the room critical section right after removal.
type LeaveFunc func(removed *core.Session, remaining []*core.Session)

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"count"`
}

// room is one entry of the directory. closed is set when the last member
// leaves; a closed room is unreachable and must not be joined.
type room struct {
	id      domain.RoomID
	mu      sync.Mutex
	members map[domain.UserID]*core.Session
	closed  bool
}

func (r *room) snapshot() []*core.Session {
	out := make([]*core.Session, 0, len(r.members))
	for _, s := range r.members {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *core.Session) int { return strings.Compare(string(a.User()), string(b.User())) })
	return out
}

// RoomDirectory groups joined sessions by room.
//
// Lock order is room.mu before RoomDirectory.mu; RoomDirectory.mu is never
// held while taking a room lock.
type RoomDirectory struct {
	mu     sync.Mutex
	rooms  map[domain.RoomID]*room
	roomOf map[core.SessionID]domain.RoomID
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms:  make(map[domain.RoomID]*room),
		roomOf: make(map[core.SessionID]domain.RoomID),
	}
}

func (d *RoomDirectory) getOrCreate(id domain.RoomID) *room {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rooms[id]
	if !ok {
		r = &room{id: id, members: make(map[domain.UserID]*core.Session)}
		d.rooms[id] = r
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	return r
}

// lockOpen returns the live entry of id with its lock held.
func (d *RoomDirectory) lockOpen(id domain.RoomID) *room {
	for {
		r := d.getOrCreate(id)
		r.mu.Lock()
		if !r.closed {
			return r
		}
		// lost the race against the last leave; its entry is gone by now
		r.mu.Unlock()
	}
}

// Join adds sess to the room named by sess.Room(). A member with the same
// user id is replaced and handed to fn as evicted.
func (d *RoomDirectory) Join(sess *core.Session, fn JoinFunc) {
	r := d.lockOpen(sess.Room())
	defer r.mu.Unlock()

	evicted := r.members[sess.User()]
	if evicted != nil {
		delete(r.members, sess.User())
	}
	existing := r.snapshot()
	r.members[sess.User()] = sess

	d.mu.Lock()
	if evicted != nil {
		delete(d.roomOf, evicted.ID())
	}
	d.roomOf[sess.ID()] = r.id
	d.mu.Unlock()

	log.Info().Str("module", "app.rooms").Str("room", string(r.id)).Str("sid", string(sess.ID())).Str("user", string(sess.User())).Int("count", len(r.members)).Msg("member added")
	if fn != nil {
		fn(existing, evicted)
	}
}

// Leave removes the session owned by sid. The room entry is deleted when it
// becomes empty. Reports false when sid is in no room.
func (d *RoomDirectory) Leave(sid core.SessionID, fn LeaveFunc) (*core.Session, bool) {
	d.mu.Lock()
	id, ok := d.roomOf[sid]
	r := d.rooms[id]
	d.mu.Unlock()
	if !ok || r == nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed *core.Session
	for _, s := range r.members {
		if s.ID() == sid {
			removed = s
			break
		}
	}
	if removed == nil {
		// raced with an eviction or a concurrent leave of the same sid
		return nil, false
	}
	delete(r.members, removed.User())
	if len(r.members) == 0 {
		r.closed = true
	}

	d.mu.Lock()
	delete(d.roomOf, sid)
	if r.closed && d.rooms[r.id] == r {
		delete(d.rooms, r.id)
	}
	d.mu.Unlock()

	log.Info().Str("module", "app.rooms").Str("room", string(r.id)).Str("sid", string(sid)).Str("user", string(removed.User())).Int("count", len(r.members)).Msg("member removed")
	if r.closed {
		log.Info().Str("module", "app.rooms").Str("room", string(r.id)).Msg("room removed")
	}
	if fn != nil {
		fn(removed, r.snapshot())
	}
	return removed, true
}

func (d *RoomDirectory) lookup(id domain.RoomID) *room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rooms[id]
}

// Participants returns a snapshot of the room, or false if it does not exist.
func (d *RoomDirectory) Participants(id domain.RoomID) ([]*core.Session, bool) {
	r := d.lookup(id)
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	return r.snapshot(), true
}

func (d *RoomDirectory) Participant(id domain.RoomID, user domain.UserID) (*core.Session, bool) {
	r := d.lookup(id)
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.members[user]
	return s, ok
}

func (d *RoomDirectory) List() []RoomInfo {
	d.mu.Lock()
	rooms := make([]*room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.closed {
			out = append(out, RoomInfo{ID: r.id, MemberCount: len(r.members)})
		}
		r.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}
