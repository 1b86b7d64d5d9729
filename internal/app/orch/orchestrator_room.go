package orch

import (
	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

const evictReasonReplaced = "replaced"

func (o *Orchestrator) handleJoin(req request) {
	if req.sess != nil {
		o.Metrics.Inc(metrics.DropAlreadyJoined)
		log.Warn().Str("module", "orch").Str("sid", string(req.sid)).Str("room", string(req.sess.Room())).Msg("join from a connection that already joined")
		return
	}
	join := req.in.(*core.JoinRequest)
	roomID, err := domain.ParseRoomID(join.RoomID)
	if err != nil {
		o.Metrics.Inc(metrics.DropInvalid)
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(req.sid)).Msg("invalid join")
		return
	}
	userID, err := domain.ParseUserID(join.UserID)
	if err != nil {
		o.Metrics.Inc(metrics.DropInvalid)
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(req.sid)).Msg("invalid join")
		return
	}

	sess := core.NewSession(req.sid, domain.NewMember(userID, roomID), req.conn)
	o.Registry.Register(req.sid, sess)

	// The snapshot, the add and both announcements form one step per room.
	o.Rooms.Join(sess, func(existing []*core.Session, evicted *core.Session) {
		if evicted != nil {
			o.evict(evicted, existing)
		}
		ids := make([]domain.UserID, 0, len(existing))
		for _, s := range existing {
			ids = append(ids, s.User())
		}
		log.Info().Str("module", "orch").Str("sid", string(sess.ID())).Str("user", string(userID)).Str("room", string(roomID)).Int("existing", len(ids)).Msg("join")
		o.Dispatcher.Deliver(sess, core.TypeExistingParticipants, core.ParticipantList{UserIDs: ids})
		o.Dispatcher.Broadcast(existing, sess, core.TypeNewParticipant, core.ParticipantRef{UserID: userID})
	})
	o.Metrics.Inc(metrics.Joins)
}

// evict tears down a session replaced by a newer join of the same user id.
// Runs inside the room critical section of that join. The old session stays
// in the registry until its connection closes, so it can neither join again
// nor relay (it is no longer a member).
func (o *Orchestrator) evict(old *core.Session, remaining []*core.Session) {
	o.Metrics.Inc(metrics.Evictions)
	log.Warn().Str("module", "orch").Str("sid", string(old.ID())).Str("user", string(old.User())).Str("room", string(old.Room())).Msg("evicting session replaced by a newer join")
	o.Dispatcher.Broadcast(remaining, nil, core.TypeParticipantLeft, core.ParticipantRef{UserID: old.User()})
	o.Dispatcher.Deliver(old, core.TypeEvicted, core.Eviction{Reason: evictReasonReplaced})
	old.Signal().Close()
}

// Disconnect tears down the session of a closed connection. Safe to call
// more than once; only the first call after a join has an effect.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	if _, ok := o.Registry.Unregister(sid); !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("connection without a room closed")
		return
	}
	_, left := o.Rooms.Leave(sid, func(removed *core.Session, remaining []*core.Session) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(removed.User())).Str("room", string(removed.Room())).Int("remaining", len(remaining)).Msg("leave")
		o.Dispatcher.Broadcast(remaining, nil, core.TypeParticipantLeft, core.ParticipantRef{UserID: removed.User()})
	})
	if left {
		o.Metrics.Inc(metrics.Leaves)
	}
}
