package orch

import (
	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards offer, answer and ice_candidate to one peer of the
// sender's room. The sender gets no feedback when the peer is missing.
func (o *Orchestrator) handleRelay(req request) {
	rel := req.in.(core.Relayed)
	from := req.sess
	logger := log.With().
		Str("module", "orch").
		Str("sid", string(from.ID())).
		Str("type", string(rel.Type())).
		Str("from", string(from.User())).
		Str("to", string(rel.Target())).
		Str("room", string(from.Room())).
		Logger()

	if cur, ok := o.Rooms.Participant(from.Room(), from.User()); !ok || cur.ID() != from.ID() {
		o.Metrics.Inc(metrics.DropNotJoined)
		logger.Warn().Msg("sender is no longer a member of its room")
		return
	}
	target, ok := o.Rooms.Participant(from.Room(), rel.Target())
	if !ok {
		o.Metrics.Inc(metrics.DropNoTarget)
		logger.Warn().Msg("could not find participant to forward message")
		return
	}
	if target.ID() == from.ID() {
		o.Metrics.Inc(metrics.DropNoTarget)
		logger.Warn().Msg("refusing to forward message to its sender")
		return
	}
	if o.Dispatcher.Deliver(target, rel.Type(), rel.Forward(from.User())) {
		o.Metrics.Inc(metrics.Relayed)
		logger.Debug().Msg("forwarded")
	}
}
