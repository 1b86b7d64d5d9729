// Package orch drives the per-connection signaling state machine on top of
// the registry, the room directory and the dispatcher.
package orch

import (
	"errors"

	"github.com/githubayushraj/My-Lobby-Backend/internal/app"
	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

// request is one validated inbound message and where it came from.
// sess is nil while the connection has not joined.
type request struct {
	sid  core.SessionID
	conn core.SignalConnection
	sess *core.Session
	in   core.Inbound
}

type handlerFunc func(req request)

type Orchestrator struct {
	Registry   *app.Registry
	Rooms      *app.RoomDirectory
	Dispatcher *app.Dispatcher
	Metrics    *metrics.Metrics

	handlers map[core.MessageType]handlerFunc
}

func New(reg *app.Registry, rooms *app.RoomDirectory, d *app.Dispatcher, m *metrics.Metrics) *Orchestrator {
	o := &Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Dispatcher: d,
		Metrics:    m,
	}
	o.handlers = map[core.MessageType]handlerFunc{
		core.TypeJoin:         o.handleJoin,
		core.TypeOffer:        o.requireJoined(o.handleRelay),
		core.TypeAnswer:       o.requireJoined(o.handleRelay),
		core.TypeICECandidate: o.requireJoined(o.handleRelay),
	}
	return o
}

// HandleMessage processes one inbound frame of connection sid. Calls for the
// same sid must not overlap; the transport reads one frame at a time.
func (o *Orchestrator) HandleMessage(sid core.SessionID, conn core.SignalConnection, data []byte) {
	t, in, err := core.DecodeInbound(data)
	if err != nil {
		o.reject(sid, t, err)
		return
	}
	h, ok := o.handlers[t]
	if !ok {
		o.reject(sid, t, core.ErrUnknownType)
		return
	}
	sess, _ := o.Registry.Lookup(sid)
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("type", string(t)).Msg("processing message")
	h(request{sid: sid, conn: conn, sess: sess, in: in})
}

func (o *Orchestrator) reject(sid core.SessionID, t core.MessageType, err error) {
	l := log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("type", string(t))
	switch {
	case errors.Is(err, core.ErrUnknownType):
		o.Metrics.Inc(metrics.DropUnknownType)
		l.Msg("unknown message type")
	case errors.Is(err, core.ErrInvalidPayload):
		o.Metrics.Inc(metrics.DropInvalid)
		l.Msg("invalid payload")
	default:
		o.Metrics.Inc(metrics.DropMalformed)
		l.Msg("malformed envelope")
	}
}

func (o *Orchestrator) requireJoined(h handlerFunc) handlerFunc {
	return func(req request) {
		if req.sess == nil {
			o.Metrics.Inc(metrics.DropNotJoined)
			log.Warn().Str("module", "orch").Str("sid", string(req.sid)).Str("type", string(req.in.Type())).Msg("message from a connection that has not joined a room")
			return
		}
		h(req)
	}
}
