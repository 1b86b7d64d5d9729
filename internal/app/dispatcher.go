package app

import (
	"errors"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery stats of a broadcast.
type PublishResult struct {
	SendTo  int
	Dropped []*core.Session
}

// Dispatcher serializes envelopes and hands them to session transports.
// Delivery failures are logged and never returned: a broken recipient must
// not abort the caller's protocol step.
type Dispatcher struct {
	policy  Policy
	metrics *metrics.Metrics
}

func NewDispatcher(policy Policy, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{policy: policy, metrics: m}
}

// Deliver sends one envelope to sess and reports whether it was enqueued.
func (d *Dispatcher) Deliver(sess *core.Session, t core.MessageType, payload any) bool {
	f, err := core.EncodeEnvelope(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Str("type", string(t)).Msg("encode envelope")
		return false
	}
	return d.send(sess, t, f)
}

// Broadcast sends the same envelope to every session of snapshot except
// exclude (may be nil).
func (d *Dispatcher) Broadcast(snapshot []*core.Session, exclude *core.Session, t core.MessageType, payload any) PublishResult {
	res := PublishResult{}
	f, err := core.EncodeEnvelope(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Str("type", string(t)).Msg("encode envelope")
		return res
	}
	for _, s := range snapshot {
		if exclude != nil && s.ID() == exclude.ID() {
			continue
		}
		if !d.send(s, t, f) {
			res.Dropped = append(res.Dropped, s)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.dispatch").Str("type", string(t)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (d *Dispatcher) send(sess *core.Session, t core.MessageType, f core.Frame) bool {
	err := sess.Signal().TrySend(f)
	if err == nil {
		return true
	}
	d.metrics.Inc(metrics.DeliveryFailed)
	log.Warn().Err(err).Str("module", "app.dispatch").Str("sid", string(sess.ID())).Str("user", string(sess.User())).Str("type", string(t)).Msg("delivery failed")

	if errors.Is(err, core.ErrBackpressure) && d.policy != nil && d.policy.OnBackPressure(sess) == KickMember {
		d.metrics.Inc(metrics.Kicked)
		log.Warn().Str("module", "app.dispatch").Str("sid", string(sess.ID())).Str("user", string(sess.User())).Msg("kicking slow member")
		sess.Signal().Close()
	}
	return false
}
