package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(c.sid)).Msg("writePump ctx done")
			ctl.closeFrame(c, websocket.CloseGoingAway, "server shutting down")
			return
		case data, ok := <-c.send:
			if !ok {
				ctl.closeFrame(c, websocket.CloseNormalClosure, "")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(c.sid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := ctl.ping(c); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.sid)).Msg("ping failed")
				return
			}
		}
	}
}

// readPump is the only reader of c. It reports the close to the orchestrator
// exactly once, whatever ended the connection. The transport is closed first
// so nothing is queued for a session that is being torn down.
func (ctl *SignalWSController) readPump(c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(c.sid)).Msg("readPump closing")
		c.Close()
		ctl.Orch.Disconnect(c.sid)
		ctl.limiter.Forget(c.sid)
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.sid)).Msg("readPump read error")
			} else {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(c.sid)).Msg("readPump closed")
			}
			return
		}
		if kind != websocket.TextMessage {
			ctl.Orch.Metrics.Inc(metrics.DropMalformed)
			log.Warn().Str("module", "signal").Str("sid", string(c.sid)).Int("kind", kind).Msg("non-text frame ignored")
			continue
		}
		if !ctl.limiter.Allow(c.sid) {
			ctl.Orch.Metrics.Inc(metrics.DropRateLimited)
			log.Warn().Str("module", "signal").Str("sid", string(c.sid)).Msg("rate limit exceeded, frame dropped")
			continue
		}
		ctl.Orch.HandleMessage(c.sid, c, data)
	}
}
