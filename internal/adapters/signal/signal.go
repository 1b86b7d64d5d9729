// Package signal is the WebSocket transport of the signaling service. Each
// accepted connection gets a fresh session id, a bounded send queue drained
// by a writer goroutine, and a reader goroutine feeding the orchestrator.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/githubayushraj/My-Lobby-Backend/internal/app/orch"
	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/origin"
)

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
		PongWait:   60 * time.Second,
		WriteWait:  5 * time.Second,
		SendBuffer: 32,
		RateLimit:  20,
		RateBurst:  40,
	}
}

type SignalWSController struct {
	Orch *orch.Orchestrator

	opts     Options
	upgrader websocket.Upgrader
	limiter  *RateLimiter
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReadLimit <= 0 {
		o.ReadLimit = d.ReadLimit
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = d.PingPeriod
	}
	if o.PongWait <= o.PingPeriod {
		o.PongWait = o.PingPeriod + o.PingPeriod/9
	}
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	return o
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts = opts.withDefaults()
	return &SignalWSController{
		Orch: o,
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: origin.Checker(opts.AllowedOrigins),
		},
		limiter: NewRateLimiter(opts.RateLimit, opts.RateBurst),
	}
}

// WsSignalConn implements core.SignalConnection on top of a websocket.
type WsSignalConn struct {
	sid  core.SessionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The writer flushes what is queued, sends a
// close frame and shuts the socket, which in turn ends the reader.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// HandleSignal upgrades a gin request. ctx bounds the connection lifetime.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ctl.Serve(ctx, c.Writer, c.Request, c.GetString("client_token"))
}

func (ctl *SignalWSController) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, clientToken string) {
	sid := core.SessionID(uuid.NewString())
	logger := log.With().Str("module", "signal").Str("sid", string(sid)).Str("client_token", clientToken).Logger()

	ws, err := ctl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("ws upgrade")
		return
	}
	logger.Info().Str("remote", r.RemoteAddr).Msg("new WS connection")

	conn := &WsSignalConn{
		sid:  sid,
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	go ctl.writePump(ctx, conn)
	go ctl.readPump(conn)
}
