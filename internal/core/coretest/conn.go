// Package coretest provides an in-memory core.SignalConnection for tests.
package coretest

import (
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
)

var ErrClosed = errors.New("coretest: connection closed")

// Conn records every frame it accepts. FailWith makes TrySend fail.
type Conn struct {
	mu       sync.Mutex
	frames   []core.Frame
	closed   bool
	failWith error
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.failWith != nil {
		return c.failWith
	}
	c.frames = append(c.frames, append(core.Frame(nil), f...))
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Conn) FailWith(err error) {
	c.mu.Lock()
	c.failWith = err
	c.mu.Unlock()
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Envelopes decodes everything received so far.
func (c *Conn) Envelopes() []core.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env core.Envelope
		if err := json.Unmarshal(f, &env); err != nil {
			panic(err)
		}
		out = append(out, env)
	}
	return out
}

// OfType returns the payloads of received envelopes with type t.
func (c *Conn) OfType(t core.MessageType) []json.RawMessage {
	var out []json.RawMessage
	for _, env := range c.Envelopes() {
		if env.Type == t {
			out = append(out, env.Payload)
		}
	}
	return out
}

// UserIDs collects the userId fields of envelopes of type t, in order.
func (c *Conn) UserIDs(t core.MessageType) []string {
	var out []string
	for _, p := range c.OfType(t) {
		var ref struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(p, &ref); err != nil {
			panic(err)
		}
		out = append(out, ref.UserID)
	}
	return out
}

// Reset forgets received frames.
func (c *Conn) Reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}
