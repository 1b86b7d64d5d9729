package core

import "errors"

// Frame is a raw serialized envelope.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
//
// TrySend never blocks: it either enqueues the frame for the writer or
// returns an error (closed, backpressure).
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)
