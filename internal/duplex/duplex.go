// Package duplex provides an in-memory two-party transport for simulating
// both sides of a protocol in one test process.
//
// Adapted from the teacher's pkg/cbmpc/mocknet package, narrowed from its
// general n-party Net/Endpoint shape (built around cbmpc.RoleID and
// cbmpc.Transport, neither of which exist in this module) down to exactly
// two parties, since every sub-protocol here is strictly two-party. Used
// only by tests: the core state machines in protocols/* never import this
// package, matching spec §5's "the core itself performs no I/O".
package duplex

import (
	"context"
	"errors"
)

// Role identifies a side of a two-party exchange.
type Role int

const (
	RoleP1 Role = iota
	RoleP2
)

// ErrClosed is returned by Receive when its incoming channel has been closed.
var ErrClosed = errors.New("duplex: channel closed")

// Endpoint is one party's view of a two-party in-memory channel pair:
// messages sent here are received by the peer Endpoint, and vice versa.
type Endpoint struct {
	self Role
	send chan<- []byte
	recv <-chan []byte
}

// New returns a connected pair of endpoints: messages p1 sends arrive at
// p2's Receive and vice versa, each preserving send order (buffered by
// one in-flight message per direction, matching the strict round-by-round
// request/response shape of every sub-protocol here).
func New() (p1 *Endpoint, p2 *Endpoint) {
	aToB := make(chan []byte, 1)
	bToA := make(chan []byte, 1)
	p1 = &Endpoint{self: RoleP1, send: aToB, recv: bToA}
	p2 = &Endpoint{self: RoleP2, send: bToA, recv: aToB}
	return p1, p2
}

// Send queues a copy of msg for the peer endpoint. It blocks only while
// the one-message buffer toward the peer is full, until ctx is done.
func (e *Endpoint) Send(ctx context.Context, msg []byte) error {
	buf := append([]byte(nil), msg...)
	select {
	case e.send <- buf:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until the peer sends a message or ctx is done.
func (e *Endpoint) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-e.recv:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Role reports which side of the pair this endpoint is.
func (e *Endpoint) Role() Role { return e.self }
