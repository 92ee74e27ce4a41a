// Package transport abstracts the process-group transport the
// coordinator and workers exchange wire.Envelopes over. Transport is
// the logical send/recv contract a networked implementation would
// also satisfy.
package transport

import (
	"github.com/pkg/errors"

	"github.com/dropfour/dropfour/wire"
)

// Transport is a ranked, typed message group: rank 0 is the
// coordinator, ranks 1..N-1 are workers. Send/Recv address a
// destination/source rank's inbox.
type Transport interface {
	// Send delivers env to rank's inbox.
	Send(rank int, env wire.Envelope) error
	// Recv blocks until an envelope addressed to rank arrives.
	Recv(rank int) (wire.Envelope, error)
	// Size returns the number of ranks in the group (coordinator + workers).
	Size() int
}

// Local is an in-memory Transport backing every rank with its own
// buffered channel -- goroutines standing in for MPI ranks, dispatched
// over channels the same way a local worker pool would be.
type Local struct {
	inboxes []chan wire.Envelope
}

// NewLocal creates a Local transport sized for n ranks (coordinator +
// n-1 workers).
func NewLocal(n int) *Local {
	if n < 1 {
		panic("transport: group size must be at least 1")
	}
	l := &Local{inboxes: make([]chan wire.Envelope, n)}
	for i := range l.inboxes {
		// generously buffered: a stalled worker must never block the
		// coordinator's ability to send it a DONE.
		l.inboxes[i] = make(chan wire.Envelope, 64)
	}
	return l
}

// Size implements Transport.
func (l *Local) Size() int { return len(l.inboxes) }

// Send implements Transport.
func (l *Local) Send(rank int, env wire.Envelope) error {
	if rank < 0 || rank >= len(l.inboxes) {
		return errors.Errorf("transport: rank %d out of range [0,%d)", rank, len(l.inboxes))
	}
	l.inboxes[rank] <- env
	return nil
}

// Recv implements Transport.
func (l *Local) Recv(rank int) (wire.Envelope, error) {
	if rank < 0 || rank >= len(l.inboxes) {
		return wire.Envelope{}, errors.Errorf("transport: rank %d out of range [0,%d)", rank, len(l.inboxes))
	}
	return <-l.inboxes[rank], nil
}
