package editor

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned when sending to a loop that has exited.
var ErrLoopStopped = errors.New("editor loop stopped")

type envelope struct {
	event Event
	call  func(*Machine) error
	reply chan error
}

// Loop feeds events to a Machine one at a time on a single goroutine.
// Anything that touches the machine or its registry goes through the loop.
type Loop struct {
	m       *Machine
	events  chan envelope
	stopped chan struct{}
}

// NewLoop attaches a loop to m. buffer is the event queue capacity.
func NewLoop(m *Machine, buffer int) *Loop {
	l := &Loop{
		m:       m,
		events:  make(chan envelope, buffer),
		stopped: make(chan struct{}),
	}
	m.post = l.handoff
	return l
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-l.events:
			var err error
			if env.call != nil {
				err = env.call(l.m)
			} else {
				err = l.m.Handle(env.event)
			}
			if env.reply != nil {
				env.reply <- err
			}
		}
	}
}

// Post queues an event without waiting for it to be handled.
func (l *Loop) Post(ctx context.Context, e Event) error {
	return l.enqueue(ctx, envelope{event: e})
}

// Send queues an event and waits for the machine's result. It must not be
// called from the loop goroutine.
func (l *Loop) Send(ctx context.Context, e Event) error {
	return l.roundTrip(ctx, envelope{event: e})
}

// Do runs fn on the loop goroutine and returns its error. Use it for queries
// that need a consistent view of the registry.
func (l *Loop) Do(ctx context.Context, fn func(*Machine) error) error {
	return l.roundTrip(ctx, envelope{call: fn})
}

func (l *Loop) roundTrip(ctx context.Context, env envelope) error {
	env.reply = make(chan error, 1)
	if err := l.enqueue(ctx, env); err != nil {
		return err
	}
	select {
	case err := <-env.reply:
		return err
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) enqueue(ctx context.Context, env envelope) error {
	select {
	case l.events <- env:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handoff delivers a worker completion. It is dropped if the loop has
// exited.
func (l *Loop) handoff(e Event) {
	select {
	case l.events <- envelope{event: e}:
	case <-l.stopped:
	}
}
