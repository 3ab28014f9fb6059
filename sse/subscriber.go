package sse

import (
	"context"
	"io"
	"iter"
	"sync"
)

// Delivery is the outcome of a single non-blocking enqueue attempt.
type Delivery int

const (
	// Delivered means the message was placed on the subscriber's queue.
	Delivered Delivery = iota
	// DroppedFull means the queue was at capacity.
	DroppedFull
	// DroppedClosed means the consumer has already gone away.
	DroppedClosed
)

// String returns the label used in logs and metric attributes.
func (d Delivery) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case DroppedFull:
		return "dropped_full"
	case DroppedClosed:
		return "dropped_closed"
	default:
		return "unknown"
	}
}

// Subscriber is one connected consumer: a bounded FIFO queue written only by
// the Hub and drained by a single reader through Next or All.
type Subscriber struct {
	id    uint64
	queue chan Message
	done  chan struct{}

	closeOnce sync.Once
	endOnce   sync.Once
}

func newSubscriber(id uint64, capacity int) *Subscriber {
	return &Subscriber{
		id:    id,
		queue: make(chan Message, capacity),
		done:  make(chan struct{}),
	}
}

// ID returns the identity the subscriber is registered under.
func (s *Subscriber) ID() uint64 {
	return s.id
}

// Cap returns the fixed queue capacity.
func (s *Subscriber) Cap() int {
	return cap(s.queue)
}

// Pending returns the number of queued, not yet consumed messages.
func (s *Subscriber) Pending() int {
	return len(s.queue)
}

// Next blocks until a message is available. It returns io.EOF once the Hub
// has closed the queue and every queued message has been consumed, or the
// context error if ctx ends first.
func (s *Subscriber) Next(ctx context.Context) (Message, error) {
	select {
	case m, ok := <-s.queue:
		if !ok {
			return "", io.EOF
		}
		return m, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// All returns the subscriber's stream as a range-over-func sequence. The
// sequence ends when the queue is closed or ctx is done. It is not
// restartable: messages consumed by one range loop are gone.
func (s *Subscriber) All(ctx context.Context) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			m, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Close signals that the consumer is gone. Subsequent enqueue attempts report
// DroppedClosed; the Hub prunes the subscriber on its next sweep.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed once Close has been called.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// offer attempts a non-blocking enqueue. Must only be called by the Hub while
// it holds its lock and the subscriber is registered.
func (s *Subscriber) offer(m Message) Delivery {
	select {
	case <-s.done:
		return DroppedClosed
	default:
	}

	select {
	case s.queue <- m:
		return Delivered
	default:
		return DroppedFull
	}
}

// end closes the queue from the producer side, terminating the stream.
func (s *Subscriber) end() {
	s.endOnce.Do(func() { close(s.queue) })
}
