// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package events

import (
	"context"
	"sync"

	"github.com/mia-platform/acctsync/internal/logger"
)

const (
	loggerName = "acctsync:events"
)

var _ Publisher = &Queue{}

// Queue is an unbounded FIFO of events. Publish never blocks.
type Queue struct {
	lock    sync.Mutex
	pending []Event
	closed  bool

	signal chan struct{}
}

// NewQueue returns an empty open Queue.
func NewQueue() *Queue {
	return &Queue{
		signal: make(chan struct{}, 1),
	}
}

// Publish appends event to the queue.
func (q *Queue) Publish(_ context.Context, event Event) {
	q.lock.Lock()
	q.pending = append(q.pending, event)
	q.lock.Unlock()

	q.wake()
}

// Drain removes and returns every pending event in publication order.
func (q *Queue) Drain() []Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	drained := q.pending
	q.pending = nil
	return drained
}

// Close marks the queue as complete, Run returns once the remaining events are delivered.
func (q *Queue) Close() {
	q.lock.Lock()
	q.closed = true
	q.lock.Unlock()

	q.wake()
}

// Run forwards events to every sink until the queue is closed and empty. A done ctx does
// not stop the delivery: the events published while a run is being interrupted still reach
// the sinks, so callers must always Close the queue.
// Sink errors are logged and never stop the delivery of the following events.
func (q *Queue) Run(ctx context.Context, sinks ...Sink) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Trace("starting event delivery", "sinks", len(sinks))

	deliveryCtx := context.WithoutCancel(ctx)
	for {
		pending := q.Drain()
		for _, event := range pending {
			for _, sink := range sinks {
				if err := sink.Send(deliveryCtx, event); err != nil {
					log.Error("error delivering event", "type", event.EventType(), "error", err)
				}
			}
		}

		if len(pending) > 0 {
			continue
		}

		if q.isClosed() {
			log.Trace("event queue closed")
			return nil
		}

		<-q.signal
	}
}

func (q *Queue) isClosed() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.closed
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
