// Package telemetry is the best-effort side channel for login/device
// records. Enqueue never blocks and never returns an error: telemetry must
// not fail or slow down the operation it is attached to.
package telemetry

import (
	"context"
	"sync"
	"time"

	"partner-media-backend/internal/logging"
)

type Event struct {
	Name   string
	At     time.Time
	Fields map[string]any
}

// Sink delivers events somewhere durable. Delivery errors are logged and
// dropped.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Send(ctx context.Context, e Event) error { return f(ctx, e) }

type Queue struct {
	sink    Sink
	log     logging.Logger
	ch      chan Event
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

func NewQueue(sink Sink, log logging.Logger, buffer int) *Queue {
	if buffer <= 0 {
		buffer = 16
	}
	q := &Queue{
		sink: sink,
		log:  log,
		ch:   make(chan Event, buffer),
		stop: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue hands an event to the worker. Full queue means the event is
// dropped, not that the caller waits.
func (q *Queue) Enqueue(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case q.ch <- e:
	default:
		q.log.Debug(context.Background(), "telemetry queue full, dropping event", "event", e.Name)
	}
}

// Close stops the worker after draining queued events.
func (q *Queue) Close() {
	q.stopped.Do(func() { close(q.stop) })
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			q.deliver(e)
		case <-q.stop:
			for {
				select {
				case e := <-q.ch:
					q.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := q.sink.Send(ctx, e); err != nil {
		q.log.Debug(ctx, "telemetry delivery failed", "event", e.Name, "error", err)
	}
}
