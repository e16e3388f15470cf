package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls whether auditing runs and how the dispatcher buffers.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher decouples the auth flows from the sink: events are queued and
// delivered by a single background worker so a slow sink never stalls a
// login. A nil *Dispatcher is valid and ignores every call.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	queue   chan Event
	quit    chan struct{}
	worker  sync.WaitGroup
	stopped atomic.Bool
	dropped atomic.Uint64
	once    sync.Once
}

// NewDispatcher starts the delivery worker. It returns nil when auditing is
// disabled, which callers treat as a silent dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan Event, cfg.BufferSize),
		quit:  make(chan struct{}),
	}
	d.worker.Add(1)
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer d.worker.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

// flush hands every already-queued event to the sink before the worker exits.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues an event for delivery. With DropIfFull set a full queue counts
// the event as dropped instead of blocking; otherwise Emit waits until the
// queue accepts it or ctx expires.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopped.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops accepting events, drains the queue, and waits for the worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.stopped.Store(true)
		close(d.quit)
		d.worker.Wait()
	})
}

// Dropped reports how many events a full queue discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
