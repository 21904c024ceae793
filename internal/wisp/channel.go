package wisp

import (
	"log/slog"
	"sync"
)

// eventBus is a bounded, multi-producer, single-consumer channel of
// NotificationEvent values. A full queue drops the newest event rather than
// blocking the caller; once close() has been called, send returns
// ErrEventChannelClosed so the caller can surface a fault instead of
// silently losing every future event. A consumer that merely stops reading
// is not detected: the buffer fills and later events are dropped.
type eventBus struct {
	logger *slog.Logger

	mu     sync.Mutex
	ch     chan NotificationEvent
	closed bool
}

func newEventBus(capacity int, logger *slog.Logger) *eventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventBus{
		logger: logger,
		ch:     make(chan NotificationEvent, capacity),
	}
}

// receiver returns the read side of the bus for a consumer to range over.
func (b *eventBus) receiver() <-chan NotificationEvent {
	return b.ch
}

// close marks the bus closed and closes the underlying channel. Safe to
// call multiple times.
func (b *eventBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// send delivers event to the bus. A full buffer drops the event with a
// warning; a closed bus returns ErrEventChannelClosed. The closed check and
// the channel write happen under the same lock so close() can never run
// in between and close b.ch out from under a send in flight.
func (b *eventBus) send(event NotificationEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Warn("event receiver gone", "kind", event.Kind.String())
		return ErrEventChannelClosed
	}

	select {
	case b.ch <- event:
		return nil
	default:
		b.logger.Warn("event queue full; dropping notification event", "kind", event.Kind.String())
		return nil
	}
}
