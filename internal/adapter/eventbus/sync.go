// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus used between playback,
// the visualizer, and the UI.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/gopulse/internal/domain"
	"github.com/tejashwikalptaru/gopulse/internal/ports"
)

// ErrBusClosed is returned by Close when the bus was already closed.
var ErrBusClosed = errors.New("event bus already closed")

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered to handlers on the publisher's goroutine, type-specific
// handlers first and wildcard handlers after, each group in subscription order.
//
// Thread-safety: This implementation is thread-safe. Handlers may publish,
// subscribe, or unsubscribe from inside a handler without deadlocking because
// delivery works on a snapshot of the subscriber list.
type SyncEventBus struct {
	logger *slog.Logger

	// mu protects subscribers, wildcard and closed
	mu          sync.RWMutex
	subscribers map[domain.EventType][]subscription
	wildcard    []subscription
	closed      bool

	idCounter atomic.Uint64
	published atomic.Uint64
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// SetLogger sets the logger for this event bus.
// This should be called after construction before using the event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger.With(slog.String("adapter", "eventbus"))
}

// Publish delivers an event to all subscribers of its type and to all
// wildcard subscribers. Nil events and publishes after Close are dropped.
//
// Panics in handlers are recovered and logged, and do not stop delivery
// to the remaining handlers.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := make([]subscription, 0, len(bus.subscribers[event.Type()])+len(bus.wildcard))
	targets = append(targets, bus.subscribers[event.Type()]...)
	targets = append(targets, bus.wildcard...)
	logger := bus.logger
	bus.mu.RUnlock()

	bus.published.Add(1)
	if logger != nil {
		logger.Debug("event published",
			slog.String("event_type", string(event.Type())),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		bus.deliver(logger, sub, event)
	}
}

func (bus *SyncEventBus) deliver(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("subscription", string(sub.id)),
				slog.String("event_type", string(event.Type())))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Returns a unique subscription ID that can be used to unsubscribe.
//
// Panics if handler is nil or the bus is closed.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("sub", handler, func(sub subscription) {
		bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)
	})
}

// SubscribeAll registers a handler that receives all events regardless of type.
// This is useful for logging or for the presenter's status line.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add("sub-all", handler, func(sub subscription) {
		bus.wildcard = append(bus.wildcard, sub)
	})
}

func (bus *SyncEventBus) add(prefix string, handler domain.EventHandler, insert func(subscription)) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.idCounter.Add(1)))
	insert(subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a previously registered event handler.
// If the subscription ID is invalid or already unsubscribed, this is a no-op.
// The relative order of the remaining handlers is preserved.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	match := func(s subscription) bool { return s.id == id }

	for eventType, subs := range bus.subscribers {
		if i := slices.IndexFunc(subs, match); i >= 0 {
			bus.subscribers[eventType] = slices.Delete(subs, i, i+1)
			return
		}
	}
	if i := slices.IndexFunc(bus.wildcard, match); i >= 0 {
		bus.wildcard = slices.Delete(bus.wildcard, i, i+1)
	}
}

// HasSubscribers returns true if there are any active subscriptions for the given event type.
// Wildcard subscriptions count for every type.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[eventType]) > 0 || len(bus.wildcard) > 0
}

// Close shuts down the event bus and clears all subscriptions.
// Returns ErrBusClosed if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrBusClosed
	}
	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.wildcard = nil

	if bus.logger != nil {
		bus.logger.Debug("event bus closed", slog.Uint64("published", bus.published.Load()))
	}
	return nil
}

// SubscriberCount returns the number of active subscriptions for debugging.
// This counts both type-specific and wildcard subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.wildcard)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

// PublishedCount returns how many events were delivered since construction.
func (bus *SyncEventBus) PublishedCount() uint64 {
	return bus.published.Load()
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
