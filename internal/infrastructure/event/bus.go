package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mizan-erp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// Events are buffered on a channel and dispatched by a pool of workers,
// so publishing never blocks the transaction that produced the event
// as long as the buffer has room.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	queue    chan shared.DomainEvent
	workers  int
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus.
// bufferSize and workers fall back to sane minimums when non-positive.
func NewInMemoryEventBus(logger *zap.Logger, bufferSize, workers int) *InMemoryEventBus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		queue:    make(chan shared.DomainEvent, bufferSize),
		workers:  workers,
	}
}

// Publish enqueues events for asynchronous dispatch.
// If the bus is not running or the buffer is full, the event is
// dispatched synchronously instead of being dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if !b.running.Load() {
			b.dispatch(ctx, evt)
			continue
		}
		select {
		case b.queue <- evt:
		default:
			b.logger.Warn("event buffer full, dispatching synchronously",
				zap.String("event_type", evt.EventType()),
			)
			b.dispatch(ctx, evt)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types.
// If no event types are provided, the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the dispatch workers
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("buffer_size", cap(b.queue)),
	)
	return nil
}

// Stop drains the queue and waits for in-flight handlers to finish
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	close(b.queue)
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker() {
	defer b.wg.Done()
	for evt := range b.queue {
		b.dispatch(context.Background(), evt)
	}
}

// dispatch delivers an event to every matching handler.
// Handler errors are logged, never propagated: one failing subscriber
// must not block the others.
func (b *InMemoryEventBus) dispatch(ctx context.Context, evt shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(evt.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, evt); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, evt)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
