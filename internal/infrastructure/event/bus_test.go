package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// Before Start the bus dispatches synchronously, which keeps these
// tests deterministic.

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler, "StockMovementRecorded")

	event := newTestEvent("StockMovementRecorded")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler, "StockMovementRecorded")

	event1 := newTestEvent("StockMovementRecorded")
	event2 := newTestEvent("StockMovementRecorded")
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler1 := newTestHandler("StockMovementRecorded")
	handler2 := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler1, "StockMovementRecorded")
	bus.Subscribe(handler2, "StockMovementRecorded")

	event := newTestEvent("StockMovementRecorded")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := newTestEvent("StockCountCompleted")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler1 := newTestHandler("StockMovementRecorded")
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler1, "StockMovementRecorded")
	bus.Subscribe(handler2, "StockMovementRecorded")

	event := newTestEvent("StockMovementRecorded")
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler := newTestHandler("StockCountCompleted")
	bus.Subscribe(handler, "StockCountCompleted")

	event := newTestEvent("StockMovementRecorded")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler, "StockMovementRecorded")

	event1 := newTestEvent("StockMovementRecorded")
	_ = bus.Publish(context.Background(), event1)
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	event2 := newTestEvent("StockMovementRecorded")
	_ = bus.Publish(context.Background(), event2)
	assert.Len(t, handler.getHandled(), 1) // Still 1, not 2
}

func TestInMemoryEventBus_AsyncDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 16, 2)

	handler := newTestHandler("StockMovementRecorded")
	bus.Subscribe(handler, "StockMovementRecorded")

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("StockMovementRecorded")))
	}

	assert.Eventually(t, func() bool {
		return len(handler.getHandled()) == 5
	}, time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
}

func TestInMemoryEventBus_StopDrainsQueue(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), 64, 1)

	handler := newTestHandler("StockCountCompleted")
	bus.Subscribe(handler, "StockCountCompleted")

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("StockCountCompleted")))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))

	// All buffered events were delivered before Stop returned
	assert.Len(t, handler.getHandled(), 10)

	// Stop is idempotent
	require.NoError(t, bus.Stop(context.Background()))
}
