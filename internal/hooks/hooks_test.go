package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventGatewayStart, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventGatewayStart, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventGatewayStart, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventToolCalled, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventToolCalled, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventToolCalled, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventToolCalled, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventToolCalled, map[string]any{
		"tool":        "present_product",
		"participant": "alice",
	})

	assert.Equal(t, "present_product", gotData["tool"])
	assert.Equal(t, "alice", gotData["participant"])
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventGatewayStart, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventGatewayStart, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	// Should not panic; second handler should still run
	m.Emit(context.Background(), EventGatewayStart, nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventGatewayStop, nil)
	})
}

func TestManager_Emit_RecoversPanic(t *testing.T) {
	m := testManager()

	var after bool
	m.On(EventDelivery, "metrics", func(_ context.Context, p Payload) error {
		_ = p.Data[KeySink].(int)
		return nil
	})
	m.On(EventDelivery, "audit", func(_ context.Context, _ Payload) error {
		after = true
		return nil
	})

	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventDelivery, map[string]any{KeySink: SinkWebhook})
	})
	assert.True(t, after)
}

func TestManager_Emit_Concurrent(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	m.On(EventSessionEnd, "counter", func(_ context.Context, _ Payload) error {
		count.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Emit(context.Background(), EventSessionEnd, map[string]any{KeySession: "visitor-1"})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(20), count.Load())
}

func TestManager_On_UnknownEventStillRegisters(t *testing.T) {
	m := testManager()

	var called bool
	m.On("message_received", "legacy", func(_ context.Context, _ Payload) error {
		called = true
		return nil
	})
	assert.Equal(t, 1, m.Count("message_received"))

	m.Emit(context.Background(), "message_received", nil)
	assert.True(t, called)
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventGatewayStart))

	m.On(EventGatewayStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 1, m.Count(EventGatewayStart))

	m.On(EventGatewayStart, "h2", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventGatewayStart))
}

func TestAllEvents_Unique(t *testing.T) {
	require.NotEmpty(t, AllEvents)
	seen := map[string]bool{}
	for _, e := range AllEvents {
		assert.False(t, seen[e], "duplicate event %q", e)
		seen[e] = true
	}
	assert.Contains(t, AllEvents, EventLeadCaptured)
	assert.Contains(t, AllEvents, EventDelivery)
}

func TestPayloadAccessors(t *testing.T) {
	p := Payload{Event: EventDelivery, Data: map[string]any{
		KeySink: SinkWebhook,
		KeyOK:   true,
	}}
	assert.Equal(t, SinkWebhook, p.Str(KeySink))
	assert.True(t, p.Bool(KeyOK))
	assert.Empty(t, p.Str(KeyTool))
	assert.False(t, p.Bool("missing"))

	var empty Payload
	assert.False(t, empty.Bool(KeyOK))
}
