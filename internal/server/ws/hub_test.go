package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarb/internal/domain"
)

type chanBus struct {
	channels map[string]chan []byte
}

func newChanBus() *chanBus {
	b := &chanBus{channels: make(map[string]chan []byte)}
	for _, ch := range busChannels {
		b.channels[ch] = make(chan []byte, 8)
	}
	return b
}

func (b *chanBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.channels[channel] <- payload
	return nil
}

func (b *chanBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.channels[channel], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func newTestClient(h *Hub) *client {
	c := &client{
		hub:  h,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]bool, len(busChannels)),
	}
	for _, ch := range busChannels {
		c.subs[ch] = true
	}
	return c
}

func TestHub_ForwardsBusEvents(t *testing.T) {
	bus := newChanBus()
	h := NewHub(bus, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(h)
	h.register <- c
	require.Eventually(t, func() bool { return h.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	payload, err := json.Marshal(domain.NewEvent(domain.EventTrade, domain.TradePayload{ID: "t-1"}))
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, domain.EventTrade, payload))

	select {
	case data := <-c.send:
		assert.JSONEq(t, string(payload), string(data))
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to client")
	}
}

func TestHub_SubscriptionFilter(t *testing.T) {
	bus := newChanBus()
	h := NewHub(bus, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(h)
	c.handleSubscription(subscribeMsg{Action: "unsubscribe", Channels: []string{domain.EventOpportunity}})
	h.register <- c
	require.Eventually(t, func() bool { return h.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, domain.EventOpportunity, []byte(`{"type":"opportunity"}`)))
	require.NoError(t, bus.Publish(ctx, domain.EventTrade, []byte(`{"type":"trade"}`)))

	select {
	case data := <-c.send:
		// Only the still-subscribed channel gets through.
		assert.Contains(t, string(data), "trade")
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to client")
	}
	assert.Empty(t, c.send)
}

func TestHub_ShutdownReleasesClients(t *testing.T) {
	bus := newChanBus()
	h := NewHub(bus, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := newTestClient(h)
	h.register <- c
	require.Eventually(t, func() bool { return h.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	// The event loop closes every client send channel on its way out.
	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client send channel not closed on shutdown")
	}
	assert.Equal(t, 0, h.clientCount())

	// A read pump unwinding after shutdown must not block on the
	// unregister queue the loop no longer drains.
	released := make(chan struct{})
	go func() {
		h.dropClient(newTestClient(h))
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("dropClient blocked after hub shutdown")
	}
}
