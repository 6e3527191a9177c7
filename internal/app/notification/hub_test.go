package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.Nop(), 8)
	t.Cleanup(h.Close)
	return h
}

func newSub(t *testing.T, h *Hub) *Subscriber {
	t.Helper()
	sub, err := h.NewSubscriber()
	require.NoError(t, err)
	return sub
}

func event(orderID string, status domain.Status) interfaces.StatusUpdateMessage {
	return interfaces.StatusUpdateMessage{OrderID: orderID, Status: status, UpdatedAt: time.Now()}
}

func receive(t *testing.T, sub *Subscriber) interfaces.StatusUpdateMessage {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		require.True(t, ok, "subscriber channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return interfaces.StatusUpdateMessage{}
	}
}

func assertEmpty(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected event %+v", msg)
	default:
	}
}

func TestHub_FanOutToAllSubscribersOfOrder(t *testing.T) {
	h := newTestHub(t)
	a, b, other := newSub(t, h), newSub(t, h), newSub(t, h)

	require.NoError(t, h.Subscribe("order-1", a))
	require.NoError(t, h.Subscribe("order-1", b))
	require.NoError(t, h.Subscribe("order-2", other))

	for _, st := range []domain.Status{domain.StatusPreparing, domain.StatusOutForDelivery, domain.StatusDelivered} {
		n := h.Publish("order-1", event("order-1", st))
		assert.Equal(t, 2, n)
	}

	for _, sub := range []*Subscriber{a, b} {
		assert.Equal(t, domain.StatusPreparing, receive(t, sub).Status)
		assert.Equal(t, domain.StatusOutForDelivery, receive(t, sub).Status)
		assert.Equal(t, domain.StatusDelivered, receive(t, sub).Status)
	}
	assertEmpty(t, other)
}

func TestHub_LateSubscriberGetsNoReplay(t *testing.T) {
	h := newTestHub(t)
	early, late := newSub(t, h), newSub(t, h)

	require.NoError(t, h.Subscribe("order-1", early))
	h.Publish("order-1", event("order-1", domain.StatusPreparing))

	require.NoError(t, h.Subscribe("order-1", late))
	assertEmpty(t, late)

	h.Publish("order-1", event("order-1", domain.StatusOutForDelivery))
	assert.Equal(t, domain.StatusOutForDelivery, receive(t, late).Status)
	assert.Equal(t, domain.StatusPreparing, receive(t, early).Status)
}

func TestHub_Unsubscribe(t *testing.T) {
	h := newTestHub(t)
	sub := newSub(t, h)

	require.NoError(t, h.Subscribe("order-1", sub))
	require.NoError(t, h.Subscribe("order-2", sub))
	h.Unsubscribe("order-1", sub)

	assert.Equal(t, 0, h.Publish("order-1", event("order-1", domain.StatusPreparing)))
	assert.Equal(t, 1, h.Publish("order-2", event("order-2", domain.StatusPreparing)))
	assert.Equal(t, "order-2", receive(t, sub).OrderID)
	assert.Equal(t, 0, h.Subscribers("order-1"))
}

func TestHub_SubscribeTwiceIsNoop(t *testing.T) {
	h := newTestHub(t)
	sub := newSub(t, h)

	require.NoError(t, h.Subscribe("order-1", sub))
	require.NoError(t, h.Subscribe("order-1", sub))

	assert.Equal(t, 1, h.Subscribers("order-1"))
	assert.Equal(t, 1, h.Publish("order-1", event("order-1", domain.StatusPreparing)))
}

func TestHub_RemoveDetachesFromAllChannels(t *testing.T) {
	h := newTestHub(t)
	sub, keep := newSub(t, h), newSub(t, h)

	require.NoError(t, h.Subscribe("order-1", sub))
	require.NoError(t, h.Subscribe("order-2", sub))
	require.NoError(t, h.Subscribe("order-2", keep))

	h.Remove(sub)

	_, ok := <-sub.C()
	assert.False(t, ok, "removed subscriber must be closed")
	assert.Equal(t, 0, h.Subscribers("order-1"))
	assert.Equal(t, 1, h.Subscribers("order-2"))
	assert.Equal(t, 1, h.Publish("order-2", event("order-2", domain.StatusPreparing)))

	// повторный Remove безопасен
	h.Remove(sub)
	assert.Error(t, h.Subscribe("order-1", sub))
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	h := NewHub(logger.Nop(), 1)
	defer h.Close()

	slow := newSub(t, h)
	require.NoError(t, h.Subscribe("order-1", slow))

	assert.Equal(t, 1, h.Publish("order-1", event("order-1", domain.StatusPreparing)))
	assert.Equal(t, 0, h.Publish("order-1", event("order-1", domain.StatusOutForDelivery)))

	assert.Equal(t, domain.StatusPreparing, receive(t, slow).Status)
	assertEmpty(t, slow)
}

func TestHub_PublishStatusUpdateUsesOrderChannel(t *testing.T) {
	h := newTestHub(t)
	sub := newSub(t, h)
	require.NoError(t, h.Subscribe("order-7", sub))

	require.NoError(t, h.PublishStatusUpdate(context.Background(), event("order-7", domain.StatusDelivered)))
	assert.Equal(t, domain.StatusDelivered, receive(t, sub).Status)
}

func TestHub_CloseShutsEverythingDown(t *testing.T) {
	h := NewHub(logger.Nop(), 4)
	sub := newSub(t, h)
	require.NoError(t, h.Subscribe("order-1", sub))

	h.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.ErrorIs(t, h.PublishStatusUpdate(context.Background(), event("order-1", domain.StatusPreparing)), ErrHubClosed)

	_, err := h.NewSubscriber()
	assert.ErrorIs(t, err, ErrHubClosed)
	h.Close()
}

func TestHub_ConcurrentUse(t *testing.T) {
	h := NewHub(logger.Nop(), 64)
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orderID := fmt.Sprintf("order-%d", i%4)

			sub, err := h.NewSubscriber()
			if err != nil {
				return
			}
			for j := 0; j < 50; j++ {
				_ = h.Subscribe(orderID, sub)
				h.Publish(orderID, event(orderID, domain.StatusPreparing))
				if j%10 == 0 {
					h.Unsubscribe(orderID, sub)
				}
			}
			h.Remove(sub)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, h.Subscribers(fmt.Sprintf("order-%d", i)))
	}
}
