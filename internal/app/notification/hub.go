// Package notification is the in-process publish/subscribe hub that fans
// order status events out to the clients watching each order.
//
// Delivery is best effort. Every subscriber owns a bounded buffer and an
// event that does not fit is dropped. Nothing is replayed to subscribers that
// join after a publish.
package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/metrics"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/google/uuid"
)

var ErrHubClosed = errors.New("notification hub is closed")

// Subscriber is one observer, typically one WebSocket connection. It may be
// subscribed to any number of order channels.
type Subscriber struct {
	id   string
	send chan interfaces.StatusUpdateMessage

	mu     sync.Mutex
	closed bool

	// guarded by Hub.mu
	channels map[string]struct{}
}

func (s *Subscriber) ID() string {
	return s.id
}

// C yields the events addressed to this subscriber. It is closed when the
// subscriber is removed from the hub or the hub shuts down.
func (s *Subscriber) C() <-chan interfaces.StatusUpdateMessage {
	return s.send
}

func (s *Subscriber) deliver(msg interfaces.StatusUpdateMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

type channel struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func (c *channel) snapshot() []*Subscriber {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Subscriber, 0, len(c.subs))
	for s := range c.subs {
		out = append(out, s)
	}
	return out
}

type Hub struct {
	logger     logger.Logger
	bufferSize int

	mu       sync.RWMutex
	channels map[string]*channel
	subs     map[*Subscriber]struct{}
	closed   bool
}

func NewHub(logger logger.Logger, bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		logger:     logger,
		bufferSize: bufferSize,
		channels:   make(map[string]*channel),
		subs:       make(map[*Subscriber]struct{}),
	}
}

// NewSubscriber registers a fresh observer with no channels.
func (h *Hub) NewSubscriber() (*Subscriber, error) {
	sub := &Subscriber{
		id:       uuid.NewString(),
		send:     make(chan interfaces.StatusUpdateMessage, h.bufferSize),
		channels: make(map[string]struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	h.subs[sub] = struct{}{}
	return sub, nil
}

// Subscribe adds sub to the channel of orderID. Subscribing twice is a no-op.
func (h *Hub) Subscribe(orderID string, sub *Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, ok := h.subs[sub]; !ok {
		return errors.New("subscriber is not registered with this hub")
	}
	if _, ok := sub.channels[orderID]; ok {
		return nil
	}

	ch, ok := h.channels[orderID]
	if !ok {
		ch = &channel{subs: make(map[*Subscriber]struct{})}
		h.channels[orderID] = ch
	}

	ch.mu.Lock()
	ch.subs[sub] = struct{}{}
	ch.mu.Unlock()

	sub.channels[orderID] = struct{}{}
	metrics.SubscriptionAdded()

	h.logger.Debug("channel_joined", "Subscriber joined order channel", "", map[string]interface{}{
		"order_id":      orderID,
		"subscriber_id": sub.id,
	})
	return nil
}

// Unsubscribe removes sub from one channel. The subscriber stays open.
func (h *Hub) Unsubscribe(orderID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(orderID, sub)
}

// Remove detaches sub from every channel and closes it. Called when the
// transport behind the subscriber goes away.
func (h *Hub) Remove(sub *Subscriber) {
	h.mu.Lock()
	for orderID := range sub.channels {
		h.leaveLocked(orderID, sub)
	}
	delete(h.subs, sub)
	h.mu.Unlock()

	sub.close()
}

func (h *Hub) leaveLocked(orderID string, sub *Subscriber) {
	if _, ok := sub.channels[orderID]; !ok {
		return
	}
	delete(sub.channels, orderID)

	ch, ok := h.channels[orderID]
	if !ok {
		return
	}

	ch.mu.Lock()
	delete(ch.subs, sub)
	empty := len(ch.subs) == 0
	ch.mu.Unlock()

	if empty {
		delete(h.channels, orderID)
	}
	metrics.SubscriptionRemoved()

	h.logger.Debug("channel_left", "Subscriber left order channel", "", map[string]interface{}{
		"order_id":      orderID,
		"subscriber_id": sub.id,
	})
}

// Publish hands msg to every current subscriber of orderID and returns how
// many accepted it.
func (h *Hub) Publish(orderID string, msg interfaces.StatusUpdateMessage) int {
	h.mu.RLock()
	ch, ok := h.channels[orderID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	delivered := 0
	for _, sub := range ch.snapshot() {
		if sub.deliver(msg) {
			delivered++
			metrics.EventDelivered()
			continue
		}
		metrics.EventDropped()
		h.logger.Warn("event_dropped", "Subscriber buffer full, status event dropped", "", map[string]interface{}{
			"order_id":      orderID,
			"subscriber_id": sub.id,
			"status":        msg.Status,
		})
	}
	return delivered
}

// PublishStatusUpdate implements interfaces.StatusPublisher.
func (h *Hub) PublishStatusUpdate(_ context.Context, msg interfaces.StatusUpdateMessage) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrHubClosed
	}

	h.Publish(msg.OrderID, msg)
	return nil
}

// Subscribers returns how many observers are on the channel of orderID.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.RLock()
	ch, ok := h.channels[orderID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.subs)
}

// Close removes and closes every subscriber. Further subscriptions fail.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	subs := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		for orderID := range sub.channels {
			h.leaveLocked(orderID, sub)
		}
		subs = append(subs, sub)
	}
	h.subs = make(map[*Subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}

	h.logger.Info("hub_closed", "Notification hub closed", "", map[string]interface{}{
		"subscribers": len(subs),
	})
}
