package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	bindings   []string
	published  []published
	deliveries chan amqp.Delivery
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges = append(c.exchanges, name+":"+kind)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error) {
	return Queue{Name: "amq.gen-test"}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = append(c.bindings, name+"->"+exchange)
	return nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{exchange: exchange, msg: msg})
	return nil
}

func (c *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error { return nil }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) NotifyClose() <-chan *amqp.Error {
	return make(chan *amqp.Error)
}

type fakeConnection struct {
	ch      *fakeChannel
	openErr error
}

func (c *fakeConnection) Channel() (Channel, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.ch, nil
}
func (c *fakeConnection) Close() error                    { return nil }
func (c *fakeConnection) NotifyClose() <-chan *amqp.Error { return make(chan *amqp.Error) }
func (c *fakeConnection) IsClosed() bool                  { return false }
func (c *fakeConnection) Reconnect() error                { return nil }

func TestPublisher_PublishStatusUpdate(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(&fakeConnection{ch: ch})

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	err := pub.PublishStatusUpdate(context.Background(), interfaces.StatusUpdateMessage{
		OrderID: "o1", Status: domain.StatusPreparing, UpdatedAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"notifications_fanout:fanout"}, ch.exchanges)
	require.Len(t, ch.published, 1)
	assert.Equal(t, NotificationsExchange, ch.published[0].exchange)
	assert.Equal(t, "application/json", ch.published[0].msg.ContentType)
	assert.JSONEq(t, `{"orderId":"o1","status":"Preparing","updatedAt":"2024-03-01T10:00:00Z"}`, string(ch.published[0].msg.Body))
	assert.True(t, ch.closed)
}

func TestPublisher_ChannelFailure(t *testing.T) {
	pub := NewPublisher(&fakeConnection{openErr: errors.New("connection is closed")})

	err := pub.PublishStatusUpdate(context.Background(), interfaces.StatusUpdateMessage{OrderID: "o1"})
	assert.Error(t, err)
}

func TestConsumer_DeliversUntilCancelled(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 2)}
	cons := NewConsumer(&fakeConnection{ch: ch}, logger.Nop())

	body, err := json.Marshal(interfaces.StatusUpdateMessage{OrderID: "o1", Status: domain.StatusDelivered})
	require.NoError(t, err)
	ch.deliveries <- amqp.Delivery{Body: body}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan []byte, 1)

	done := make(chan error, 1)
	go func() {
		done <- cons.ConsumeNotifications(ctx, func(_ context.Context, b []byte) error {
			got <- b
			return nil
		})
	}()

	select {
	case b := <-got:
		assert.JSONEq(t, string(body), string(b))
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Contains(t, ch.bindings, "amq.gen-test->notifications_fanout")
}
