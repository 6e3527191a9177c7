package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationsExchange fans status updates out to every bound queue.
const NotificationsExchange = "notifications_fanout"

type publisher struct {
	conn Connection
}

// NewPublisher relays status updates to RabbitMQ. It satisfies
// interfaces.StatusPublisher so the scheduler can publish to it next to the hub.
func NewPublisher(conn Connection) interfaces.StatusPublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   msg.OrderID,
		Timestamp:   msg.UpdatedAt,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
