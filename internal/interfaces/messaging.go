package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
)

// StatusUpdateMessage is the event emitted on every status transition.
type StatusUpdateMessage struct {
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// StatusPublisher delivers status events. The notification hub and the
// RabbitMQ fanout relay both implement it.
type StatusPublisher interface {
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error
