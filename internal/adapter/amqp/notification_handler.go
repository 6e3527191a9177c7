package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
	}
}

// HandleNotification decodes a relayed status update and logs it.
func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}
	if msg.OrderID == "" || !msg.Status.IsValid() {
		err := fmt.Errorf("malformed status update: order %q status %q", msg.OrderID, msg.Status)
		h.logger.Error("message_invalid", "Notification rejected", "", nil, err)
		return err
	}

	h.logger.Info("notification_received", fmt.Sprintf("Order %s is now %s", msg.OrderID, msg.Status), "", map[string]interface{}{
		"order_id":   msg.OrderID,
		"status":     msg.Status,
		"updated_at": msg.UpdatedAt,
	})

	return nil
}
