package amqp

import (
	"bytes"
	"context"
	"testing"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewNotificationHandler(logger.NewWithWriter("notification-subscriber", &buf, logger.LevelDebug))

	err := h.HandleNotification(context.Background(), []byte(`{"orderId":"o1","status":"Out for Delivery","updatedAt":"2024-03-01T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"action":"notification_received"`)
	assert.Contains(t, buf.String(), "Out for Delivery")

	assert.Error(t, h.HandleNotification(context.Background(), []byte(`not json`)))
	assert.Error(t, h.HandleNotification(context.Background(), []byte(`{"orderId":"o1","status":"Cooking"}`)))
}
