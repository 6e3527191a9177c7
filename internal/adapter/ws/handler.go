// Package ws serves order subscriptions over WebSocket.
//
// Client frames:
//
//	{"event":"join-order","orderId":"..."}
//	{"event":"leave-order","orderId":"..."}
//
// Server frames:
//
//	{"event":"joined-order","data":{"orderId":"..."}}
//	{"event":"order-status-updated","data":{"orderId":"...","status":"...","updatedAt":"..."}}
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/app/notification"
	"github.com/gorilla/websocket"
)

const (
	EventJoinOrder          = "join-order"
	EventLeaveOrder         = "leave-order"
	EventJoinedOrder        = "joined-order"
	EventOrderStatusUpdated = "order-status-updated"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

type inbound struct {
	Event   string `json:"event"`
	OrderID string `json:"orderId"`
}

type outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type Handler struct {
	hub      *notification.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from allowedOrigin only. An empty value or "*"
// accepts any origin.
func NewHandler(hub *notification.Hub, logger logger.Logger, allowedOrigin string) *Handler {
	h := &Handler{hub: hub, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return strings.EqualFold(origin, allowedOrigin)
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.NewSubscriber()
	if err != nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.hub.Remove(sub)
		h.logger.Warn("ws_upgrade_failed", "WebSocket upgrade failed", "", map[string]interface{}{"error": err.Error()})
		return
	}

	c := &client{
		conn:    conn,
		sub:     sub,
		hub:     h.hub,
		logger:  h.logger,
		replies: make(chan outbound, 8),
	}

	h.logger.Info("client_connected", "Client connected", "", map[string]interface{}{"subscriber_id": sub.ID()})

	go c.writePump()
	c.readPump()

	h.logger.Info("client_disconnected", "Client disconnected", "", map[string]interface{}{"subscriber_id": sub.ID()})
}

type client struct {
	conn    *websocket.Conn
	sub     *notification.Subscriber
	hub     *notification.Hub
	logger  logger.Logger
	replies chan outbound
}

// readPump handles client frames until the connection drops, then detaches
// the subscriber from every channel.
func (c *client) readPump() {
	defer func() {
		c.hub.Remove(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws_read_failed", "Unexpected WebSocket close", "", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("ws_invalid_frame", "Invalid frame received", "", map[string]interface{}{"subscriber_id": c.sub.ID()})
			continue
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg inbound) {
	orderID := strings.TrimSpace(msg.OrderID)
	if orderID == "" {
		c.logger.Warn("ws_invalid_order_id", "Invalid orderId received", "", map[string]interface{}{"event": msg.Event})
		return
	}

	switch msg.Event {
	case EventJoinOrder:
		if err := c.hub.Subscribe(orderID, c.sub); err != nil {
			c.logger.Warn("ws_join_failed", "Failed to join order channel", "", map[string]interface{}{"order_id": orderID})
			return
		}
		c.reply(outbound{Event: EventJoinedOrder, Data: map[string]string{"orderId": orderID}})

	case EventLeaveOrder:
		c.hub.Unsubscribe(orderID, c.sub)

	default:
		c.logger.Warn("ws_unknown_event", "Unknown event received", "", map[string]interface{}{"event": msg.Event})
	}
}

func (c *client) reply(msg outbound) {
	select {
	case c.replies <- msg:
	default:
		c.logger.Warn("ws_reply_dropped", "Reply buffer full, reply dropped", "", map[string]interface{}{"event": msg.Event})
	}
}

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.sub.C():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Подписчик удален или хаб закрыт
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(outbound{Event: EventOrderStatusUpdated, Data: update}); err != nil {
				return
			}

		case msg := <-c.replies:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
