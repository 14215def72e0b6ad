package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/roadsense/telemetry-hub/internal/broker"
)

// writeWait bounds a single websocket write to a subscriber.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler serves the live-update websocket endpoint. Each connection is
// one subscription: registered on connect, unregistered on any read or write
// failure. Delivery errors never propagate beyond this handler.
type WSHandler struct {
	registry *broker.Registry
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(registry *broker.Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

// Subscribe handles GET /ws/. The client is not required to send anything;
// a read pump exists only to detect disconnects proactively, while the write
// loop parks on the subscriber channel and pushes each stored batch as a
// JSON array.
func (h *WSHandler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := h.registry.Register()
	defer h.registry.Unregister(sub.ID)
	defer conn.Close()

	go h.readPump(conn, sub)

	for {
		select {
		case batch := <-sub.Updates():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(batch); err != nil {
				log.Printf("websocket write to %s failed: %v", sub.ID, err)
				return
			}
		case <-sub.Done():
			return
		}
	}
}

// readPump discards inbound frames and unregisters the subscription when the
// peer goes away, waking the write loop via Done.
func (h *WSHandler) readPump(conn *websocket.Conn, sub *broker.Subscriber) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.registry.Unregister(sub.ID)
			return
		}
	}
}
