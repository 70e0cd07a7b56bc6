package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/slotwise/scheduling-core/internal/realtime"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketHandler upgrades HTTP connections and wires them into the
// realtime subscription manager.
type WebSocketHandler struct {
	Upgrader websocket.Upgrader
	Manager  *realtime.SubscriptionManager
	Logger   *logger.Logger
}

func NewWebSocketHandler(manager *realtime.SubscriptionManager, logger *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		Manager: manager,
		Logger:  logger,
	}
}

// SubscriptionMessage is the client->server message shape, used to bind
// a connection to an organization's event stream.
type SubscriptionMessage struct {
	Type           string `json:"type"`
	OrganizationID string `json:"organizationId,omitempty"`
}

func (h *WebSocketHandler) HandleConnections(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("failed to upgrade websocket connection", "error", err)
		return
	}

	client := &realtime.Client{
		ID:      realtime.GenerateClientID(),
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Manager: h.Manager,
	}
	h.Manager.EnqueueClientRegistration(client)

	go h.writePump(client)
	go h.readPump(client)
}

// readPump pumps messages from the connection to the hub. Exactly one
// reader runs per connection, this goroutine.
func (h *WebSocketHandler) readPump(client *realtime.Client) {
	defer func() {
		client.Manager.UnregisterClient(client)
		if err := client.Conn.Close(); err != nil {
			h.Logger.Error("error closing websocket on readPump exit", "clientId", client.ID, "error", err)
		}
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	if err := client.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.Logger.Error("failed to set read deadline", "clientId", client.ID, "error", err)
		return
	}
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Logger.Error("websocket read error", "clientId", client.ID, "error", err)
			}
			break
		}

		var msg SubscriptionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.Logger.Warn("failed to unmarshal client message", "clientId", client.ID, "error", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			if msg.OrganizationID != "" {
				client.Manager.RegisterClient(client, msg.OrganizationID)
			} else {
				h.Logger.Warn("subscribe message missing organizationId", "clientId", client.ID)
			}
		default:
			h.Logger.Info("unknown message type from client", "clientId", client.ID, "type", msg.Type)
		}

		if err := client.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			h.Logger.Error("failed to reset read deadline", "clientId", client.ID, "error", err)
			break
		}
	}
}

// writePump pumps messages from the hub to the connection. Exactly one
// writer runs per connection, this goroutine.
func (h *WebSocketHandler) writePump(client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := client.Conn.Close(); err != nil {
			h.Logger.Error("error closing websocket on writePump exit", "clientId", client.ID, "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if err := client.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				h.Logger.Error("failed to set write deadline", "clientId", client.ID, "error", err)
			}
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				h.Logger.Error("error writing message", "clientId", client.ID, "error", err)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
