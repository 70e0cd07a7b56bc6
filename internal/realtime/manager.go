// Package realtime relays booking mutations (the booking.created and
// booking.cancelled webhook jobs) to connected WebSocket clients,
// scoped to the organization each client subscribed to, decoding the
// job envelope internal/jobs publishes.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/pkg/events"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	ID             string
	Conn           *websocket.Conn
	Send           chan []byte
	OrganizationID string
	Manager        *SubscriptionManager
}

// SubscriptionManager maintains the set of active clients and relays
// webhook-envelope NATS traffic to the clients subscribed to the
// matching organization.
type SubscriptionManager struct {
	clients       map[*Client]bool
	register      chan *Client
	unregister    chan *Client
	subscriptions map[string]map[*Client]bool
	Logger        *logger.Logger
	Subscriber    *events.Subscriber
	mu            sync.RWMutex
}

func NewSubscriptionManager(logger *logger.Logger, subscriber *events.Subscriber) *SubscriptionManager {
	return &SubscriptionManager{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		Logger:        logger,
		Subscriber:    subscriber,
	}
}

// EnqueueClientRegistration sends a client to the manager's register
// channel for initial registration into the main client list.
func (m *SubscriptionManager) EnqueueClientRegistration(client *Client) {
	m.register <- client
}

// Run starts the subscription manager's event loop. Run it in a
// goroutine.
func (m *SubscriptionManager) Run() {
	m.Logger.Info("subscription manager run loop started")
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			m.mu.Unlock()
			m.Logger.Info("client registered", "clientId", client.ID)
		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.Send)
				for orgID, clients := range m.subscriptions {
					if _, subscribed := clients[client]; subscribed {
						delete(m.subscriptions[orgID], client)
						if len(m.subscriptions[orgID]) == 0 {
							delete(m.subscriptions, orgID)
						}
					}
				}
			}
			m.mu.Unlock()
			m.Logger.Info("client unregistered", "clientId", client.ID)
		}
	}
}

// RegisterClient associates a client with an organizationID for
// targeted messages.
func (m *SubscriptionManager) RegisterClient(client *Client, organizationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client == nil {
		m.Logger.Error("attempted to register a nil client")
		return
	}

	client.OrganizationID = organizationID
	if _, ok := m.subscriptions[organizationID]; !ok {
		m.subscriptions[organizationID] = make(map[*Client]bool)
	}
	m.subscriptions[organizationID][client] = true
	m.Logger.Info("client subscribed", "clientId", client.ID, "organizationId", organizationID)
}

// UnregisterClient removes a client from all its subscriptions and the
// manager. Routed through the unregister channel so removal happens on
// the Run goroutine, avoiding races with the select loop.
func (m *SubscriptionManager) UnregisterClient(client *Client) {
	m.unregister <- client
}

// SendToOrganization sends a message to every client subscribed to
// organizationID. A client whose send buffer is full has its message
// dropped rather than blocking delivery to everyone else.
func (m *SubscriptionManager) SendToOrganization(organizationID string, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subscribers, ok := m.subscriptions[organizationID]
	if !ok {
		return
	}
	for client := range subscribers {
		select {
		case client.Send <- message:
		default:
			m.Logger.Warn("client send buffer full, message dropped", "clientId", client.ID, "organizationId", organizationID)
		}
	}
}

func GenerateClientID() string {
	return uuid.New().String()
}

// WebSocketMessage is the envelope delivered to clients.
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// webhookEnvelope mirrors the shape internal/jobs publishes to the
// webhooks-ready NATS subject: {name, payload}.
type webhookEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// handleWebhookEnvelope decodes a published job envelope and relays its
// payload to the organization it belongs to.
func (m *SubscriptionManager) handleWebhookEnvelope(data []byte) {
	var env webhookEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.Logger.Error("failed to unmarshal webhook envelope", "error", err)
		return
	}

	var payload jobs.WebhookPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		m.Logger.Error("failed to unmarshal webhook payload", "name", env.Name, "error", err)
		return
	}
	if payload.OrganizationID == "" {
		m.Logger.Warn("webhook payload missing organizationId, dropping", "name", env.Name)
		return
	}

	wsMessage := WebSocketMessage{Type: env.Name, Payload: payload}
	jsonMessage, err := json.Marshal(wsMessage)
	if err != nil {
		m.Logger.Error("failed to marshal websocket message", "name", env.Name, "error", err)
		return
	}

	m.SendToOrganization(payload.OrganizationID, jsonMessage)
}

// StartEventSubscriptions subscribes to the webhooks-ready subject and
// relays every booking.created/booking.cancelled event it carries.
func (m *SubscriptionManager) StartEventSubscriptions(subject string) {
	if m.Subscriber == nil {
		m.Logger.Error("NATS subscriber not initialized, skipping realtime relay")
		return
	}
	err := m.Subscriber.Subscribe(subject, func(data []byte) error {
		m.handleWebhookEnvelope(data)
		return nil
	})
	if err != nil {
		m.Logger.Error("failed to subscribe to webhook subject", "subject", subject, "error", err)
		return
	}
	m.Logger.Info("subscribed to webhook subject for realtime relay", "subject", subject)
}
