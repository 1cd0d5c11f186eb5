package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventCartUpdated  EventType = "cart.updated"
	EventOrderCreated EventType = "order.created"
)

// TopicAdmin is the topic every back-office client listens on.
const TopicAdmin = "admin"

// CartTopic returns the topic of one cart session.
func CartTopic(session string) string {
	return "cart:" + session
}

// Event is the payload broadcast to SSE clients.
type Event struct {
	Event     EventType `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Client represents a connected SSE client.
type Client struct {
	ID     string
	Topic  string
	Events chan []byte
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client listening on topic and returns it for streaming.
func (h *Hub) Register(clientID, topic string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Topic:  topic,
		Events: make(chan []byte, 64),
	}
	if old, ok := h.clients[clientID]; ok {
		close(old.Events)
	}
	h.clients[clientID] = c
	log.Debug().Str("client_id", clientID).Str("topic", topic).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Debug().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Publish sends an event to every client of topic.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Publish(topic string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.Topic != topic {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Listening reports whether any client listens on topic.
func (h *Hub) Listening(topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.Topic == topic {
			return true
		}
	}
	return false
}
