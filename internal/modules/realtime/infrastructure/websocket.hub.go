package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"mesaOps/internal/modules/realtime/domain"
)

// Hub routes messages to clients by topic and restaurant.
type Hub struct {
	topics  map[string]map[*Client]struct{}
	clients map[string]*Client
	global  map[*Client]struct{}
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[string]*Client),
		global:  make(map[*Client]struct{}),
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[c.key()]; ok && existing != c {
		h.detachLocked(existing)
	}
	h.clients[c.key()] = c
	slog.Info("ws client registered", c.logAttrs()...)
}

// maxSubscriptions bounds the topics one client may follow.
const maxSubscriptions = 32

// subscribe adds topic to the client and reports false when the client is at its limit.
func (h *Hub) subscribe(c *Client, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.subscribed[topic]; ok {
		return true
	}
	if len(c.subscribed) >= maxSubscriptions {
		return false
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
	return true
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
}

// Detach unregisters the client and closes its connection.
func (h *Hub) Detach(c *Client) {
	h.detachClient(c)
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	for topic := range c.subscribed {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if current, ok := h.clients[c.key()]; ok && current == c {
		delete(h.clients, c.key())
	}
	delete(h.global, c)
	c.close()
	slog.Info("ws client detached", c.logAttrs()...)
}

// Broadcast sends msg to the clients subscribed to its topic and to every global client. A
// restaurant, user or session in the metadata narrows the audience.
func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("topic", msg.Topic), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	clientsMap := h.topics[msg.Topic]
	clients := make([]*Client, 0, len(clientsMap)+len(h.global))
	seen := make(map[*Client]struct{}, len(clientsMap)+len(h.global))
	for c := range clientsMap {
		clients = append(clients, c)
		seen[c] = struct{}{}
	}
	for c := range h.global {
		if _, ok := seen[c]; ok {
			continue
		}
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var targetRestaurant, targetUser, targetSession string
	if msg.Metadata != nil {
		targetRestaurant = strings.TrimSpace(msg.Metadata[domain.MetadataRestaurantID])
		targetUser = strings.TrimSpace(msg.Metadata[domain.MetadataUserID])
		targetSession = strings.TrimSpace(msg.Metadata[domain.MetadataSessionID])
	}

	for _, c := range clients {
		if targetRestaurant != "" && c.restaurantID != "" && c.restaurantID != targetRestaurant {
			continue
		}
		if targetUser != "" && c.userID != targetUser {
			continue
		}
		if targetSession != "" && c.sessionID != targetSession {
			continue
		}
		c.enqueue(data)
	}
}

func (h *Hub) AttachClient(c *Client, topics []string) {
	h.registerClient(c)
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			h.subscribe(c, trimmed)
		}
	}
	slog.Info("ws client attached", append(c.logAttrs(), slog.Any("topics", topics))...)
}

// AttachClientToAll registers the client as a global subscriber receiving every broadcast message.
func (h *Hub) AttachClientToAll(c *Client) {
	h.registerClient(c)
	h.mu.Lock()
	h.global[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("ws client attached to all topics", c.logAttrs()...)
}

// Clients returns the number of registered clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
