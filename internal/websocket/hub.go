package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"vibe-curation-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisFeedChannel = "curation:feed"

// feedEnvelope is the cross-instance wire format on the redis channel.
type feedEnvelope struct {
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
}

// Hub fans session state updates out to the clients watching each session.
// With redis available, updates published on one instance reach clients
// connected to another.
type Hub struct {
	// Registered clients map: SessionID -> list of clients (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out; may be nil.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session feed closed", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToSession delivers a payload to all watchers of a session. With
// redis available the payload goes through the shared channel so every
// instance (including this one) delivers it exactly once; without redis, or
// when the publish fails, it is delivered locally.
func (h *Hub) BroadcastToSession(sessionID string, payload []byte) {
	if h.rdb == nil {
		h.deliverLocal(sessionID, payload)
		return
	}
	envelope, err := json.Marshal(feedEnvelope{SessionID: sessionID, Data: payload})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal feed envelope", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := h.rdb.Publish(context.Background(), redisFeedChannel, envelope).Err(); err != nil {
		// Local watchers still get the snapshot when the shared channel
		// is unreachable.
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
		h.deliverLocal(sessionID, payload)
	}
}

func (h *Hub) deliverLocal(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer; drop the update rather than block the hub.
			h.logger.Warn("Hub", "Dropping update for slow client", map[string]interface{}{"session_id": sessionID})
		}
	}
}

func (h *Hub) subscribeToRedis() {
	sub := h.rdb.Subscribe(context.Background(), redisFeedChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		var envelope feedEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Malformed redis feed envelope", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(envelope.SessionID, envelope.Data)
	}
}
