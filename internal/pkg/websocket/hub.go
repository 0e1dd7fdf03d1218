package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Envelope is a payload addressed to every live session of one user
type Envelope struct {
	UserID  int64
	Payload interface{}
}

// Hub maintains the set of active clients, keyed by user, and pushes messages to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	deliver    chan Envelope
	register   chan *Client
	unregister chan *Client

	// guards clients for readers outside the Run loop
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan Envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.deliver:
			h.deliverEnvelope(env)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *Client) {
	sessions, ok := h.clients[client.userID]
	if !ok || !sessions[client] {
		return
	}
	delete(sessions, client)
	close(client.send)
	if len(sessions) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliverEnvelope(env Envelope) {
	data, err := json.Marshal(env.Payload)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", env.UserID).Msg("Failed to marshal push payload")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[env.UserID] {
		select {
		case client.send <- data:
		default:
			// slow consumer; its writePump closes the connection once send is closed
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sessions := range h.clients {
		for client := range sessions {
			h.dropLocked(client)
		}
	}
}

// SendToUser queues payload for every session of userID.
// It never blocks: when the hub is saturated the push is dropped and false is returned.
func (h *Hub) SendToUser(userID int64, payload interface{}) bool {
	select {
	case h.deliver <- Envelope{UserID: userID, Payload: payload}:
		return true
	default:
		h.logger.Warn().Int64("userID", userID).Msg("Hub delivery queue full, push dropped")
		return false
	}
}

// ClientsCount returns the number of live sessions of a user
func (h *Hub) ClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
