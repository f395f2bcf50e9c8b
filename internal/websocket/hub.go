package websocket

import (
	"encoding/json"
	"sync"
)

// PortfolioUpdate is pushed to a user's connected clients after any
// balance-affecting operation commits. Decimal amounts travel as strings.
type PortfolioUpdate struct {
	Red   string `json:"red"`
	Gold  string `json:"gold"`
	Black int64  `json:"black"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastPortfolio fans the update out to every live client of the user.
// Slow consumers are skipped rather than blocked on.
func (h *Hub) BroadcastPortfolio(userID string, update PortfolioUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
