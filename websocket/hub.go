package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Hub tracks connected accounts and pushes in-app notifications to them as
// they are created. Delivery is best-effort: a dead connection is dropped,
// never retried.
type Hub struct {
	clients    map[uuid.UUID]*websocket.Conn
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
}

type Client struct {
	AccountID uuid.UUID
	Conn      *websocket.Conn
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("Client registered: %s", client.AccountID)
			h.mu.Lock()
			h.clients[client.AccountID] = client.Conn
			h.mu.Unlock()
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.AccountID)
			h.mu.Lock()
			if conn, ok := h.clients[client.AccountID]; ok && conn == client.Conn {
				delete(h.clients, client.AccountID)
			}
			h.mu.Unlock()
		}
	}
}

// Push writes payload to the account's connection if one is open.
func (h *Hub) Push(accountID uuid.UUID, payload interface{}) {
	h.mu.RLock()
	conn, ok := h.clients[accountID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(payload); err != nil {
		log.Printf("Error pushing to client %s: %v", accountID, err)
		conn.Close()
		h.mu.Lock()
		if cur, ok := h.clients[accountID]; ok && cur == conn {
			delete(h.clients, accountID)
		}
		h.mu.Unlock()
	}
}
