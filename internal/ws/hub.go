package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// orderEvent is an internal struct for routing events to order rooms
type orderEvent struct {
	OrderID uuid.UUID
	Event   Event
}

// staffRoom is the room ID for staff clients watching every order.
var staffRoom = uuid.Nil

// Hub maintains the set of active clients and broadcasts messages to them.
// Customers join the room of their own order; staff join a shared room
// that receives every order event.
type Hub struct {
	// Registered clients by order ID (staffRoom for the staff feed)
	rooms map[uuid.UUID]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *orderEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *orderEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			h.sendToRoom(event.OrderID, message)
			if event.OrderID != staffRoom {
				h.sendToRoom(staffRoom, message)
			}
			h.mu.Unlock()
		}
	}
}

// sendToRoom delivers a marshaled message to every client of a room.
// Callers must hold h.mu.
func (h *Hub) sendToRoom(room uuid.UUID, message []byte) {
	for client := range h.rooms[room] {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, close and unregister
			close(client.send)
			delete(h.rooms[room], client)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// BroadcastOrderEvent sends an event to everyone watching the given order
// plus the staff feed. This is the public API for handlers and the status
// tracker to broadcast events.
func (h *Hub) BroadcastOrderEvent(orderID uuid.UUID, event Event) {
	h.broadcast <- &orderEvent{
		OrderID: orderID,
		Event:   event,
	}
}
