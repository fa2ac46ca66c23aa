// Package live pushes event lifecycle updates to connected admin dashboards
// over websockets. Clients join one room per semester; ending or restarting an
// event broadcasts to that semester's room.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message types broadcast to a semester room.
const (
	TypeEventEnded     = "EVENT_ENDED"
	TypeEventRestarted = "EVENT_RESTARTED"
)

// Message is the JSON envelope sent to clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SemesterRoom names the room for one semester's dashboards.
func SemesterRoom(semesterID string) string {
	return "semester_" + semesterID
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run owns room membership; it must run in its own goroutine before any
// client connects.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Info("websocket client joined",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])),
			)
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends a message to every client in the room. Clients whose
// send buffers are full are skipped rather than blocking the broadcaster.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		client.mu.Lock()
		if !client.isClosed {
			select {
			case client.send <- messageBytes:
			default:
				h.logger.Warn("websocket client send buffer full, dropping message",
					slog.String("room", roomID))
			}
		}
		client.mu.Unlock()
	}
}
