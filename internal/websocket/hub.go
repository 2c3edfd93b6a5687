// Package websocket broadcasts task mutation events to connected clients so a
// device can pick up changes made elsewhere without polling.
package websocket

import (
	"encoding/json"
	"sync"

	"task-manager-go/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Event is a task mutation notification, e.g. {"type":"task.created","data":{...}}.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish queues an event for broadcast. Safe to call on a nil hub, so
// handlers do not need to care whether the feed is enabled.
func (h *Hub) Publish(eventType string, data any) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.ErrorLogger.Error("Error encoding ws event", zap.Error(err))
		return
	}
	h.Broadcast <- payload
}

// Run manages register, unregister and broadcast. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
