// Package notify pushes submission lifecycle events to connected
// dashboard clients over websocket.
package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MusicHub/logger"
	"MusicHub/model"
)

// EventType names a dashboard notification.
type EventType string

const (
	EventSubmissionCreated EventType = "submission_created"
	EventStatusChanged     EventType = "status_changed"
)

// Event is the wire format sent to clients.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// StatusChangeData is the payload of a status_changed event.
type StatusChangeData struct {
	SubmissionID string `json:"submissionId"`
	SongTitle    string `json:"songTitle"`
	Uploader     string `json:"uploader"`
	Status       string `json:"status"`
}

// Client is one connected dashboard session.
type Client struct {
	ID       string
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
}

// Hub fans events out to every connected client. Managers and artists
// both receive everything; the dashboard filters client-side.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a hub; call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run is the hub main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("notify client registered",
				logger.String("client", client.ID),
				logger.String("username", client.Username),
			)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Slow consumer; drop the connection rather than
					// block the hub.
					go h.Unregister(client)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		client.Conn.Close()
	}
}

// ClientCount reports the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(eventType EventType, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to encode notify event", logger.ErrorField(err))
		return
	}
	event := Event{
		Type:      eventType,
		Data:      raw,
		Timestamp: time.Now().UnixMilli(),
	}
	msg, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode notify event", logger.ErrorField(err))
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		logger.Warn("notify broadcast buffer full, dropping event",
			logger.String("type", string(eventType)))
	}
}

// SubmissionCreated broadcasts a new submission. Implements
// intake.EventPublisher.
func (h *Hub) SubmissionCreated(sub *model.Submission) {
	h.publish(EventSubmissionCreated, sub)
}

// StatusChanged broadcasts a workflow state change.
func (h *Hub) StatusChanged(sub *model.Submission) {
	h.publish(EventStatusChanged, StatusChangeData{
		SubmissionID: sub.ID,
		SongTitle:    sub.SongTitle,
		Uploader:     sub.UploaderUsername,
		Status:       sub.Status,
	})
}
