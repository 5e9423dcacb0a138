package SSE

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// AgentEvent is one voice-channel occurrence pushed to connected staff
// dashboards: a booking, a cancellation, a payment.
type AgentEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// EventBroadcaster fans agent events out to every connected client.
type EventBroadcaster struct {
	clients map[chan string]bool
	mu      sync.Mutex
}

func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients: make(map[chan string]bool),
	}
}

func (b *EventBroadcaster) Register(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
}

// Unregister drops a client if it is still registered. Broadcast may
// already have dropped and closed a slow client, so the close only
// happens while the channel is still in the map.
func (b *EventBroadcaster) Unregister(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; !ok {
		return
	}
	delete(b.clients, client)
	close(client)
}

// Broadcast sends an event to all registered clients. A client that
// cannot accept within a second is dropped.
func (b *EventBroadcaster) Broadcast(kind, message string) {
	event := AgentEvent{Kind: kind, Message: message, Time: time.Now().Format(time.RFC3339)}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal agent event: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case client <- string(data):
		case <-time.After(1 * time.Second):
			delete(b.clients, client)
			close(client)
		}
	}
}

var Broadcaster = NewEventBroadcaster()

// AgentEventsSSE streams agent events to a staff dashboard client.
func AgentEventsSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan string)

	Broadcaster.Register(clientChan)
	defer Broadcaster.Unregister(clientChan)
	fmt.Fprintf(c.Writer, "data: %s\n\n", "connected")
	c.Writer.Flush()

	for {
		select {
		case message, ok := <-clientChan:
			if !ok {
				// Broadcast dropped this client for being too slow.
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", message)
			c.Writer.Flush()
		case <-c.Writer.CloseNotify():
			return
		}
	}
}
