// Package observe republishes pipeline events to connected websocket
// clients: a push-only feed for an out-of-scope external log viewer,
// not a control surface. Nothing reads back from a connected client.
package observe

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one message pushed to every connected client.
type Event struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Fields    any    `json:"fields,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(e)
}

// Hub fans out Publish calls to every currently connected websocket
// client, dropping any client whose write fails.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Publish pushes e to every connected client. Safe to call from any
// goroutine, including the pipeline's OCR worker.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.send(e); err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a subscriber until it disconnects. There is no inbound
// message protocol; any frame the client sends is read and discarded
// purely to notice when it hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("observe: upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn}
	h.add(c)
	defer h.remove(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PublishDialogue is a convenience wrapper matching the shape the
// Pipeline Driver's OnDialogueDetected callback produces.
func (h *Hub) PublishDialogue(speakerName, text string, seenCount int) {
	h.Publish(Event{
		Kind:      "dialogue_detected",
		Message:   text,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Fields: map[string]any{
			"speaker":   speakerName,
			"seenCount": seenCount,
		},
	})
}
