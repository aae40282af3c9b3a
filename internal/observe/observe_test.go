package observe

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_PublishReachesConnectedClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	// Give the server goroutine a moment to register the client before
	// publishing, since registration happens asynchronously relative
	// to the dial returning.
	waitForSubscriber(t, hub)

	hub.Publish(Event{Kind: "textbox_detected", Message: "hello"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "textbox_detected", got.Kind)
	assert.Equal(t, "hello", got.Message)
}

func TestHub_PublishDialogueSetsFields(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()
	waitForSubscriber(t, hub)

	hub.PublishDialogue("Sage of Elfheim", "Welcome, traveler.", 1)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "dialogue_detected", got.Kind)
	assert.Equal(t, "Welcome, traveler.", got.Message)
}

func TestHub_PublishWithNoClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Publish(Event{Kind: "stability_state", Message: "noop"})
	})
}

func waitForSubscriber(t *testing.T, hub *Hub) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := len(hub.clients)
		hub.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client never registered with hub")
}
