package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesOnlyTheTargetUser(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "worker-1A2B3C4D")

	hub.Publish("worker-1A2B3C4D", Event{Table: "notifications", Event: EventInsert, Row: map[string]string{"title": "Neue Anfrage"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "notifications", event.Table)
	assert.Equal(t, EventInsert, event.Event)
}

func TestSendToOfflineUserIsNotAnError(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Send("nobody-home", []byte("hello")))
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "worker-1A2B3C4D")

	hub.Unregister("worker-1A2B3C4D")
	hub.Publish("worker-1A2B3C4D", Event{Table: "notifications", Event: EventUpdate})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no message may arrive after unregister")
}
