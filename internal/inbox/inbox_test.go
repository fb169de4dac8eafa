package inbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/socket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAPI struct {
	server *httptest.Server

	mu            sync.Mutex
	notifications []models.Notification
	unread        int

	conns           chan *websocket.Conn
	pings           chan struct{}
	markAllRequests int64
	markReadIDs     chan string
}

func newFakeAPI(t *testing.T, notifications []models.Notification, unread int) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		notifications: notifications,
		unread:        unread,
		conns:         make(chan *websocket.Conn, 1),
		pings:         make(chan struct{}, 8),
		markReadIDs:   make(chan string, 8),
	}

	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.SetPingHandler(func(string) error {
			select {
			case api.pings <- struct{}{}:
			default:
			}
			return nil
		})
		api.conns <- conn
		// Hold the connection open; reads fail once the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		count := api.unread
		api.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]int{"count": count})
	})
	mux.HandleFunc("/notifications/mark-all-read", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&api.markAllRequests, 1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			api.markReadIDs <- r.URL.Path
			w.WriteHeader(http.StatusOK)
			return
		}
		api.mu.Lock()
		notifications := append([]models.Notification(nil), api.notifications...)
		api.mu.Unlock()
		json.NewEncoder(w).Encode(notifications)
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (api *fakeAPI) push(t *testing.T, kind string, n models.Notification) {
	t.Helper()
	select {
	case conn := <-api.conns:
		api.conns <- conn
		require.NoError(t, conn.WriteJSON(socket.Event{Table: "notifications", Event: kind, Row: n}))
	case <-time.After(time.Second):
		t.Fatal("no websocket connection established")
	}
}

func makeNotification(read bool) models.Notification {
	return models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    "worker-11223344",
		Type:      models.NotificationStatusChange,
		Title:     "Status geändert",
		Message:   "Ihre Anfrage REQ-1A2B3C4D ist jetzt bereit.",
		IsRead:    read,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestInitializeLoadsStateAndMergesInsertEvents(t *testing.T) {
	existing := []models.Notification{makeNotification(false), makeNotification(true)}
	api := newFakeAPI(t, existing, 1)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	assert.Len(t, ib.Notifications(), 2)
	assert.Equal(t, 1, ib.UnreadCount())

	fresh := makeNotification(false)
	api.push(t, socket.EventInsert, fresh)

	assert.Eventually(t, func() bool {
		list := ib.Notifications()
		return len(list) == 3 && list[0].ID == fresh.ID && ib.UnreadCount() == 2
	}, 2*time.Second, 10*time.Millisecond, "insert event must prepend and bump the counter by one")
}

func TestInsertEventDeduplicatedByID(t *testing.T) {
	existing := makeNotification(false)
	api := newFakeAPI(t, []models.Notification{existing}, 1)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	// The push channel replays a row the initial fetch already returned.
	api.push(t, socket.EventInsert, existing)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, ib.Notifications(), 1)
	assert.Equal(t, 1, ib.UnreadCount())
}

func TestUpdateEventReplacesAndDecrementsOnce(t *testing.T) {
	n := makeNotification(false)
	api := newFakeAPI(t, []models.Notification{n}, 1)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	read := n
	read.IsRead = true
	api.push(t, socket.EventUpdate, read)

	assert.Eventually(t, func() bool {
		list := ib.Notifications()
		return list[0].IsRead && ib.UnreadCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// A second echo of the same flip must not drive the counter negative.
	api.push(t, socket.EventUpdate, read)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, ib.UnreadCount())
}

func TestMarkAllAsReadIsOptimistic(t *testing.T) {
	existing := []models.Notification{makeNotification(false), makeNotification(false)}
	api := newFakeAPI(t, existing, 2)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	require.NoError(t, ib.MarkAllAsRead(context.Background()))

	// Local state flips immediately, before any update echo arrives.
	assert.Equal(t, 0, ib.UnreadCount())
	for _, n := range ib.Notifications() {
		assert.True(t, n.IsRead)
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(&api.markAllRequests))
}

func TestMarkAsReadCallsServer(t *testing.T) {
	n := makeNotification(false)
	api := newFakeAPI(t, []models.Notification{n}, 1)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	require.NoError(t, ib.MarkAsRead(context.Background(), n.ID.Hex()))

	select {
	case path := <-api.markReadIDs:
		assert.Equal(t, "/notifications/"+n.ID.Hex()+"/read", path)
	case <-time.After(time.Second):
		t.Fatal("server never saw the mark-read call")
	}
}

func TestKeepsServerConnectionAliveWithPings(t *testing.T) {
	api := newFakeAPI(t, nil, 0)

	ib := New(api.server.URL, "test-token")
	ib.pingInterval = 20 * time.Millisecond
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	// An idle inbox still has to ping; the server would otherwise hit its
	// read deadline and unregister the client.
	for i := 0; i < 3; i++ {
		select {
		case <-api.pings:
		case <-time.After(time.Second):
			t.Fatal("server never received a keepalive ping")
		}
	}
}

func TestReconnectsAndResyncsAfterConnectionDrop(t *testing.T) {
	n := makeNotification(false)
	api := newFakeAPI(t, []models.Notification{n}, 1)

	ib := New(api.server.URL, "test-token")
	ib.reconnectDelay = 10 * time.Millisecond
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	// Kill the push channel from the server side.
	first := <-api.conns
	first.Close()

	// A row appears server-side while the client is disconnected; the
	// resync after reconnect has to pick it up.
	missed := makeNotification(false)
	api.mu.Lock()
	api.notifications = append([]models.Notification{missed}, api.notifications...)
	api.unread = 2
	api.mu.Unlock()

	assert.Eventually(t, func() bool {
		return len(ib.Notifications()) == 2 && ib.UnreadCount() == 2
	}, 2*time.Second, 10*time.Millisecond, "resync after reconnect must recover rows missed while disconnected")

	// The fresh connection delivers live events again.
	fresh := makeNotification(false)
	api.push(t, socket.EventInsert, fresh)

	assert.Eventually(t, func() bool {
		return len(ib.Notifications()) == 3 && ib.UnreadCount() == 3
	}, 2*time.Second, 10*time.Millisecond, "events pushed on the new connection must still arrive")
}

func TestDeleteEventRemovesRowAndClampsCounter(t *testing.T) {
	n := makeNotification(false)
	api := newFakeAPI(t, []models.Notification{n}, 1)

	ib := New(api.server.URL, "test-token")
	defer ib.Cleanup()
	require.NoError(t, ib.Initialize(context.Background()))

	api.push(t, socket.EventDelete, n)

	assert.Eventually(t, func() bool {
		return len(ib.Notifications()) == 0 && ib.UnreadCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "delete must remove the row and release its unread slot")

	// A second echo for the same row must not drive the counter negative.
	api.push(t, socket.EventDelete, n)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, ib.UnreadCount())
}

func TestCleanupIsIdempotent(t *testing.T) {
	api := newFakeAPI(t, nil, 0)

	ib := New(api.server.URL, "test-token")
	require.NoError(t, ib.Initialize(context.Background()))

	ib.Cleanup()
	ib.Cleanup()
}
