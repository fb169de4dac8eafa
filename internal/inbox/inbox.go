// Package inbox is the client-side notification store used by handheld
// terminals. It mirrors the server's notification state for one user and
// keeps it live over the push channel without full refetches.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/socket"

	"github.com/gorilla/websocket"
)

const (
	fetchLimit      = 50
	eventBufferSize = 64

	// The server drops a connection after 30s without a client PING, so the
	// keepalive cadence must stay well inside that window.
	defaultPingInterval   = 15 * time.Second
	defaultReconnectDelay = 2 * time.Second

	writeWait = 5 * time.Second
)

// Inbox holds one user's notifications and unread counter. All state
// mutations run on a single dispatch goroutine, so event handlers execute to
// completion in arrival order.
type Inbox struct {
	baseURL string
	token   string
	httpc   *http.Client
	dialer  *websocket.Dialer

	pingInterval   time.Duration
	reconnectDelay time.Duration

	connMu sync.Mutex
	conn   *websocket.Conn

	events chan socket.Event
	done   chan struct{}

	mu            sync.RWMutex
	notifications []models.Notification
	unread        int
	seen          map[string]bool

	cleanupOnce sync.Once
}

// New creates an inbox for the API at baseURL (e.g. "https://host/api/v1")
// authenticating with the given token. Call Initialize before reading state.
func New(baseURL, token string) *Inbox {
	return &Inbox{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		httpc:          &http.Client{Timeout: 10 * time.Second},
		dialer:         websocket.DefaultDialer,
		pingInterval:   defaultPingInterval,
		reconnectDelay: defaultReconnectDelay,
		events:         make(chan socket.Event, eventBufferSize),
		done:           make(chan struct{}),
		seen:           make(map[string]bool),
	}
}

// Initialize opens the push subscription first, then fetches the current
// page and unread count. Events that arrive while the fetch is in flight are
// buffered and applied afterwards; the de-duplication by id makes the replay
// safe against rows the fetch already returned.
func (ib *Inbox) Initialize(ctx context.Context) error {
	if err := ib.subscribe(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	if err := ib.resync(ctx); err != nil {
		ib.Cleanup()
		return err
	}

	go ib.dispatchLoop()
	return nil
}

// Notifications returns a snapshot of the local state, newest first.
func (ib *Inbox) Notifications() []models.Notification {
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	out := make([]models.Notification, len(ib.notifications))
	copy(out, ib.notifications)
	return out
}

// UnreadCount returns the local unread counter.
func (ib *Inbox) UnreadCount() int {
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	return ib.unread
}

// MarkAsRead flips one notification on the server. The local record is
// updated when the push channel echoes the change back.
func (ib *Inbox) MarkAsRead(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, ib.baseURL+"/notifications/"+id+"/read", nil)
	if err != nil {
		return err
	}
	return ib.do(req)
}

// MarkAllAsRead zeroes the counter and flips every local record immediately,
// then tells the server. The optimistic state converges with the server via
// the update-event echoes.
func (ib *Inbox) MarkAllAsRead(ctx context.Context) error {
	ib.mu.Lock()
	for i := range ib.notifications {
		ib.notifications[i].IsRead = true
	}
	ib.unread = 0
	ib.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ib.baseURL+"/notifications/mark-all-read", nil)
	if err != nil {
		return err
	}
	return ib.do(req)
}

// Cleanup tears down the push subscription. It is idempotent and must run
// when the owning session ends; the channel does not close itself.
func (ib *Inbox) Cleanup() {
	ib.cleanupOnce.Do(func() {
		close(ib.done)
		ib.connMu.Lock()
		if ib.conn != nil {
			ib.conn.Close()
		}
		ib.connMu.Unlock()
	})
}

func (ib *Inbox) subscribe(ctx context.Context) error {
	conn, err := ib.dial(ctx)
	if err != nil {
		return err
	}
	ib.setConn(conn)

	go ib.pingLoop(conn)
	go ib.readLoop(conn)
	return nil
}

func (ib *Inbox) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL, err := url.Parse(ib.baseURL + "/ws")
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	q := wsURL.Query()
	q.Set("token", ib.token)
	wsURL.RawQuery = q.Encode()

	conn, _, err := ib.dialer.DialContext(ctx, wsURL.String(), nil)
	return conn, err
}

func (ib *Inbox) setConn(conn *websocket.Conn) {
	ib.connMu.Lock()
	defer ib.connMu.Unlock()
	ib.conn = conn

	select {
	case <-ib.done:
		// Cleanup already ran; do not leave a dangling connection behind.
		conn.Close()
	default:
	}
}

// pingLoop keeps the server's read deadline alive. The server unregisters a
// client that stays silent, so an idle inbox must still ping.
func (ib *Inbox) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(ib.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ib.done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop feeds raw push messages into the event buffer. It runs from the
// moment of subscription, so events arriving before Initialize finishes are
// held until the dispatch loop starts. A dropped connection triggers a
// reconnect; only Cleanup ends the subscription for good.
func (ib *Inbox) readLoop(conn *websocket.Conn) {
	for {
		var event socket.Event
		if err := conn.ReadJSON(&event); err != nil {
			select {
			case <-ib.done:
			default:
				log.Printf("Inbox subscription lost: %v", err)
				go ib.reconnect()
			}
			return
		}
		select {
		case ib.events <- event:
		case <-ib.done:
			return
		}
	}
}

// reconnect re-dials the push channel and refetches server state to cover
// whatever was missed while disconnected.
func (ib *Inbox) reconnect() {
	for {
		select {
		case <-ib.done:
			return
		case <-time.After(ib.reconnectDelay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := ib.dial(ctx)
		cancel()
		if err != nil {
			log.Printf("Inbox reconnect failed: %v", err)
			continue
		}
		ib.setConn(conn)

		go ib.pingLoop(conn)
		go ib.readLoop(conn)

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		err = ib.resync(ctx)
		cancel()
		if err != nil {
			log.Printf("Inbox resync after reconnect failed: %v", err)
		}
		return
	}
}

// resync replaces local state with the server's current page and counter.
// Already-seen ids stay recorded so replayed insert events remain no-ops.
func (ib *Inbox) resync(ctx context.Context) error {
	var notifications []models.Notification
	if err := ib.getJSON(ctx, fmt.Sprintf("/notifications/?limit=%d", fetchLimit), &notifications); err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	var count struct {
		Count int `json:"count"`
	}
	if err := ib.getJSON(ctx, "/notifications/unread-count", &count); err != nil {
		return fmt.Errorf("fetch unread count: %w", err)
	}

	ib.mu.Lock()
	ib.notifications = notifications
	ib.unread = count.Count
	for _, n := range notifications {
		ib.seen[n.ID.Hex()] = true
	}
	ib.mu.Unlock()
	return nil
}

func (ib *Inbox) dispatchLoop() {
	for {
		select {
		case <-ib.done:
			return
		case event := <-ib.events:
			ib.apply(event)
		}
	}
}

func (ib *Inbox) apply(event socket.Event) {
	if event.Table != "notifications" {
		return
	}

	raw, err := json.Marshal(event.Row)
	if err != nil {
		return
	}
	var n models.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return
	}

	switch event.Event {
	case socket.EventInsert:
		ib.applyInsert(n)
	case socket.EventUpdate:
		ib.applyUpdate(n)
	case socket.EventDelete:
		ib.applyDelete(n)
	}
}

func (ib *Inbox) applyInsert(n models.Notification) {
	id := n.ID.Hex()

	ib.mu.Lock()
	defer ib.mu.Unlock()

	// The initial fetch may already contain this row.
	if ib.seen[id] {
		return
	}
	ib.seen[id] = true
	ib.notifications = append([]models.Notification{n}, ib.notifications...)
	if !n.IsRead {
		ib.unread++
	}
}

func (ib *Inbox) applyUpdate(n models.Notification) {
	id := n.ID.Hex()

	ib.mu.Lock()
	defer ib.mu.Unlock()

	for i, existing := range ib.notifications {
		if existing.ID.Hex() != id {
			continue
		}
		if !existing.IsRead && n.IsRead && ib.unread > 0 {
			ib.unread--
		}
		ib.notifications[i] = n
		return
	}
}

func (ib *Inbox) applyDelete(n models.Notification) {
	id := n.ID.Hex()

	ib.mu.Lock()
	defer ib.mu.Unlock()

	for i, existing := range ib.notifications {
		if existing.ID.Hex() != id {
			continue
		}
		if !existing.IsRead && ib.unread > 0 {
			ib.unread--
		}
		ib.notifications = append(ib.notifications[:i], ib.notifications[i+1:]...)
		return
	}
}

func (ib *Inbox) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ib.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+ib.token)

	resp, err := ib.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (ib *Inbox) do(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+ib.token)

	resp, err := ib.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, req.URL.Path)
	}
	return nil
}
