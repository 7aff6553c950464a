package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/poorbengunn/nostr-dojo/core"
	"github.com/poorbengunn/nostr-dojo/x/store"
)

var errEmptyFrame = errors.New("empty frame")

// Connection wraps a websocket with a write lock and its subscription set.
// The read loop is the only reader; writers (read loop responses and the
// fan-out goroutine) serialize on the mutex.
type Connection struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	subs map[string][]core.Filter
}

func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		subs: make(map[string][]core.Filter),
	}
}

func (c *Connection) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// Manager tracks live connections and bridges accepted events from the
// store's redis channel to matching subscriptions.
type Manager interface {
	Register(conn *Connection)
	Unregister(conn *Connection)
	Subscribe(conn *Connection, subID string, filters []core.Filter)
	Unsubscribe(conn *Connection, subID string)
	CurrentConnectionCount() int64
	CurrentSubscriptionCount() int64
}

type manager struct {
	rdb *redis.Client

	mu    sync.RWMutex
	conns map[*Connection]bool
}

func NewManager(rdb *redis.Client) Manager {
	m := &manager{
		rdb:   rdb,
		conns: make(map[*Connection]bool),
	}
	go m.fanoutRoutine()
	return m
}

func (m *manager) Register(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn] = true
}

func (m *manager) Unregister(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

func (m *manager) Subscribe(conn *Connection, subID string, filters []core.Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn.subs[subID] = filters
}

func (m *manager) Unsubscribe(conn *Connection, subID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(conn.subs, subID)
}

func (m *manager) CurrentConnectionCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.conns))
}

func (m *manager) CurrentSubscriptionCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for conn := range m.conns {
		count += int64(len(conn.subs))
	}
	return count
}

// fanoutRoutine delivers announced events to every matching subscription.
// A failed write only loses that client's delivery. Writes are synchronous
// and carry no deadline, so a slow client delays delivery to the others.
func (m *manager) fanoutRoutine() {
	ctx := context.Background()
	pubsub := m.rdb.Subscribe(ctx, store.EventChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			slog.Error("failed to receive pubsub message", slog.String("error", err.Error()))
			return
		}

		var ev core.Event
		err = json.Unmarshal([]byte(msg.Payload), &ev)
		if err != nil {
			slog.Error("failed to unmarshal announced event", slog.String("error", err.Error()))
			continue
		}

		m.Deliver(ev)
	}
}

// Deliver writes the event to every subscription whose filter set matches.
func (m *manager) Deliver(ev core.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for conn := range m.conns {
		for subID, filters := range conn.subs {
			if !matchesAny(ev, filters) {
				continue
			}
			err := conn.WriteJSON([]any{MessageEvent, subID, ev})
			if err != nil {
				slog.Debug("failed to deliver event", slog.String("error", err.Error()))
			}
		}
	}
}

func matchesAny(ev core.Event, filters []core.Filter) bool {
	for _, f := range filters {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}
