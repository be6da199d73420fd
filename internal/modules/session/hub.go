package session

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client is one websocket of a user. Only the writer goroutine touches conn for writes.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan Message
	once   sync.Once
	done   chan struct{}
}

func newClient(userID string, conn *websocket.Conn) *client {
	return &client{
		userID: userID,
		conn:   conn,
		send:   make(chan Message, 8),
		done:   make(chan struct{}),
	}
}

// enqueue drops the message when the client is gone or too slow.
func (c *client) enqueue(m Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub tracks open session streams. A user may have several (one per tab).
type Hub struct {
	connections map[string]map[*client]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) Register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.connections[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.connections[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if set, ok := h.connections[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.connections, c.userID)
		}
	}
	c.close()
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, set := range h.connections {
		n += len(set)
	}
	return n
}

// Close ends every stream; used on shutdown.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, set := range h.connections {
		for c := range set {
			c.close()
		}
		delete(h.connections, userID)
	}
}
