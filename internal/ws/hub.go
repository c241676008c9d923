package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the membership registry: one room per tournament id, one room per
// "field:<id>" key, plus the set of every open connection for the
// broadcast-to-everyone path. Joining an already-joined room is a no-op.
type Hub struct {
	rooms sync.Map // room key -> *room

	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func NewHub() *Hub { return &Hub{conns: make(map[*clientConn]struct{})} }

func (h *Hub) track(c *clientConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

// untrack removes the connection from the global set and from every room it
// joined. Called once when the reader loop exits.
func (h *Hub) untrack(c *clientConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()

	h.rooms.Range(func(key, v any) bool {
		r := v.(*room)
		r.remove(c)
		if r.empty() {
			h.rooms.Delete(key)
		}
		return true
	})
}

func (h *Hub) join(key string, c *clientConn) {
	r, _ := h.rooms.LoadOrStore(key, newRoom())
	r.(*room).add(c)
}

func (h *Hub) leave(key string, c *clientConn) {
	if v, ok := h.rooms.Load(key); ok {
		r := v.(*room)
		r.remove(c)
		if r.empty() {
			h.rooms.Delete(key)
		}
	}
}

// BroadcastRoom fans a prepared frame out to one room. A missing room is a
// silent no-op.
func (h *Hub) BroadcastRoom(key string, msg []byte) {
	if v, ok := h.rooms.Load(key); ok {
		v.(*room).broadcast(msg)
	}
}

// BroadcastAll fans a prepared frame out to every open connection.
func (h *Hub) BroadcastAll(msg []byte) {
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.write(websocket.TextMessage, msg)
	}
}
