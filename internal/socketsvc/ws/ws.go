package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/updown-labs/updown-services/internal/comm"
)

// Hub tracks connected clients and the latest price tick received from the
// feed service. Each client has its own push loop reading Latest, so a slow
// client only ever misses ticks, it never backs up the feed.
type Hub struct {
	connMap sync.Map // socketId -> *websocket.Conn

	mu     sync.RWMutex
	latest *comm.PriceTick
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
}

func (h *Hub) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (h *Hub) HandleDisconnect(socketId string) {
	h.connMap.Delete(socketId)
}

// SetLatest overwrites the broadcast slot with a fresh tick.
func (h *Hub) SetLatest(tick comm.PriceTick) {
	h.mu.Lock()
	h.latest = &tick
	h.mu.Unlock()
}

// Latest returns the most recent tick, or nil if none arrived yet.
func (h *Hub) Latest() *comm.PriceTick {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// ConnectionCount reports how many clients are attached, for logging.
func (h *Hub) ConnectionCount() int {
	count := 0
	h.connMap.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}
