package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/updown-labs/updown-services/internal/socketsvc/ws"
)

type Handler struct {
	upgrader     websocket.Upgrader
	hub          *ws.Hub
	pushInterval time.Duration
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(hub *ws.Hub, pushInterval time.Duration) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		hub:          hub,
		pushInterval: pushInterval,
	}
	return h
}

// HandleWebSocket attaches a client to the live price feed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, conn)

	log.Infof("New WebSocket connection established: %s (%d connected)", socketId, h.hub.ConnectionCount())

	done := make(chan struct{})
	go h.readLoop(conn, socketId, done)
	go h.pushLoop(conn, socketId, done)
}

// readLoop drains the connection so close frames are seen; clients never
// send anything the feed acts on.
func (h *Handler) readLoop(conn *websocket.Conn, socketId string, done chan struct{}) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		close(done)
		conn.Close()
		h.hub.HandleDisconnect(socketId)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			return
		}
	}
}

// pushLoop sends the latest tick to one client on a fixed interval. The loop
// is independent per client and fully decoupled from round resolution.
func (h *Handler) pushLoop(conn *websocket.Conn, socketId string, done chan struct{}) {
	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			tick := h.hub.Latest()
			if tick == nil {
				continue // feed has not produced a sample yet
			}
			if err := conn.WriteJSON(tick); err != nil {
				log.Infof("stopping push loop for socket %s: %v", socketId, err)
				return
			}
		}
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "socket service is running at port " + os.Getenv("SOCKET_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}
