package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

const writeWait = 10 * time.Second

type Message struct {
	Event   string      `json:"event"`
	OrderID uint        `json:"order_id,omitempty"`
	At      time.Time   `json:"at"`
	Data    interface{} `json:"data"`
}

// Hub menampung semua koneksi dashboard admin dan menyiarkan event order dan pembayaran.
type Hub struct {
	clients map[*websocket.Conn]uint // conn -> admin user id
	mutex   sync.Mutex
}

var _ services.Notifier = (*Hub)(nil)

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]uint)}
}

// Register menambahkan connection ke hub
func (h *Hub) Register(conn *websocket.Conn, userID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = userID
}

// Unregister melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Serve registers conn and blocks until the client disconnects. Incoming messages are ignored.
func (h *Hub) Serve(conn *websocket.Conn, userID uint) {
	h.Register(conn, userID)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends ev to every connected dashboard. Clients that fail a write are dropped.
func (h *Hub) Broadcast(ev services.Event) {
	data, err := json.Marshal(Message{Event: ev.Type, OrderID: ev.OrderID, At: ev.At, Data: ev.Data})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, userID := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Errorf("Error sending message to admin %d: %v", userID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
