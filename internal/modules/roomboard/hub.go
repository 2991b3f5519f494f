package roomboard

import (
	"encoding/json"
	"sync"
	"time"

	"tierraalta/internal/events"
	"tierraalta/internal/logging"
	"tierraalta/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Message is what board clients receive.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// client is a single staff WebSocket connection.
type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans room and reservation events out to every connected board.
// A staff member may keep several boards open.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *zerolog.Logger
}

func NewHub(log *zerolog.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), log: logging.Component(log, "room_board")}
}

// Subscribe wires the hub to the event types shown on the board.
func (h *Hub) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventRoomStatusChanged, h.HandleEvent)
	bus.Subscribe(events.EventReservationCreated, h.HandleEvent)
	bus.Subscribe(events.EventReservationStatusChanged, h.HandleEvent)
}

// HandleEvent forwards a bus event to all boards.
func (h *Hub) HandleEvent(e *events.Event) error {
	data, err := json.Marshal(Message{Type: e.Type, Payload: e.Payload, CreatedAt: e.CreatedAt})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow board, it will resync on reconnect.
			h.log.Warn().Int64("user_id", c.userID).Msg("room board client lagging, event dropped")
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetBoardClients(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetBoardClients(n)
}

// Count returns the number of connected boards.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every board.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.SetBoardClients(0)
}

// serve registers conn, queues the initial snapshot and blocks until the
// client goes away.
func (h *Hub) serve(conn *websocket.Conn, userID int64, snapshot []byte) {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	if snapshot != nil {
		c.send <- snapshot
	}
	h.register(c)
	h.log.Info().Int64("user_id", userID).Msg("room board connected")

	go h.writePump(c)
	h.readPump(c)
	h.log.Info().Int64("user_id", userID).Msg("room board disconnected")
}

// readPump only drains control frames; boards do not send commands.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Int64("user_id", c.userID).Msg("room board read failed")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
