package notifications

import (
	"net/http"
	"sync"
	"time"

	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by CORS and the bearer token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection subscribed to a company room.
type Client struct {
	conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans notifications out to every connection of a company.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	stop       chan struct{}
	done       chan struct{}
	once       sync.Once
	log        *zap.Logger

	mu      sync.RWMutex
	clients int
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the room table until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			for _, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
			}
			h.rooms = map[string]map[*Client]bool{}
			h.setClients(0)
			return

		case c := <-h.register:
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.setClients(h.count())

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.broadcast:
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					h.log.Warn("slow websocket client dropped", zap.String("room", c.Room), zap.String("user_id", c.UserID))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	conns := h.rooms[c.Room]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.Room)
	}
	h.setClients(h.count())
}

func (h *Hub) count() int {
	n := 0
	for _, conns := range h.rooms {
		n += len(conns)
	}
	return n
}

func (h *Hub) setClients(n int) {
	h.mu.Lock()
	h.clients = n
	h.mu.Unlock()
}

// Clients reports how many connections are registered.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients
}

// Stop closes every client and waits for Run to return. It is safe to call twice.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Broadcast queues data for every connection in room. It never blocks once the hub
// has stopped.
func (h *Hub) Broadcast(room string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
	case <-h.stop:
	}
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stop:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// ServeWS serves GET /api/notifications/ws. Authentication and tenant binding happen in
// the wrapping middleware; the token arrives as ?access_token.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	room := middleware.CompanyFrom(r.Context())
	if room == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing X-Company-Id header")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	c := &Client{
		conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Room:   room,
		UserID: middleware.PrincipalFrom(r.Context()).UserID,
	}
	if !h.Register(c) {
		_ = conn.Close()
		return
	}
	go writePump(c)
	go readPump(c, h)
}

func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
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

// readPump discards client frames and unregisters the client once the connection drops.
func readPump(c *Client, h *Hub) {
	defer func() {
		h.Unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
