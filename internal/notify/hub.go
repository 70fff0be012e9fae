package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/metrics"
)

const broadcastBufferSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub keeps the connected websocket clients and broadcasts events to them.
// Run owns the client set; everything else talks to it over channels.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	count      int
	countMu    sync.RWMutex
	logger     *logrus.Entry
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBufferSize),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "ws_hub"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.WithField("client_id", c.id).Debug("Websocket client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.WithField("client_id", c.id).Debug("Websocket client disconnected")
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.WithField("client_id", c.id).Warn("Websocket client too slow, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.countMu.Lock()
	h.count = n
	h.countMu.Unlock()
	metrics.UpdateWebsocketClients(n)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.count
}

// Publish queues an event for every connected client. Events are dropped
// when the broadcast buffer is full.
func (h *Hub) Publish(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).WithField("type", event.Type).Error("Failed to encode event")
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.WithField("type", event.Type).Warn("Broadcast buffer full, dropping event")
	}
}

// ServeHTTP upgrades the request to a websocket subscription
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
