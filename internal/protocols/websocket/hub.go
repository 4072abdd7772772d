// Package websocket pushes community activity change events to connected
// clients so they can re-fetch the feed and leaderboard.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"missionhub/internal/metrics"
	"missionhub/pkg/logger"
)

const (
	maxMessageSize = 512
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 16
	maxClients     = 5000
)

// Event types
const (
	EventActivityChanged = "activity_changed"
	EventHello           = "hello"
)

// Event is the only message the server sends
type Event struct {
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans activity events out to every connected client. It satisfies
// core.FeedNotifier.
type Hub struct {
	clientsMu  sync.RWMutex
	clients    map[*Client]struct{}
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	metrics    *metrics.Metrics
	stop       chan struct{}
	stopOnce   sync.Once

	// lifeMu orders wg.Add for new pumps against Stop's Wait
	lifeMu  sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// Client is one websocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Event
	userID string
}

// NewHub starts the hub loop. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		metrics:    m,
		stop:       make(chan struct{}),
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case c := <-h.register:
			h.clientsMu.Lock()
			if len(h.clients) >= maxClients {
				h.clientsMu.Unlock()
				close(c.send)
				logrus.Warnf("websocket hub full, rejecting user_id=%s", c.userID)
				continue
			}
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.clientsMu.Unlock()
			h.gauge(n)
			logger.WebSocket("connected", n, c.userID)

		case c := <-h.unregister:
			h.remove(c)

		case ev := <-h.broadcast:
			h.clientsMu.RLock()
			var slow []*Client
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					slow = append(slow, c)
				}
			}
			h.clientsMu.RUnlock()
			// a client that cannot keep up is dropped; it re-fetches on reconnect
			for _, c := range slow {
				logrus.Warnf("dropping slow websocket client user_id=%s", c.userID)
				h.remove(c)
			}

		case <-h.stop:
			h.clientsMu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.clientsMu.Unlock()
			h.gauge(0)
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.clientsMu.Unlock()
	h.gauge(n)
	logger.WebSocket("disconnected", n, c.userID)
}

func (h *Hub) gauge(n int) {
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(n))
	}
}

// ActivityChanged queues an event for every client. It never blocks; when
// the queue is full the event is dropped since a pending one already tells
// clients to refresh.
func (h *Hub) ActivityChanged(_ context.Context, reason string) {
	ev := Event{Type: EventActivityChanged, Reason: reason, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- ev:
	case <-h.stop:
	default:
		logrus.Debugf("websocket broadcast queue full, dropping %s", reason)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Serve registers conn and runs its pumps until it disconnects
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		userID: userID,
	}
	c.send <- Event{Type: EventHello, Timestamp: time.Now().UTC()}

	h.lifeMu.Lock()
	if h.stopped {
		h.lifeMu.Unlock()
		conn.Close()
		return
	}
	h.wg.Add(2)
	h.lifeMu.Unlock()

	select {
	case h.register <- c:
	case <-h.stop:
		h.wg.Add(-2)
		conn.Close()
		return
	}

	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()
}

// Stop closes every client and waits for the pumps to exit
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		logrus.Info("stopping websocket hub")
		h.lifeMu.Lock()
		h.stopped = true
		h.lifeMu.Unlock()
		close(h.stop)
	})
	h.wg.Wait()
}

// readPump only services control frames; clients do not send data
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Debugf("websocket read error user_id=%s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logrus.Errorf("failed to marshal event: %v", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
