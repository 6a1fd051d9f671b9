package inspect

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ripplekit/ripple/pkg/ripple"
)

// Event is one runtime occurrence serialized to inspector clients.
type Event struct {
	// Type is one of "effect_run", "trigger", "flush_begin", "flush_end".
	Type string `json:"type"`

	// EffectID is set for effect_run events.
	EffectID uint64 `json:"effect_id,omitempty"`

	// Key is the triggered dependency key for trigger events.
	Key string `json:"key,omitempty"`

	// Fanout is the number of effects notified for trigger events.
	Fanout int `json:"fanout,omitempty"`

	// Jobs is the number of jobs run, for flush_end events.
	Jobs int `json:"jobs,omitempty"`

	// Error carries the flush error text, if any.
	Error string `json:"error,omitempty"`

	// Time is when the event occurred.
	Time time.Time `json:"time"`
}

// client is one connected inspector with a buffered outbound queue.
// A slow client drops events rather than stalling the runtime.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writeLoop drains the send queue to the socket.
func (c *client) writeLoop(writeTimeout time.Duration) {
	defer c.close()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Hub implements ripple.Probe, broadcasting every runtime event to all
// connected inspector clients as JSON. Install with ripple.SetProbe.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool

	logger *slog.Logger

	// sendBuffer is the per-client outbound queue depth.
	sendBuffer int

	writeTimeout time.Duration
}

// NewHub creates an inspector hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:      make(map[*client]bool),
		logger:       logger.With("component", "inspect"),
		sendBuffer:   256,
		writeTimeout: 10 * time.Second,
	}
}

// ClientCount returns the number of connected inspector clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// attach registers an upgraded connection and starts its write loop.
func (h *Hub) attach(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writeLoop(h.writeTimeout)
	return c
}

// detach removes a client.
func (h *Hub) detach(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// broadcast serializes ev and queues it to every client. Clients whose
// queue is full miss the event; the hub never blocks the reactive runtime.
func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("event marshal error", "error", err)
		return
	}

	for _, c := range targets {
		select {
		case c.send <- msg:
		default:
			// Queue full: drop rather than stall.
		}
	}
}

// EffectRan implements ripple.Probe.
func (h *Hub) EffectRan(id uint64) {
	h.broadcast(Event{Type: "effect_run", EffectID: id, Time: time.Now()})
}

// Triggered implements ripple.Probe.
func (h *Hub) Triggered(key string, n int) {
	h.broadcast(Event{Type: "trigger", Key: key, Fanout: n, Time: time.Now()})
}

// FlushBegan implements ripple.Probe.
func (h *Hub) FlushBegan() {
	h.broadcast(Event{Type: "flush_begin", Time: time.Now()})
}

// FlushEnded implements ripple.Probe.
func (h *Hub) FlushEnded(jobs int, err error) {
	ev := Event{Type: "flush_end", Jobs: jobs, Time: time.Now()}
	if err != nil {
		ev.Error = err.Error()
	}
	h.broadcast(ev)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// interface check
var _ ripple.Probe = (*Hub)(nil)
