// Package hub streams vehicle events and snapshots to websocket observers.
//
// One Hub goroutine owns the client set. ServeWs upgrades a request, and each
// client runs a read pump (to notice disconnects) and a write pump.
package hub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Message is the JSON envelope of everything sent over the socket.
type Message struct {
	Type    string `json:"type"` // "event" or "snapshot"
	Line    string `json:"line"`
	Payload any    `json:"payload"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	stopped    chan struct{}

	// ClientsChanged, when set, is called from the Run goroutine with the
	// client count after every change.
	ClientsChanged func(n int)
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		stopped:    make(chan struct{}),
	}
}

// Run is the hub event loop. It returns when done is closed, closing every
// client's send channel.
func (h *Hub) Run(done <-chan struct{}) {
	defer close(h.stopped)
	for {
		select {
		case <-done:
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			logrus.Debugf("ws: client registered (%d)", len(h.clients))
			h.changed()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.changed()
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer.
					h.drop(c)
					h.changed()
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) changed() {
	if h.ClientsChanged != nil {
		h.ClientsChanged(len(h.clients))
	}
}

// Broadcast queues a message for every client. It never blocks the caller:
// when the hub is backed up the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		logrus.Warnf("ws: marshal %s: %v", msg.Type, err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		logrus.Warnf("ws: broadcast buffer full, dropping %s", msg.Type)
	}
}

// BroadcastSnapshot sends a vehicle snapshot to every client.
func (h *Hub) BroadcastSnapshot(s sim.Snapshot) {
	h.Broadcast(Message{Type: "snapshot", Line: s.Line, Payload: s})
}

// Sink adapts the hub to a sim.EventSink for one line.
func (h *Hub) Sink(line string) sim.EventSink {
	return eventSink{h: h, line: line}
}

type eventSink struct {
	h    *Hub
	line string
}

func (s eventSink) Emit(ev sim.Event) {
	s.h.Broadcast(Message{Type: "event", Line: s.line, Payload: ev})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and registers the new client.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("ws upgrade: %v", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.stopped:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages; observers are read-only.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Debugf("ws read: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
