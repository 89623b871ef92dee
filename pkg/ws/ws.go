// Package ws pushes state changes to storefront pages over WebSocket
// (gorilla/websocket). Each connection belongs to one visitor; a change made
// by any request of that visitor reaches all of the visitor's open pages,
// which re-render from it.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	// in the /ws handler
//	ws.Upgrade(w, r, hub, visitorID)
//
//	// anywhere a visitor's state changed
//	hub.Publish(visitorID, ws.Frame{Event: "cart.changed", Data: lines})
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     AllowOrigins(nil),
}

// SetCheckOrigin replaces the origin checker used by Upgrade.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// AllowOrigins accepts requests without an Origin header, same-host pages
// and the listed origins.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Frame is one pushed message.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is one open page.
type Client struct {
	hub     *Hub
	visitor string
	conn    *websocket.Conn
	send    chan []byte
}

// readPump only watches for the close; pages never send anything useful.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "visitor", c.visitor, "error", err)
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
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

type delivery struct {
	visitor string
	data    []byte
}

// Hub tracks open pages per visitor.
type Hub struct {
	visitors   map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan delivery
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		visitors:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan delivery, 256),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.visitors {
				for c := range clients {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			if h.visitors[c.visitor] == nil {
				h.visitors[c.visitor] = make(map[*Client]struct{})
			}
			h.visitors[c.visitor][c] = struct{}{}
			metrics.LiveConnections.Inc()
			logger.Debug("ws: page connected", "visitor", c.visitor)

		case c := <-h.unregister:
			h.drop(c)

		case d := <-h.outbound:
			for c := range h.visitors[d.visitor] {
				select {
				case c.send <- d.data:
				default:
					h.drop(c)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, clients := range h.visitors {
				n += len(clients)
			}
			reply <- n
		}
	}
}

func (h *Hub) drop(c *Client) {
	clients, ok := h.visitors[c.visitor]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.visitors, c.visitor)
	}
	close(c.send)
	metrics.LiveConnections.Dec()
	logger.Debug("ws: page disconnected", "visitor", c.visitor)
}

// Publish queues f for every open page of visitor. It never blocks; when the
// hub is saturated the frame is dropped and pages catch up on next load.
func (h *Hub) Publish(visitor string, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		logger.Warn("ws: encode frame", "event", f.Event, "error", err)
		return
	}
	select {
	case h.outbound <- delivery{visitor: visitor, data: data}:
	default:
		logger.Warn("ws: hub saturated, frame dropped", "event", f.Event)
	}
}

// ClientCount returns the number of open pages across visitors. It needs
// Run and reports 0 once the hub has stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade turns the request into a WebSocket bound to visitor.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, visitor string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		return
	}
	c := &Client{hub: hub, visitor: visitor, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case hub.register <- c:
	case <-hub.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
