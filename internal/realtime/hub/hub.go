package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

// ErrStopped is returned once the hub loop has exited
var ErrStopped = errors.New("hub stopped")

// Pages is the page each browser is looking at, per view
type Pages struct {
	Active  int `json:"active"`
	History int `json:"history"`
}

// RenderFunc builds the message a client with the given pages should see
type RenderFunc func(Pages) ([]byte, error)

// Hub fans rendered view updates out to browser sockets.
// Only the Run goroutine mutates the client set.
type Hub struct {
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	direct     chan *Client
	refresh    chan struct{}
	done       chan struct{}

	render   RenderFunc
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// Option customises a Hub
type Option func(*Hub)

// WithCheckOrigin replaces the upgrader's origin check
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// New creates a hub that renders messages with render
func New(render RenderFunc, log *logger.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *Client, 64),
		refresh:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		render:     render,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is enforced by the router
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.Component("hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.clientsMu.Unlock()
			metrics.HubClients.Set(0)
			h.logger.Info("Hub stopped")
			return

		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.clientsMu.Unlock()
			metrics.HubClients.Set(float64(n))
			h.logger.WithFields(map[string]interface{}{
				"client_id": c.id,
				"total":     n,
			}).Info("Browser connected")
			h.deliver(c)

		case c := <-h.unregister:
			h.drop(c, "Browser disconnected")

		case c := <-h.direct:
			h.deliver(c)

		case <-h.refresh:
			h.clientsMu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.clientsMu.RUnlock()
			for _, c := range targets {
				h.deliver(c)
			}
		}
	}
}

// Refresh asks every client to be re-rendered. Calls coalesce.
func (h *Hub) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of connected browsers
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the browser
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &Client{
		id:    uuid.NewString(),
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		pages: Pages{Active: 1, History: 1},
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// deliver renders for one client; a client that cannot keep up is dropped
func (h *Hub) deliver(c *Client) {
	h.clientsMu.RLock()
	_, ok := h.clients[c]
	h.clientsMu.RUnlock()
	if !ok {
		return
	}

	msg, err := h.render(c.Pages())
	if err != nil {
		h.logger.WithError(err).Error("Failed to render views")
		return
	}

	select {
	case c.send <- msg:
	default:
		h.drop(c, "Dropping slow browser")
	}
}

func (h *Hub) drop(c *Client, reason string) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.clientsMu.Unlock()

	metrics.HubClients.Set(float64(n))
	h.logger.WithFields(map[string]interface{}{
		"client_id": c.id,
		"total":     n,
	}).Info(reason)
}

// pageRequest is the only message browsers send
type pageRequest struct {
	Op   string `json:"op"`
	View string `json:"view"`
	Page int    `json:"page"`
}

// Client is one browser socket
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	pagesMu sync.Mutex
	pages   Pages
}

// ID returns the client's identifier
func (c *Client) ID() string {
	return c.id
}

// Pages returns the client's current pages
func (c *Client) Pages() Pages {
	c.pagesMu.Lock()
	defer c.pagesMu.Unlock()
	return c.pages
}

func (c *Client) setPage(view string, page int) bool {
	if page < 1 {
		page = 1
	}
	c.pagesMu.Lock()
	defer c.pagesMu.Unlock()

	switch view {
	case "active":
		c.pages.Active = page
	case "history":
		c.pages.History = page
	default:
		return false
	}
	return true
}

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
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Debug("Browser read error")
			}
			return
		}

		var req pageRequest
		if err := json.Unmarshal(message, &req); err != nil || req.Op != "page" {
			c.hub.logger.WithField("client_id", c.id).Debug("Ignoring browser message")
			continue
		}
		if !c.setPage(req.View, req.Page) {
			continue
		}

		select {
		case c.hub.direct <- c:
		case <-c.hub.done:
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
