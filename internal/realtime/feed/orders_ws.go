package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/symfx/internal/metrics"
	"github.com/wonny/symfx/pkg/logger"
)

const (
	// DefaultReconnectDelay is the fixed pause between reconnect attempts
	DefaultReconnectDelay = 5 * time.Second

	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// EventType classifies what the feed hands to its handler
type EventType string

const (
	EventConnected    EventType = "connected"
	EventMessage      EventType = "message"
	EventDisconnected EventType = "disconnected"
)

// Event is one item of the feed's output sequence
type Event struct {
	Type    EventType
	Payload json.RawMessage // set for EventMessage
	Err     error           // cause of EventDisconnected, if any
	At      time.Time
}

// Handler receives events one at a time, in arrival order
type Handler func(Event)

// Dialer opens websocket connections; *websocket.Dialer satisfies it
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Option customises an OrderFeed
type Option func(*OrderFeed)

// WithReconnectDelay overrides the fixed reconnect delay
func WithReconnectDelay(d time.Duration) Option {
	return func(f *OrderFeed) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithDialer swaps the websocket dialer
func WithDialer(d Dialer) Option {
	return func(f *OrderFeed) {
		f.dialer = d
	}
}

// WithHeader sets headers sent on every dial (cookies, auth)
func WithHeader(h http.Header) Option {
	return func(f *OrderFeed) {
		f.header = h
	}
}

// OrderFeed owns the one connection to the backend order stream.
// Failures never escape: they surface as EventDisconnected followed by a
// reconnect attempt after a fixed delay, forever, until Close.
// ⭐ SSOT: 주문 피드 연결은 프로세스당 하나, 이 클라이언트에서만
type OrderFeed struct {
	url     string
	handler Handler
	dialer  Dialer
	header  http.Header
	delay   time.Duration
	logger  *logger.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected atomic.Bool
	attempts  atomic.Int64

	lifeMu  sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewOrderFeed creates a feed client for url
func NewOrderFeed(url string, handler Handler, log *logger.Logger, opts ...Option) *OrderFeed {
	f := &OrderFeed{
		url:     url,
		handler: handler,
		dialer:  websocket.DefaultDialer,
		delay:   DefaultReconnectDelay,
		logger:  log.Component("order_feed"),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start launches the connection loop. It does not wait for the first
// connection; a failed first dial is handled like any later disconnect.
func (f *OrderFeed) Start(ctx context.Context) {
	f.lifeMu.Lock()
	defer f.lifeMu.Unlock()

	if f.started || f.closed {
		return
	}
	f.started = true

	ctx, f.cancel = context.WithCancel(ctx)
	f.logger.WithField("url", f.url).Info("Starting order feed")
	go f.run(ctx)
}

// Close cancels any pending reconnect, closes the socket and waits for the
// loop to exit. Safe to call more than once, and before Start.
func (f *OrderFeed) Close() {
	f.lifeMu.Lock()
	if f.closed {
		f.lifeMu.Unlock()
		<-f.doneCh
		return
	}
	f.closed = true
	started := f.started
	f.lifeMu.Unlock()

	if !started {
		close(f.doneCh)
		return
	}

	f.logger.Info("Stopping order feed")
	f.cancel()
	f.closeConn()
	<-f.doneCh
}

// Done is closed once the loop has exited
func (f *OrderFeed) Done() <-chan struct{} {
	return f.doneCh
}

// Connected reports whether the socket is currently open
func (f *OrderFeed) Connected() bool {
	return f.connected.Load()
}

// Attempts returns how many dials have been made so far
func (f *OrderFeed) Attempts() int64 {
	return f.attempts.Load()
}

// run is the only goroutine that dials, so at most one reconnect timer exists
func (f *OrderFeed) run(ctx context.Context) {
	defer close(f.doneCh)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			metrics.FeedReconnects.Inc()
		}

		err := f.session(ctx)
		if ctx.Err() != nil {
			return
		}

		f.emit(Event{Type: EventDisconnected, Err: err})
		f.logger.WithFields(map[string]interface{}{
			"delay": f.delay.String(),
			"error": errString(err),
		}).Warn("Order feed disconnected, attempting reconnect")

		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials once and reads until the connection fails
func (f *OrderFeed) session(ctx context.Context) error {
	f.attempts.Add(1)

	conn, _, err := f.dialer.DialContext(ctx, f.url, f.header)
	if err != nil {
		return err
	}

	f.connMu.Lock()
	if ctx.Err() != nil {
		// Close ran between dial and here
		f.connMu.Unlock()
		conn.Close()
		return ctx.Err()
	}
	f.conn = conn
	f.connMu.Unlock()

	f.connected.Store(true)
	metrics.FeedConnected.Set(1)
	f.logger.Info("Order feed connected")
	f.emit(Event{Type: EventConnected})

	defer func() {
		f.connected.Store(false)
		metrics.FeedConnected.Set(0)
		f.closeConn()
	}()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go f.pingLoop(conn, stopPing)

	return f.readLoop(conn)
}

func (f *OrderFeed) readLoop(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if !json.Valid(message) {
			metrics.FeedMessages.WithLabelValues("malformed").Inc()
			f.logger.WithField("bytes", len(message)).Warn("Dropping malformed order feed message")
			continue
		}

		f.logger.WithField("bytes", len(message)).Debug("Received order update")
		f.emit(Event{Type: EventMessage, Payload: json.RawMessage(message)})
	}
}

func (f *OrderFeed) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				f.logger.WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}

func (f *OrderFeed) closeConn() {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}

func (f *OrderFeed) emit(ev Event) {
	if f.handler == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	f.handler(ev)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
