// Package push owns the single persistent WebSocket connection to the
// backend and fans inbound frames out to the notification and chat
// channels. Subscriptions do not survive a disconnect: every transition
// into the connected state re-issues the full subscription set.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/observability/metrics"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/session"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateActivating
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateActivating:
		return "activating"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ErrNotConnected is returned by Publish when the transport is down.
var ErrNotConnected = errors.New("push: transport not connected")

// Handler consumes the body of an inbound frame for one destination.
type Handler func(body json.RawMessage)

// Connector maintains exactly one logical connection to the push endpoint.
// Connect is idempotent: a call while a handshake is in flight or a
// connection is live is a no-op. There is no automatic retry; callers
// re-invoke Connect when they want another attempt.
type Connector struct {
	url     string
	dialer  *websocket.Dialer
	session *session.Session
	logger  *logging.Logger
	metrics *metrics.ClientMetrics

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	done     chan struct{}
	handlers map[string][]Handler

	writeMu sync.Mutex
}

// NewConnector creates a disconnected connector for the given endpoint.
func NewConnector(url string, sess *session.Session, logger *logging.Logger, m *metrics.ClientMetrics) *Connector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Connector{
		url:      url,
		dialer:   websocket.DefaultDialer,
		session:  sess,
		logger:   logger.Component("push"),
		metrics:  m,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for a destination. Handler registrations
// survive reconnects; the wire-level subscription is re-issued each time
// the connector enters the connected state.
func (c *Connector) Subscribe(destination string, h Handler) {
	c.mu.Lock()
	first := len(c.handlers[destination]) == 0
	c.handlers[destination] = append(c.handlers[destination], h)
	connected := c.state == StateConnected
	c.mu.Unlock()

	if first && connected {
		if err := c.writeFrame(Frame{Type: TypeSubscribe, Destination: destination}); err != nil {
			c.logger.Error("subscribe failed", "destination", destination, "error", err)
		}
	}
}

// Connect performs the transport handshake. No-op when already connected
// or when an activation attempt is in flight.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateActivating
	c.mu.Unlock()

	token, err := c.session.Token()
	if err != nil {
		c.failActivation()
		return fmt.Errorf("push: connect: %w", err)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.failActivation()
		c.logger.Error("handshake failed", "url", c.url, "error", err)
		return fmt.Errorf("push: dial %s: %w", c.url, err)
	}

	authBody, _ := json.Marshal(AuthFrame{Token: token})
	if err := conn.WriteJSON(Frame{Type: TypeAuth, Body: authBody}); err != nil {
		_ = conn.Close()
		c.failActivation()
		c.logger.Error("auth frame failed", "error", err)
		return fmt.Errorf("push: auth: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = StateConnected
	c.conn = conn
	c.done = done
	c.mu.Unlock()

	c.metrics.ObserveConnect("success")
	c.logger.Info("connected", "url", c.url)

	c.onEnterConnected()
	go c.readLoop(conn, done)
	return nil
}

func (c *Connector) failActivation() {
	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	c.metrics.ObserveConnect("failure")
}

// onEnterConnected re-issues the wire subscription for every registered
// destination. Private queues need a resolved user identity; without one
// they are skipped until the next connect.
func (c *Connector) onEnterConnected() {
	c.mu.Lock()
	destinations := make([]string, 0, len(c.handlers))
	for dest := range c.handlers {
		destinations = append(destinations, dest)
	}
	c.mu.Unlock()

	_, hasUser := c.session.CurrentUser()
	for _, dest := range destinations {
		if strings.HasPrefix(dest, "/user/") && !hasUser {
			c.logger.Warn("skipping private subscription, no authenticated user", "destination", dest)
			continue
		}
		if err := c.writeFrame(Frame{Type: TypeSubscribe, Destination: dest}); err != nil {
			c.logger.Error("subscribe failed", "destination", dest, "error", err)
		}
	}
}

// Disconnect tears the transport down cleanly. No-op when not connected.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	done := c.done
	c.state = StateDisconnected
	c.conn = nil
	c.done = nil
	c.mu.Unlock()

	close(done)
	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := conn.Close()
	c.logger.Info("disconnected")
	return err
}

// IsConnected reports whether the transport is currently usable.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected
}

// StatusDescription returns a diagnostic snapshot of the internal flags.
func (c *Connector) StatusDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("state=%s connected=%t activating=%t",
		c.state, c.state == StateConnected, c.state == StateActivating)
}

// Publish marshals payload and sends it to a server-side destination.
func (c *Connector) Publish(destination string, payload any) error {
	if !c.IsConnected() {
		c.metrics.ObservePublish(destination, "not_connected")
		return ErrNotConnected
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push: marshal publish body: %w", err)
	}
	if err := c.writeFrame(Frame{Type: TypeSend, Destination: destination, Body: body}); err != nil {
		c.metrics.ObservePublish(destination, "error")
		return err
	}
	c.metrics.ObservePublish(destination, "sent")
	return nil
}

func (c *Connector) writeFrame(frame Frame) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("push: write frame: %w", err)
	}
	return nil
}

func (c *Connector) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			select {
			case <-done:
				// Deliberate disconnect, already handled.
			default:
				c.logger.Error("transport error", "error", err)
				c.dropConnection(conn)
			}
			return
		}

		switch frame.Type {
		case TypeMessage:
			c.dispatch(frame)
		case TypeError:
			c.metrics.ObserveInbound(frame.Destination, "server_error")
			c.logger.Error("server error frame", "destination", frame.Destination, "body", string(frame.Body))
		default:
			c.metrics.ObserveInbound(frame.Destination, "unknown_type")
			c.logger.Warn("unknown frame type", "type", string(frame.Type))
		}
	}
}

// dropConnection flips state to disconnected after a mid-session failure.
// Only acts if conn is still the live connection.
func (c *Connector) dropConnection(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.conn = nil
	c.done = nil
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Connector) dispatch(frame Frame) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[frame.Destination]...)
	c.mu.Unlock()

	if len(handlers) == 0 {
		c.metrics.ObserveInbound(frame.Destination, "unhandled")
		c.logger.Warn("no handler for destination", "destination", frame.Destination)
		return
	}
	c.metrics.ObserveInbound(frame.Destination, "accepted")
	for _, h := range handlers {
		h(frame.Body)
	}
}
