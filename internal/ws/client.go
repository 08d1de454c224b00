package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout     = 10 * time.Second
	wsReadLimit      = 4096
	clientSendBuffer = 256

	// Connections are cut after maxConnLifetime regardless of activity.
	// Auth freshness comes from the periodic key re-validation below.
	maxConnLifetime      = 4 * time.Hour
	tokenRefreshInterval = 15 * time.Minute
	tokenRefreshTimeout  = 10 * time.Second

	pingInterval   = 30 * time.Second
	pingTimeout    = 10 * time.Second
	maxMissedPongs = int32(2)
)

// TenantValidator checks that an API key still maps to a live tenant.
type TenantValidator interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// Client wraps a single WebSocket connection managed by the Hub. A client
// receives the change events of exactly one tenant.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	TenantID    string
	apiKey      string
	validator   TenantValidator
	closeOnce   sync.Once
	connectedAt time.Time
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// NewClient wraps conn in a Client attached to hub. The apiKey is kept for
// periodic re-validation against validator.
func NewClient(hub *Hub, conn *websocket.Conn, validator TenantValidator, apiKey string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
	}
}

// ReadPump consumes messages from the connection until it closes. The only
// meaningful inbound message is a subscribe request asking for replay.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, msgBytes, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(ctx, msgBytes)
	}
}

// handleMessage processes one inbound message. A subscribe request triggers
// replay from the event buffer; if the requested events have already been
// evicted, the client is told to do a full refresh instead.
func (c *Client) handleMessage(_ context.Context, msgBytes []byte) {
	var msg struct {
		Type        string `json:"type"`
		LastEventID uint64 `json:"last_event_id"`
	}
	if err := json.Unmarshal(msgBytes, &msg); err != nil {
		return
	}

	if msg.Type != "subscribe" {
		return
	}

	if c.hub.ReplayEvents(c, msg.LastEventID) {
		return
	}

	resetMsg, err := json.Marshal(ResetMsg{
		Type:   "reset",
		Reason: "requested events no longer available, perform full refresh",
	})
	if err != nil {
		return
	}
	select {
	case c.send <- resetMsg:
	default:
	}
}

// WritePump drains the send channel onto the connection. It also owns the
// keepalive pings, the connection lifetime cap, and the periodic API key
// re-validation.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetimeTimer := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetimeTimer.Stop()

	refreshTicker := time.NewTicker(tokenRefreshInterval)
	defer refreshTicker.Stop()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var missedPongs atomic.Int32

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if !c.writeMessage(ctx, msg) {
				return
			}
		case <-pingTicker.C:
			if !c.ping(ctx, &missedPongs) {
				return
			}
		case <-refreshTicker.C:
			if !c.refreshToken(ctx) {
				return
			}
		case <-lifetimeTimer.C:
			c.log.Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return
		}
	}
}

func (c *Client) writeMessage(ctx context.Context, msg []byte) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	err := c.conn.Write(writeCtx, websocket.MessageText, msg)
	cancel()

	if err != nil {
		c.log.WithError(err).Debug("write failed")

		return false
	}

	return true
}

// ping sends a keepalive ping. It reports false once maxMissedPongs
// consecutive pings have gone unanswered.
func (c *Client) ping(ctx context.Context, missedPongs *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err != nil {
		if missedPongs.Add(1) >= maxMissedPongs {
			c.log.WithField("missed", maxMissedPongs).Debug("closing: consecutive missed pongs")

			return false
		}

		return true
	}

	missedPongs.Store(0)

	return true
}

// refreshToken re-validates the API key, reporting false when the key no
// longer resolves to a tenant.
func (c *Client) refreshToken(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}

	refreshCtx, cancel := context.WithTimeout(ctx, tokenRefreshTimeout)
	_, err := c.validator.GetTenantByAPIKey(refreshCtx, c.apiKey)
	cancel()

	if err != nil {
		c.log.Info("closing WebSocket: token refresh failed")
		c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // best-effort

		return false
	}

	return true
}
