// Package ws delivers forest change events to WebSocket subscribers. Each
// tenant sees only its own events; sequence IDs let a reconnecting client
// request replay of anything it missed.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/metrics"
)

// Hub limits.
const (
	broadcastBuffer     = 256
	registerBuffer      = 64
	maxClients          = 1000
	maxClientsPerTenant = 50

	// maxBroadcastPayload caps a single notification payload (4 KB).
	maxBroadcastPayload = 4096

	// drainTimeout is how long the hub waits for clients to flush on shutdown.
	drainTimeout = 3 * time.Second

	drainPollInterval = 50 * time.Millisecond
)

// tenantBroadcast is sent through the broadcast channel to the Run goroutine.
type tenantBroadcast struct {
	tenantID string
	msg      []byte
}

// Hub manages active WebSocket clients and fans forest change events out to
// the clients of the owning tenant. All client map mutations happen
// exclusively in the Run goroutine.
type Hub struct {
	clients     map[*Client]bool
	tenantCount map[string]int // O(1) per-tenant connection counting
	register    chan *Client
	unregister  chan *Client
	broadcast   chan tenantBroadcast
	shutdown    chan struct{} // signals Run to begin graceful drain
	done        chan struct{} // closed when Run has finished draining
	count       atomic.Int64
	log         *logrus.Logger
	seq         *EventSequence
	buffer      *EventBuffer
}

// NewHub creates a hub with a fresh sequence and replay buffer.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		tenantCount: make(map[string]int),
		register:    make(chan *Client, registerBuffer),
		unregister:  make(chan *Client, registerBuffer),
		broadcast:   make(chan tenantBroadcast, broadcastBuffer),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		log:         log,
		seq:         NewEventSequence(),
		buffer:      NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// Run is the hub event loop; callers start it as a goroutine. It exits once
// Shutdown is called or ctx is cancelled, after draining clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return
		case client := <-h.register:
			h.admit(client)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}
			h.updateCount()
			h.log.WithField("total", len(h.clients)).Info("client unregistered")
		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

// admit accepts or rejects a newly registered client against the global and
// per-tenant caps. Run goroutine only.
func (h *Hub) admit(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		client.closeSend()
		return
	}
	if h.tenantCount[client.TenantID] >= maxClientsPerTenant {
		h.log.WithField("tenant_id", client.TenantID).Warn("per-tenant connection limit reached, dropping client")
		client.closeSend()
		return
	}

	h.clients[client] = true
	h.tenantCount[client.TenantID]++
	h.updateCount()
	h.log.WithField("total", len(h.clients)).Info("client registered")
}

// deliver fans one broadcast out to the owning tenant's clients. Run
// goroutine only.
func (h *Hub) deliver(b tenantBroadcast) {
	for client := range h.clients {
		if client.TenantID != b.tenantID {
			continue
		}
		select {
		case client.send <- b.msg:
		default:
			// Slow client, drop it rather than blocking the loop.
			h.remove(client)
		}
	}
	h.updateCount()
}

// remove deletes a client from the maps and closes its send channel.
// Run goroutine only.
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.tenantCount[client.TenantID]--
	if h.tenantCount[client.TenantID] <= 0 {
		delete(h.tenantCount, client.TenantID)
	}
}

// updateCount refreshes the connection counter and gauge.
func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// BroadcastToTenant queues a message for the given tenant's clients.
// Oversized payloads and a full broadcast channel both drop the message
// with a warning; the actual send happens in the Run goroutine.
func (h *Hub) BroadcastToTenant(tenantID string, msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"tenant_id":    tenantID,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")
		return
	}
	select {
	case h.broadcast <- tenantBroadcast{tenantID: tenantID, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent assigns a sequence ID, stores the event in the replay
// buffer, and broadcasts it to all clients of the given tenant.
func (h *Hub) BroadcastEvent(eventType, tenantID string, data json.RawMessage) {
	evt := Event{
		Type:     eventType,
		ID:       h.seq.Next(tenantID),
		TenantID: tenantID,
		Data:     data,
		Time:     time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.buffer.Append(tenantID, &evt)
	h.BroadcastToTenant(tenantID, msg)
}

// Shutdown asks the Run loop to drain and blocks until it has finished.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients notifies every client of the shutdown, waits up to
// drainTimeout for send buffers to empty, then closes all connections.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

wait:
	for !h.sendBuffersEmpty() {
		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.tenantCount = make(map[string]int)
	h.count.Store(0)
	metrics.WSConnections.Set(0)
}

func (h *Hub) sendBuffersEmpty() bool {
	for client := range h.clients {
		if len(client.send) > 0 {
			return false
		}
	}
	return true
}

// ReplayEvents sends buffered events since lastEventID to the client.
// Returns false if the requested ID has already been evicted from the
// buffer, meaning the client must do a full refresh.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(client.TenantID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest {
		return false
	}

	for _, evt := range h.buffer.Since(client.TenantID, lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			return true // channel full, stop replay
		}
	}
	return true
}
