package ws

import (
	"sort"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 1000
	defaultBufferMaxAge = 1 * time.Hour

	bufferSweepInterval = 10 * time.Minute
)

// EventBuffer stores recent change events per tenant so a reconnecting
// client can catch up instead of doing a full refetch of its forest.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	maxAge time.Duration
	maxLen int
	stop   chan struct{}
}

// NewEventBuffer creates an EventBuffer with the given per-tenant limits.
// A background goroutine drops tenants whose buffers have gone entirely
// stale; Stop halts it.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		events: make(map[string][]Event),
		maxAge: maxAge,
		maxLen: maxLen,
		stop:   make(chan struct{}),
	}
	go eb.sweepLoop()
	return eb
}

// Stop halts the background sweep goroutine.
func (eb *EventBuffer) Stop() {
	close(eb.stop)
}

func (eb *EventBuffer) sweepLoop() {
	ticker := time.NewTicker(bufferSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case <-ticker.C:
			eb.evictStaleTenants()
		}
	}
}

// evictStaleTenants drops tenants whose newest buffered event is already
// past maxAge. Per-event trimming happens on Append.
func (eb *EventBuffer) evictStaleTenants() {
	cutoff := time.Now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for tenant, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, tenant)
		}
	}
}

// Append records an event for later replay, trimming entries that are past
// maxAge or beyond maxLen.
func (eb *EventBuffer) Append(tenantID string, event *Event) {
	cutoff := time.Now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	buf := eb.events[tenantID]

	expired := 0
	for expired < len(buf) && buf[expired].Time.Before(cutoff) {
		expired++
	}
	buf = append(buf[expired:], *event)

	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[tenantID] = buf
}

// Since returns the tenant's buffered events with ID greater than
// lastEventID, or nil when nothing newer is buffered.
func (eb *EventBuffer) Since(tenantID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[tenantID]

	// IDs are assigned by a per-tenant sequence, so the buffer is sorted.
	first := sort.Search(len(buf), func(i int) bool {
		return buf[i].ID > lastEventID
	})
	if first == len(buf) {
		return nil
	}

	// Copy so callers never alias the buffer's backing array.
	result := make([]Event, len(buf)-first)
	copy(result, buf[first:])
	return result
}

// OldestID returns the oldest buffered event ID for a tenant, or 0 if the
// buffer is empty.
func (eb *EventBuffer) OldestID(tenantID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if buf := eb.events[tenantID]; len(buf) > 0 {
		return buf[0].ID
	}
	return 0
}
