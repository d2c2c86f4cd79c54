package feed

import (
	"sync"

	"github.com/louisbranch/splittab/internal/platform/errors"
)

// subscriptionBuffer is how many events a slow subscriber may lag before
// further events are dropped for it.
const subscriptionBuffer = 64

// Hub fans change events out to per-session subscribers. Publish never
// blocks: a subscriber that cannot keep up misses events and is expected to
// resync by reloading the session.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*Subscription]struct{}
	closed   bool
}

// Subscription is one subscriber's handle on a session feed. Events arrive
// on C until Unsubscribe or hub shutdown closes it.
type Subscription struct {
	C         <-chan ChangeEvent
	sessionID string
	events    chan ChangeEvent
	once      sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for one session's events.
func (h *Hub) Subscribe(sessionID string) (*Subscription, error) {
	if sessionID == "" {
		return nil, errors.New(errors.CodeFeedSubscriptionFailed, "session id is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New(errors.CodeFeedClosed, "feed hub is closed")
	}

	events := make(chan ChangeEvent, subscriptionBuffer)
	sub := &Subscription{
		C:         events,
		sessionID: sessionID,
		events:    events,
	}

	subs, ok := h.sessions[sessionID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.sessions[sessionID] = subs
	}
	subs[sub] = struct{}{}
	return sub, nil
}

// Unsubscribe removes the subscriber and closes its channel. It is safe to
// call more than once; after the first call no further events arrive.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	if subs, ok := h.sessions[sub.sessionID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.sessions, sub.sessionID)
		}
	}
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.events) })
}

// Publish delivers the event to every subscriber of its session. Events that
// fail validation are dropped at the door. Full subscriber buffers are
// skipped rather than blocking the writer.
func (h *Hub) Publish(event ChangeEvent) {
	if !event.Valid() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.sessions[event.SessionID] {
		select {
		case sub.events <- event:
		default:
		}
	}
}

// Close shuts the hub down, closing every subscriber channel. Publishing
// after Close is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.sessions
	h.sessions = make(map[string]map[*Subscription]struct{})
	h.mu.Unlock()

	for _, sessionSubs := range subs {
		for sub := range sessionSubs {
			sub.once.Do(func() { close(sub.events) })
		}
	}
}
