package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

var ErrHubClosed = errors.New("hub closed")

// Hub fans live events out to subscribed users. Delivery is best-effort: a
// publish to a user with no open streams is dropped, and a stream whose
// buffer is full gets disconnected instead of blocking the publisher.
// Clients reconcile missed events on reconnect by refetching.
type Hub struct {
	mu      sync.RWMutex
	streams map[string]map[*Stream]struct{} // userID -> open streams
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		streams: make(map[string]map[*Stream]struct{}),
	}
}

// Subscribe registers a new sink for userID. Multiple streams per user are
// multiplexed; every one of them receives every publish.
func (h *Hub) Subscribe(userID string) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	s := newStream(userID)
	if _, ok := h.streams[userID]; !ok {
		h.streams[userID] = make(map[*Stream]struct{})
	}
	h.streams[userID][s] = struct{}{}

	l := log.L()
	l.Debug().Str(log.FieldUserID, userID).Int("streams", len(h.streams[userID])).Msg("stream subscribed")
	return s, nil
}

// Unsubscribe removes a stream. Calling it twice, or with a stream the hub
// already disconnected, is a no-op.
func (h *Hub) Unsubscribe(userID string, s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, s)
}

func (h *Hub) removeLocked(userID string, s *Stream) {
	set, ok := h.streams[userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.streams, userID)
	}
	close(s.done)

	l := log.L()
	l.Debug().Str(log.FieldUserID, userID).Msg("stream unsubscribed")
}

// Publish sends an event to every open stream of userID. The payload is
// JSON-encoded once and shared across sinks.
func (h *Hub) Publish(userID, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.streams[userID]
	if !ok {
		return nil
	}

	ev := Event{Name: event, Data: data}
	for s := range set {
		select {
		case s.Send <- ev:
		default:
			// Slow consumer: drop the stream, not the event loop.
			h.removeLocked(userID, s)
			l := log.L()
			l.Warn().Str(log.FieldUserID, userID).Str(log.FieldEvent, event).Msg("stream buffer full, disconnected")
		}
	}
	return nil
}

// StreamCount reports how many open streams a user has.
func (h *Hub) StreamCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[userID])
}

// Close disconnects every stream and rejects further subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.streams {
		for s := range set {
			close(s.done)
		}
		delete(h.streams, userID)
	}
}
