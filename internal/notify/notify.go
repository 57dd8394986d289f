// Package notify delivers user-facing outcome messages.
package notify

import (
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Sink receives notifications. Delivery is fire-and-forget.
type Sink interface {
	Notify(kind Kind, message string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(kind Kind, message string)

func (f SinkFunc) Notify(kind Kind, message string) { f(kind, message) }

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(kind Kind, message string) {
	for _, s := range m {
		s.Notify(kind, message)
	}
}

// LogSink writes notifications to a logger.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Notify(kind Kind, message string) {
	switch kind {
	case KindError:
		s.Logger.Warnf("[Notify %s] %s", kind, message)
	default:
		s.Logger.Infof("[Notify %s] %s", kind, message)
	}
}

// Notification is a delivered message with a monotonically increasing id.
type Notification struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hub keeps a bounded history of notifications for polling and pushes new
// ones to subscribers. Slow subscribers miss messages rather than block.
type Hub struct {
	mu          sync.RWMutex
	history     []Notification
	size        int
	nextID      int64
	subscribers map[int]chan Notification
	nextSub     int
	now         func() time.Time
}

// NewHub creates a hub that remembers the last size notifications.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 50
	}
	return &Hub{
		size:        size,
		subscribers: make(map[int]chan Notification),
		now:         time.Now,
	}
}

// Notify records and broadcasts a notification.
func (h *Hub) Notify(kind Kind, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	n := Notification{
		ID:        h.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: h.now(),
	}

	h.history = append(h.history, n)
	if len(h.history) > h.size {
		h.history = append([]Notification(nil), h.history[len(h.history)-h.size:]...)
	}

	for _, ch := range h.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
}

// Since returns retained notifications with an id greater than after, oldest first.
func (h *Hub) Since(after int64) []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := []Notification{}
	for _, n := range h.history {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	ch := make(chan Notification, 16)
	h.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}
}
