// Package hub fans editor notifications out to Server-Sent Events clients.
//
// Every message carries an increasing id and the notification type as the
// SSE event name. The most recent messages are kept so a client that
// reconnects with Last-Event-ID receives what it missed.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeepAlive is the interval between keep-alive comments on idle streams.
var KeepAlive = 30 * time.Second

// HistorySize is the number of messages kept for replay.
const HistorySize = 128

type message struct {
	id    uint64
	frame []byte
}

type subscriber struct {
	id     string
	after  uint64 // replay history newer than this id
	frames chan []byte
}

type published struct {
	name string
	v    any
}

// Hub owns the SSE subscribers. Subscribers are only added, removed and
// written to by Run.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	history []message
	lastID  uint64

	join    chan *subscriber
	leave   chan *subscriber
	publish chan published
	done    chan struct{}
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		subs:    make(map[*subscriber]struct{}),
		join:    make(chan *subscriber),
		leave:   make(chan *subscriber),
		publish: make(chan published, 256),
		done:    make(chan struct{}),
	}
}

// Run delivers published notifications until ctx is cancelled, then closes
// every open stream.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case s := <-h.join:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			for _, m := range h.history {
				if m.id > s.after {
					h.deliver(s, m.frame)
				}
			}
			n := len(h.subs)
			h.mu.Unlock()
			log.Printf("SSE client connected: %s (total: %d)", s.id, n)

		case s := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.frames)
			}
			n := len(h.subs)
			h.mu.Unlock()
			log.Printf("SSE client disconnected: %s (total: %d)", s.id, n)

		case p := <-h.publish:
			data, err := json.Marshal(p.v)
			if err != nil {
				log.Printf("Dropping %s notification: %v", p.name, err)
				continue
			}

			h.mu.Lock()
			h.lastID++
			m := message{id: h.lastID, frame: encode(h.lastID, p.name, data)}
			h.history = append(h.history, m)
			if len(h.history) > HistorySize {
				h.history = h.history[len(h.history)-HistorySize:]
			}
			for s := range h.subs {
				h.deliver(s, m.frame)
			}
			h.mu.Unlock()
		}
	}
}

func encode(id uint64, name string, data []byte) []byte {
	if name == "" {
		return fmt.Appendf(nil, "id: %d\ndata: %s\n\n", id, data)
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", id, name, data)
}

// deliver never blocks; a subscriber with a full queue misses the frame.
func (h *Hub) deliver(s *subscriber, frame []byte) {
	select {
	case s.frames <- frame:
	default:
		log.Printf("SSE client %s is slow, skipping message", s.id)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		close(s.frames)
		delete(h.subs, s)
	}
	close(h.done)
}

// Broadcast queues v, encoded as JSON, for every client under the event
// name. It never blocks; when the queue is full the notification is dropped.
func (h *Hub) Broadcast(name string, v any) {
	select {
	case h.publish <- published{name: name, v: v}:
	default:
		log.Printf("Broadcast queue full, dropping %s notification", name)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// LastID returns the id of the most recent message.
func (h *Hub) LastID() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastID
}

// ServeHTTP streams notifications to one client until it goes away or the
// hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	s := &subscriber{
		id:     uuid.NewString(),
		frames: make(chan []byte, 64),
	}
	if last := r.Header.Get("Last-Event-ID"); last != "" {
		after, err := strconv.ParseUint(last, 10, 64)
		if err != nil {
			http.Error(w, "invalid Last-Event-ID", http.StatusBadRequest)
			return
		}
		s.after = after
	} else {
		s.after = h.LastID()
	}

	select {
	case h.join <- s:
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.leave <- s:
		case <-h.done:
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	fmt.Fprintf(w, ": connected %s\n\n", s.id)
	flusher.Flush()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
