// Package sse implements a Server-Sent Events broker for live story updates.
package sse

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/starford/inkwell/internal/catalog"
	"github.com/starford/inkwell/internal/workshop"
)

const (
	clientBuffer      = 64
	defaultThrottle   = 2 * time.Second
	keepAliveInterval = 25 * time.Second
)

// Event is one message on the stream. Type becomes the SSE event name and
// Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type novelRef struct {
	NovelID int64 `json:"novel_id"`
}

// Broker fans events out to connected SSE clients.
//
// All client bookkeeping and throttle state belong to the loop goroutine;
// public methods only talk to it over channels.
type Broker struct {
	throttle time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	events  chan Event
	changes chan catalog.Change
	count   chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. knowledge.changed is emitted at most once per
// knowledgeThrottle for each novel; zero selects two seconds.
func NewBroker(knowledgeThrottle time.Duration) *Broker {
	if knowledgeThrottle <= 0 {
		knowledgeThrottle = defaultThrottle
	}
	b := &Broker{
		throttle: knowledgeThrottle,
		join:     make(chan chan []byte),
		leave:    make(chan chan []byte),
		events:   make(chan Event, 256),
		changes:  make(chan catalog.Change, 256),
		count:    make(chan chan int),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// hub is the state owned by the loop goroutine.
type hub struct {
	clients   map[chan []byte]struct{}
	lastKnown map[int64]time.Time
	seq       uint64
	throttle  time.Duration
}

func (h *hub) broadcast(ev Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	h.seq++
	frame := make([]byte, 0, len(ev.Type)+len(data)+32)
	frame = append(frame, "event: "...)
	frame = append(frame, ev.Type...)
	frame = append(frame, "\nid: "...)
	frame = strconv.AppendUint(frame, h.seq, 10)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)

	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
			// Slow client: drop the frame rather than stall every other client.
		}
	}
}

func (h *hub) change(c catalog.Change, now time.Time) {
	h.broadcast(Event{Type: c.Kind + "." + c.Action, Data: c})

	if c.Kind == catalog.KindNovel && c.Action == catalog.ActionDeleted {
		delete(h.lastKnown, c.NovelID)
		return
	}
	if last, ok := h.lastKnown[c.NovelID]; ok && now.Sub(last) < h.throttle {
		return
	}
	h.lastKnown[c.NovelID] = now
	h.broadcast(Event{Type: "knowledge.changed", Data: novelRef{c.NovelID}})
}

func (b *Broker) loop() {
	defer close(b.stopped)

	h := &hub{
		clients:   make(map[chan []byte]struct{}),
		lastKnown: make(map[int64]time.Time),
		throttle:  b.throttle,
	}
	for {
		select {
		case <-b.stop:
			for ch := range h.clients {
				close(ch)
			}
			return
		case ch := <-b.join:
			h.clients[ch] = struct{}{}
		case ch := <-b.leave:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		case ev := <-b.events:
			h.broadcast(ev)
		case c := <-b.changes:
			h.change(c, time.Now())
		case reply := <-b.count:
			reply <- len(h.clients)
		}
	}
}

// send hands v to the loop unless the broker has stopped.
func send[T any](b *Broker, ch chan<- T, v T) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !send(b, b.join, ch) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	send(b, b.leave, ch)
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	if !send(b, b.count, reply) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts ev to every client.
func (b *Broker) Publish(ev Event) {
	send(b, b.events, ev)
}

// RecordChanged emits "<kind>.<action>" and a throttled knowledge.changed
// for the owning novel.
func (b *Broker) RecordChanged(c catalog.Change) {
	send(b, b.changes, c)
}

// KnowledgeRefreshed emits knowledge.refreshed.
func (b *Broker) KnowledgeRefreshed(novelID int64) {
	b.Publish(Event{Type: "knowledge.refreshed", Data: novelRef{novelID}})
}

// RunEvent emits "run.<state>" for a generation run transition.
func (b *Broker) RunEvent(ev workshop.RunEvent) {
	b.Publish(Event{Type: "run." + string(ev.State), Data: ev})
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes. A comment line is sent periodically to keep proxies from timing
// out idle streams.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAliveInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
