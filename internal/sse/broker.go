// Package sse implements a Server-Sent Events broker that tells the UI when
// workspace content changed on disk.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// WorkspaceChanged is sent, throttled, after any project or post change so
// clients that only show the project list can refresh once.
const WorkspaceChanged = "workspace.changed"

// DefaultKeepAlive is the interval of comment pings on idle streams.
const DefaultKeepAlive = 30 * time.Second

// Change describes one project or post that changed on disk.
type Change struct {
	Entity  string `json:"entity"` // "project" or "post"
	Kind    string `json:"kind"`   // "created", "updated" or "deleted"
	Project string `json:"project"`
	Slug    string `json:"slug,omitempty"`
}

// subscriber is one open stream. A non-empty project limits it to changes
// of that project folder; workspace.changed is delivered to everyone.
type subscriber struct {
	ch      chan []byte
	project string
}

// Broker fans changes out to connected SSE clients.
//
// A single loop goroutine owns the subscriber set, the event sequence and
// the workspace throttle timestamp; public methods talk to it over channels.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	subscribeCh   chan *subscriber
	unsubscribeCh chan chan []byte
	changeCh      chan Change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. workspace.changed is sent at most once
// per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		throttle:      throttle,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan *subscriber),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan Change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// SetKeepAlive changes the ping interval for streams opened afterwards.
func (b *Broker) SetKeepAlive(d time.Duration) {
	if d > 0 {
		b.keepAlive = d
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[chan []byte]*subscriber)
	var seq uint64
	var lastWorkspace time.Time

	send := func(eventType, project string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, eventType, payload))
		for ch, s := range subs {
			if project != "" && s.project != "" && s.project != project {
				continue
			}
			select {
			case ch <- frame:
			default:
				// Slow client; the next workspace.changed makes it reload.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.subscribeCh:
			subs[s.ch] = s

		case ch := <-b.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case c := <-b.changeCh:
			switch c.Kind {
			case "created", "updated", "deleted":
			default:
				continue
			}
			send(c.Entity+"."+c.Kind, c.Project, c)

			if now := time.Now(); now.Sub(lastWorkspace) >= b.throttle {
				lastWorkspace = now
				send(WorkspaceChanged, "", struct{}{})
			}

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel. An empty project
// subscribes to every change.
func (b *Broker) Subscribe(project string) chan []byte {
	s := &subscriber{ch: make(chan []byte, 64), project: project}
	if b.closed.Load() {
		close(s.ch)
		return s.ch
	}

	select {
	case b.subscribeCh <- s:
	case <-b.stopped:
		close(s.ch)
	}
	return s.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishChange publishes a project or post change and a throttled
// workspace.changed event. Unknown kinds are dropped.
func (b *Broker) PublishChange(c Change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- c:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events[?project=folder]).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(r.URL.Query().Get("project"))
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
