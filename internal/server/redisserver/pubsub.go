package redisserver

import (
	"sync"

	"github.com/sedris-go/sedris/internal/keyspace"
)

// Hub is the publish/subscribe channel and pattern subscription graph
// (§4.5). It holds weak back-references to connections (§3 "Ownership"):
// a connection removes itself on disconnect rather than the hub tracking
// connection lifetime.
//
// Deliberately guarded by its own mutex rather than the keyspace's: a
// connection's disconnect cleanup must be able to unsubscribe without
// coordinating with whatever command (if any) happens to be executing
// against the keyspace at that moment, and giving pub/sub its own lock
// keeps that cleanup path simple and always correct regardless of which
// code path triggers it.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[*Conn]struct{}
	patterns map[string]map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Conn]struct{}),
		patterns: make(map[string]map[*Conn]struct{}),
	}
}

func (h *Hub) subscribeChannel(c *Conn, ch string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[ch]
	if !ok {
		set = make(map[*Conn]struct{})
		h.channels[ch] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unsubscribeChannel(c *Conn, ch string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[ch]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.channels, ch)
	}
}

func (h *Hub) subscribePattern(c *Conn, pat string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.patterns[pat]
	if !ok {
		set = make(map[*Conn]struct{})
		h.patterns[pat] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unsubscribePattern(c *Conn, pat string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.patterns[pat]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.patterns, pat)
	}
}

// removeAll drops every subscription c holds, used on disconnect (§5
// "Cancellation": "its session is unsubscribed from all channels/patterns").
func (h *Hub) removeAll(c *Conn, channels, patterns []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		if set, ok := h.channels[ch]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	for _, p := range patterns {
		if set, ok := h.patterns[p]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.patterns, p)
			}
		}
	}
}

// publish delivers payload to every exact-channel subscriber and every
// pattern subscriber whose pattern matches ch, preserving per-publisher,
// per-subscriber ordering because each push goes into the subscriber's own
// outbox — never a direct socket write from the publisher's goroutine (§5
// "Pub/Sub delivery"). The push does not block: a subscriber whose outbox
// is full or whose connection is closed misses the message. Returns the
// number of subscribers the message was queued for.
func (h *Hub) publish(ch string, payload []byte) int {
	h.mu.Lock()
	var directs, patMatches []*Conn
	var patNames []string
	if set, ok := h.channels[ch]; ok {
		for c := range set {
			directs = append(directs, c)
		}
	}
	for pat, set := range h.patterns {
		if keyspace.Glob(pat, ch) {
			for c := range set {
				patMatches = append(patMatches, c)
				patNames = append(patNames, pat)
			}
		}
	}
	h.mu.Unlock()

	count := 0
	for _, c := range directs {
		if c.pushNonBlocking(ArrayOf(BulkString("message"), BulkString(ch), BulkFrom(payload))) {
			count++
		}
	}
	for i, c := range patMatches {
		if c.pushNonBlocking(ArrayOf(BulkString("pmessage"), BulkString(patNames[i]), BulkString(ch), BulkFrom(payload))) {
			count++
		}
	}
	return count
}

func (h *Hub) channelSubscriberCount(ch string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[ch])
}

func (h *Hub) numPatterns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.patterns)
}

func (h *Hub) channelNames(match string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for ch := range h.channels {
		if match == "" || keyspace.Glob(match, ch) {
			out = append(out, ch)
		}
	}
	return out
}
