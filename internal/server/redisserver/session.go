package redisserver

import "sync"

// Session is per-connection state not held in the keyspace (§3: "Client
// session state (not persisted)"). All fields are guarded by mu since
// pub/sub bookkeeping and the connection's own command loop can touch it
// from different goroutines. The hub builds PUBLISH fan-out lists from its
// own channel/pattern maps, not from these sets.
type Session struct {
	mu sync.Mutex

	db int

	channelSubs map[string]struct{}
	patternSubs map[string]struct{}

	// inTx/txQueue/txAbort implement MULTI/EXEC/DISCARD (§4.3).
	inTx     bool
	txQueue  [][][]byte
	txAbort  bool

	// Authenticated is always true: this system has no requirepass support
	// (§3 "trivially authenticated", SPEC_FULL §12). The field exists for
	// shape-compatibility with a future auth feature, never consulted by
	// dispatch to reject a command.
	Authenticated bool
}

func newSession() *Session {
	return &Session{
		channelSubs:   make(map[string]struct{}),
		patternSubs:   make(map[string]struct{}),
		Authenticated: true,
	}
}

func (s *Session) DB() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

func (s *Session) SetDB(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = n
}

func (s *Session) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channelSubs) + len(s.patternSubs)
}

func (s *Session) InSubscribeMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channelSubs) > 0 || len(s.patternSubs) > 0
}

// addChannel/removeChannel/addPattern/removePattern report whether the
// session's membership actually changed (SUBSCRIBE to an already-subscribed
// channel still gets an ack frame, but the hub side-table doesn't change).
func (s *Session) addChannel(ch string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channelSubs[ch]; ok {
		return false
	}
	s.channelSubs[ch] = struct{}{}
	return true
}

func (s *Session) removeChannel(ch string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channelSubs[ch]; !ok {
		return false
	}
	delete(s.channelSubs, ch)
	return true
}

func (s *Session) channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.channelSubs))
	for c := range s.channelSubs {
		out = append(out, c)
	}
	return out
}

func (s *Session) addPattern(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patternSubs[p]; ok {
		return false
	}
	s.patternSubs[p] = struct{}{}
	return true
}

func (s *Session) removePattern(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patternSubs[p]; !ok {
		return false
	}
	delete(s.patternSubs, p)
	return true
}

func (s *Session) patterns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.patternSubs))
	for p := range s.patternSubs {
		out = append(out, p)
	}
	return out
}

// beginTx/queueTx/endTx implement MULTI/EXEC/DISCARD bookkeeping.
func (s *Session) beginTx() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = true
	s.txQueue = nil
	s.txAbort = false
}

func (s *Session) queueTx(args [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txQueue = append(s.txQueue, args)
}

func (s *Session) abortTx() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txAbort = true
}

// endTx clears transaction state and returns the queued commands and
// whether queuing was aborted by a syntax/arity error.
func (s *Session) endTx() ([][][]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue, aborted := s.txQueue, s.txAbort
	s.inTx = false
	s.txQueue = nil
	s.txAbort = false
	return queue, aborted
}

func (s *Session) IsInTx() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx
}
