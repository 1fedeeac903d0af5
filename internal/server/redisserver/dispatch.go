package redisserver

import (
	"strings"
	"time"
)

// HandlerFunc executes one command against the shared server state. A nil
// Reply (not noReply) signals the connection should close (QUIT, SHUTDOWN).
type HandlerFunc func(s *Server, c *Conn, args [][]byte) Reply

// Flag annotates a command descriptor (§4.3).
type Flag uint8

const (
	FlagWrite Flag = 1 << iota
	FlagReadonly
	FlagAdmin
	FlagPubSub
	FlagNoDBSelect
)

// Descriptor is one command's dispatch metadata.
type Descriptor struct {
	Name    string
	Arity   int // exact if >= 0, minimum abs(Arity) if negative
	Flags   Flag
	Handler HandlerFunc
}

// runHandler invokes desc.Handler and, if metrics are attached, records the
// command's name and wall-clock duration (§11).
func (s *Server) runHandler(desc *Descriptor, c *Conn, args [][]byte) Reply {
	if s.Metrics == nil {
		return desc.Handler(s, c, args)
	}
	start := time.Now()
	reply := desc.Handler(s, c, args)
	s.Metrics.IncCommand(desc.Name, time.Since(start).Seconds())
	return reply
}

func (d *Descriptor) arityOK(argc int) bool {
	if d.Arity >= 0 {
		return argc == d.Arity
	}
	return argc >= -d.Arity
}

// Dispatcher maps an uppercased command name to its descriptor.
type Dispatcher struct {
	registry map[string]*Descriptor
}

func (d *Dispatcher) register(desc Descriptor) {
	d.registry[desc.Name] = &desc
}

// commandsAllowedInSubscribeMode mirrors §4.5: "may only issue
// SUBSCRIBE/UNSUBSCRIBE/PSUBSCRIBE/PUNSUBSCRIBE/PING/QUIT".
var commandsAllowedInSubscribeMode = map[string]struct{}{
	"SUBSCRIBE":    {},
	"UNSUBSCRIBE":  {},
	"PSUBSCRIBE":   {},
	"PUNSUBSCRIBE": {},
	"PING":         {},
	"QUIT":         {},
}

// Execute looks up, validates, and runs one command. Commands flagged
// write, readonly or pub/sub run with the keyspace lock held for the
// handler's duration (§5). The remaining connection, transaction-control
// and admin commands (PING, MULTI/EXEC/DISCARD, SAVE, DEBUG, ...) run
// without it; EXEC takes the lock per queued command in runQueued, and
// DEBUG JSON takes it itself.
func (s *Server) Execute(c *Conn, args [][]byte) Reply {
	name := normalizeCommandName(args[0])

	desc, ok := s.dispatcher.registry[name]
	if !ok {
		if c.session.IsInTx() {
			c.session.abortTx()
		}
		return ErrorReply("ERR unknown command '" + name + "'")
	}
	if !desc.arityOK(len(args)) {
		if c.session.IsInTx() {
			c.session.abortTx()
		}
		return ErrorReply("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
	}

	if c.session.InSubscribeMode() {
		if _, ok := commandsAllowedInSubscribeMode[name]; !ok {
			return ErrorReply("ERR Can't execute '" + strings.ToLower(name) + "': only (P)SUBSCRIBE / (P)UNSUBSCRIBE / PING / QUIT are allowed in this context")
		}
	}

	// MULTI-mode queuing: everything except MULTI/EXEC/DISCARD/WATCH gets
	// queued instead of executed (§4.3).
	if c.session.IsInTx() && name != "MULTI" && name != "EXEC" && name != "DISCARD" {
		c.session.queueTx(args)
		return SimpleString("QUEUED")
	}

	if desc.Flags&FlagAdmin != 0 && name == "SHUTDOWN" {
		return s.runHandler(desc, c, args)
	}

	if desc.Flags&(FlagWrite|FlagReadonly|FlagPubSub) == 0 {
		// Connection/transaction-control commands (PING, MULTI, EXEC, ...)
		// that don't need the keyspace lock at all.
		return s.runHandler(desc, c, args)
	}

	s.ks.Lock()
	reply := s.runHandler(desc, c, args)
	s.ks.Unlock()

	if desc.Flags&FlagWrite != 0 {
		s.IncrDirty(1)
	}
	return reply
}

// runQueued executes one previously-queued command for EXEC, without the
// MULTI-mode re-queuing or subscribe-mode gate (those only apply to the
// top-level request loop).
func (s *Server) runQueued(c *Conn, args [][]byte) Reply {
	name := normalizeCommandName(args[0])
	desc, ok := s.dispatcher.registry[name]
	if !ok {
		return ErrorReply("ERR unknown command '" + name + "'")
	}
	if !desc.arityOK(len(args)) {
		return ErrorReply("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
	}
	if desc.Flags&(FlagWrite|FlagReadonly|FlagPubSub) == 0 {
		return s.runHandler(desc, c, args)
	}
	s.ks.Lock()
	reply := s.runHandler(desc, c, args)
	s.ks.Unlock()
	if desc.Flags&FlagWrite != 0 {
		s.IncrDirty(1)
	}
	return reply
}
