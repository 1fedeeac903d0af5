// Package redisserver provides a RESP (Redis Serialization Protocol)
// compatible server over a shared in-memory keyspace.
package redisserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sedris-go/sedris/internal/keyspace"
	"github.com/sedris-go/sedris/internal/telemetry/logger"
	"github.com/sedris-go/sedris/internal/telemetry/metric"
)

// Config holds the Redis server's own listener configuration.
type Config struct {
	// PlainEnabled enables the plaintext port.
	PlainEnabled bool
	PlainAddress string
	// TLSEnabled enables a TLS-wrapped listener on a separate address.
	TLSEnabled bool
	TLSAddress string
	TLSConfig  *tls.Config

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit is the maximum new connections accepted per second per
	// source address; an over-budget connection is closed without a reply.
	// Zero disables rate limiting.
	RateLimit int

	Limits Limits
}

func DefaultConfig() *Config {
	return &Config{
		PlainEnabled: true,
		PlainAddress: "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
		Limits:       DefaultLimits(),
	}
}

// Server multiplexes many connections against one shared Keyspace and
// pub/sub Hub (§2 "Connection handler"/"Server").
type Server struct {
	cfg        *Config
	ks         *keyspace.Keyspace
	hub        *Hub
	dispatcher *Dispatcher
	limiter    *addressLimiter
	logger     logger.Logger

	plainLn net.Listener
	tlsLn   net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	startedAt time.Time

	// OnShutdownCommand is invoked when a client issues SHUTDOWN; nil means
	// the command just closes the issuing connection's listener loop.
	OnShutdownCommand func()

	// SaveFunc and BGSaveFunc back the SAVE/BGSAVE commands. Left nil in
	// tests that don't exercise the snapshotter.
	SaveFunc   func() error
	BGSaveFunc func()

	// Metrics records command counts/durations and connected-client counts
	// (§11). Left nil in tests that don't care about telemetry.
	Metrics *metric.Registry

	dirtyCounter atomic.Int64
}

func New(cfg *Config, ks *keyspace.Keyspace, log logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		cfg:        cfg,
		ks:         ks,
		hub:        NewHub(),
		dispatcher: NewDispatcher(),
		limiter:    newAddressLimiter(cfg.RateLimit),
		logger:     log,
		startedAt:  time.Now(),
	}
}

// IncrDirty bumps the write-command dirty counter consulted by the
// configured save-point policy (SPEC_FULL §12).
func (s *Server) IncrDirty(n int64) { s.dirtyCounter.Add(n) }

func (s *Server) DirtyCount() int64 { return s.dirtyCounter.Load() }

func (s *Server) ResetDirty() { s.dirtyCounter.Store(0) }

func (s *Server) Keyspace() *keyspace.Keyspace { return s.ks }

func (s *Server) StartedAt() time.Time { return s.startedAt }

func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.PlainEnabled && !s.cfg.TLSEnabled {
		s.logger.Info("redis server disabled: both plain and TLS listeners are off")
		return nil
	}
	s.running.Store(true)

	if s.cfg.PlainEnabled {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.startPlain(ctx); err != nil && s.running.Load() {
				s.logger.Error("plain listener stopped", "error", err)
			}
		}()
	}
	if s.cfg.TLSEnabled {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.startTLS(ctx); err != nil && s.running.Load() {
				s.logger.Error("tls listener stopped", "error", err)
			}
		}()
	}
	return nil
}

func (s *Server) startPlain(ctx context.Context) error {
	s.logger.Info("starting redis listener", "address", s.cfg.PlainAddress, "tls", false)
	ln, err := net.Listen("tcp", s.cfg.PlainAddress)
	if err != nil {
		return err
	}
	s.plainLn = ln
	return s.acceptLoop(ctx, ln)
}

func (s *Server) startTLS(ctx context.Context) error {
	if s.cfg.TLSConfig == nil {
		s.logger.Error("tls listener requested without a TLS config")
		return nil
	}
	s.logger.Info("starting redis listener", "address", s.cfg.TLSAddress, "tls", true)
	ln, err := tls.Listen("tcp", s.cfg.TLSAddress, s.cfg.TLSConfig)
	if err != nil {
		return err
	}
	s.tlsLn = ln
	return s.acceptLoop(ctx, ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	var firstErr error
	if s.plainLn != nil {
		if err := s.plainLn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.tlsLn != nil {
		if err := s.tlsLn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if s.limiter != nil && !s.limiter.allow(c.RemoteAddr().String()) {
			_ = c.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

// Conn is a single client connection: one reader goroutine (the caller of
// serveConn) parses requests and dispatches them, and one writer goroutine
// owns the socket's write side so that synchronous command replies and
// asynchronous pub/sub pushes (§5 "Pub/Sub delivery") never interleave mid
// frame.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer

	session       *Session
	correlationID string

	outbox chan Reply
	done   chan struct{}
	closed atomic.Bool

	writeTimeout time.Duration
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		netConn:       c,
		br:            bufio.NewReader(c),
		bw:            bufio.NewWriter(c),
		session:       newSession(),
		correlationID: ulid.Make().String(),
		outbox:        make(chan Reply, 64),
		done:          make(chan struct{}),
		writeTimeout:  30 * time.Second,
	}
}

func (c *Conn) RemoteAddr() net.Addr { return c.netConn.RemoteAddr() }

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	return c.netConn.Close()
}

// push delivers a reply, blocking until there's room (used for the
// synchronous command-reply path, where back-pressure is correct).
func (c *Conn) push(r Reply) {
	select {
	case c.outbox <- r:
	case <-c.done:
	}
}

// pushNonBlocking is used by pub/sub fan-out: a slow or disconnected
// subscriber must never stall the publisher (§4.5 "dropped silently").
func (c *Conn) pushNonBlocking(r Reply) bool {
	select {
	case c.outbox <- r:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Conn) writerLoop() {
	for {
		select {
		case r, ok := <-c.outbox:
			if !ok {
				return
			}
			_ = c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := WriteReply(c.bw, r); err != nil {
				return
			}
			if err := c.bw.Flush(); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	if s.Metrics != nil {
		s.Metrics.IncConnectedClients()
	}
	defer func() {
		s.hub.removeAll(c, c.session.channels(), c.session.patterns())
		_ = c.Close()
		if s.Metrics != nil {
			s.Metrics.DecConnectedClients()
		}
	}()

	c.writeTimeout = firstPositive(s.cfg.WriteTimeout, 30*time.Second)
	readTimeout := firstPositive(s.cfg.ReadTimeout, 30*time.Second)
	idleTimeout := firstPositive(s.cfg.IdleTimeout, 5*time.Minute)

	go c.writerLoop()

	log := s.logger.With("conn", c.correlationID, "remote", c.RemoteAddr().String())

	for {
		if err := c.netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection idle timeout")
				return
			}
			return
		}

		if err := c.netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		args, err := ReadCommand(c.br, s.cfg.Limits)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection read timeout")
				return
			}
			if errors.Is(err, ErrLimitExceeded) {
				log.Warn("protocol limit exceeded", "error", err)
				c.push(ErrorReply("ERR protocol limit exceeded"))
				return
			}
			c.push(ErrorReply("ERR Protocol error: " + err.Error()))
			return
		}
		if len(args) == 0 {
			continue
		}

		_ = ctx
		reply := s.Execute(c, args)
		if reply == nil {
			return // QUIT, SHUTDOWN
		}
		if !isNoReply(reply) {
			c.push(reply)
		}
	}
}

func firstPositive(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
