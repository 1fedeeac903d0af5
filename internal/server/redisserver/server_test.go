package redisserver

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/sedris-go/sedris/internal/keyspace"
	"github.com/sedris-go/sedris/internal/telemetry/logger"
)

func TestServerDirtyCounter(t *testing.T) {
	s := newTestServer()
	s.IncrDirty(3)
	s.IncrDirty(2)
	if got := s.DirtyCount(); got != 5 {
		t.Fatalf("DirtyCount() = %d, want 5", got)
	}
	s.ResetDirty()
	if got := s.DirtyCount(); got != 0 {
		t.Fatalf("DirtyCount() after reset = %d, want 0", got)
	}
}

func TestServerPlainRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlainAddress = "127.0.0.1:0"
	ks := keyspace.New(16)
	s := New(cfg, ks, logger.Default())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s.plainLn = ln
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.acceptLoop(ctx, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "+PONG\r\n" {
		t.Fatalf("reply = %q, want +PONG\\r\\n", line)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestAddressLimiterDisabledByDefault(t *testing.T) {
	l := newAddressLimiter(0)
	if l != nil {
		t.Fatal("newAddressLimiter(0) should be nil (disabled)")
	}
}

func TestAddressLimiterAllowsUnderBurst(t *testing.T) {
	l := newAddressLimiter(5)
	allowed := 0
	for i := 0; i < 5; i++ {
		if l.allow("10.0.0.1:1234") {
			allowed++
		}
	}
	if allowed == 0 {
		t.Fatal("expected at least the initial burst to be allowed")
	}
}
