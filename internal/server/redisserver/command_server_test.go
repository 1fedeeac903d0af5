package redisserver

import (
	"strings"
	"testing"
)

func TestCmdPing(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "PING"); r != SimpleString("PONG") {
		t.Fatalf("PING = %#v, want PONG", r)
	}
	r := exec(s, c, "PING", "hello")
	if string(r.(Bulk).Data) != "hello" {
		t.Fatalf("PING with message = %#v, want echoed bulk", r)
	}
}

func TestCmdEcho(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "ECHO", "hi")
	if string(r.(Bulk).Data) != "hi" {
		t.Fatalf("ECHO = %#v, want 'hi'", r)
	}
}

func TestCmdSelectAndDBIsolation(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "db0")
	if r := exec(s, c, "SELECT", "1"); r != OK {
		t.Fatalf("SELECT = %#v, want OK", r)
	}
	if r := exec(s, c, "GET", "k"); !r.(Bulk).Nil {
		t.Fatalf("GET in db1 should not see db0's key: %#v", r)
	}
	exec(s, c, "SET", "k", "db1")
	exec(s, c, "SELECT", "0")
	if r := exec(s, c, "GET", "k"); string(r.(Bulk).Data) != "db0" {
		t.Fatalf("GET back in db0 = %#v, want 'db0'", r)
	}

	r := exec(s, c, "SELECT", "9999")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("SELECT(invalid index) = %#v, want error", r)
	}
}

func TestCmdDBSizeFlushDBFlushAll(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "a", "1")
	exec(s, c, "SET", "b", "2")
	if r := exec(s, c, "DBSIZE"); r != Integer(2) {
		t.Fatalf("DBSIZE = %#v, want 2", r)
	}
	if r := exec(s, c, "FLUSHDB"); r != OK {
		t.Fatalf("FLUSHDB = %#v, want OK", r)
	}
	if r := exec(s, c, "DBSIZE"); r != Integer(0) {
		t.Fatalf("DBSIZE after FLUSHDB = %#v, want 0", r)
	}

	exec(s, c, "SELECT", "1")
	exec(s, c, "SET", "x", "1")
	exec(s, c, "SELECT", "0")
	exec(s, c, "SET", "y", "1")
	if r := exec(s, c, "FLUSHALL"); r != OK {
		t.Fatalf("FLUSHALL = %#v, want OK", r)
	}
	if r := exec(s, c, "DBSIZE"); r != Integer(0) {
		t.Fatalf("DBSIZE after FLUSHALL = %#v, want 0", r)
	}
}

func TestCmdTime(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "TIME")
	arr, ok := r.(Array)
	if !ok || len(arr.Items) != 2 {
		t.Fatalf("TIME = %#v, want 2-item array", r)
	}
}

func TestCmdInfoContainsKeyspaceSection(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v")
	r := exec(s, c, "INFO")
	b, ok := r.(Bulk)
	if !ok {
		t.Fatalf("INFO = %#v, want bulk", r)
	}
	if !containsAll(string(b.Data), "# Server", "# Keyspace", "db0:keys=1") {
		t.Fatalf("INFO output missing expected sections: %s", b.Data)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestCmdAuthAlwaysOK(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "AUTH", "anypassword"); r != OK {
		t.Fatalf("AUTH = %#v, want OK", r)
	}
}

func TestCmdClientSubcommands(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "CLIENT", "GETNAME"); string(r.(Bulk).Data) != "" {
		t.Fatalf("CLIENT GETNAME = %#v, want empty bulk", r)
	}
	if r := exec(s, c, "CLIENT", "SETNAME", "myconn"); r != OK {
		t.Fatalf("CLIENT SETNAME = %#v, want OK", r)
	}
	r := exec(s, c, "CLIENT", "ID")
	if _, ok := r.(Bulk); !ok {
		t.Fatalf("CLIENT ID = %#v, want bulk", r)
	}
}

func TestCmdSaveRequiresSaveFunc(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "SAVE")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("SAVE without SaveFunc wired = %#v, want error", r)
	}

	s.SaveFunc = func() error { return nil }
	r = exec(s, c, "SAVE")
	if r != OK {
		t.Fatalf("SAVE with SaveFunc wired = %#v, want OK", r)
	}
}

func TestCmdBGSave(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "BGSAVE")
	if r != SimpleString("Background saving started") {
		t.Fatalf("BGSAVE = %#v, want 'Background saving started'", r)
	}
}

func TestCmdDebugSleep(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "DEBUG", "SLEEP", "0"); r != OK {
		t.Fatalf("DEBUG SLEEP = %#v, want OK", r)
	}
}

func TestCmdDebugJSON(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "hello")
	r := exec(s, c, "DEBUG", "JSON", "k")
	b, ok := r.(Bulk)
	if !ok {
		t.Fatalf("DEBUG JSON = %#v, want bulk", r)
	}
	if !containsAll(string(b.Data), `"kind"`, `"size":5`) {
		t.Fatalf("DEBUG JSON = %s, want kind/size fields", b.Data)
	}

	r = exec(s, c, "DEBUG", "JSON", "missing")
	if !containsAll(string(r.(Bulk).Data), "no such key") {
		t.Fatalf("DEBUG JSON(missing) = %#v, want 'no such key'", r)
	}
}
