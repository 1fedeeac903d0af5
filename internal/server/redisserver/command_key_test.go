package redisserver

import "testing"

func TestCmdDelExists(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "a", "1")
	exec(s, c, "SET", "b", "2")
	if r := exec(s, c, "EXISTS", "a", "b", "missing"); r != Integer(2) {
		t.Fatalf("EXISTS = %#v, want 2", r)
	}
	if r := exec(s, c, "DEL", "a", "missing"); r != Integer(1) {
		t.Fatalf("DEL = %#v, want 1", r)
	}
	if r := exec(s, c, "EXISTS", "a"); r != Integer(0) {
		t.Fatalf("EXISTS after DEL = %#v, want 0", r)
	}
}

func TestCmdType(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "s", "v")
	exec(s, c, "RPUSH", "l", "v")
	if r := exec(s, c, "TYPE", "s"); r != SimpleString("string") {
		t.Fatalf("TYPE(string) = %#v, want 'string'", r)
	}
	if r := exec(s, c, "TYPE", "l"); r != SimpleString("list") {
		t.Fatalf("TYPE(list) = %#v, want 'list'", r)
	}
	if r := exec(s, c, "TYPE", "missing"); r != SimpleString("none") {
		t.Fatalf("TYPE(missing) = %#v, want 'none'", r)
	}
}

func TestCmdRenameAndRenameNX(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "a", "1")
	if r := exec(s, c, "RENAME", "a", "b"); r != OK {
		t.Fatalf("RENAME = %#v, want OK", r)
	}
	if r := exec(s, c, "GET", "b"); string(r.(Bulk).Data) != "1" {
		t.Fatalf("GET after RENAME = %#v, want '1'", r)
	}
	r := exec(s, c, "RENAME", "missing", "x")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("RENAME(missing) = %#v, want error", r)
	}

	exec(s, c, "SET", "c", "3")
	if r := exec(s, c, "RENAMENX", "c", "b"); r != Integer(0) {
		t.Fatalf("RENAMENX onto existing = %#v, want 0", r)
	}
}

func TestCmdExpireTTLPersist(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v")
	if r := exec(s, c, "TTL", "k"); r != Integer(-1) {
		t.Fatalf("TTL(no expiry) = %#v, want -1", r)
	}
	if r := exec(s, c, "TTL", "missing"); r != Integer(-2) {
		t.Fatalf("TTL(missing) = %#v, want -2", r)
	}
	if r := exec(s, c, "EXPIRE", "k", "100"); r != Integer(1) {
		t.Fatalf("EXPIRE = %#v, want 1", r)
	}
	ttl := exec(s, c, "TTL", "k")
	i, ok := ttl.(Integer)
	if !ok || i <= 0 || i > 100 {
		t.Fatalf("TTL after EXPIRE = %#v, want 0 < ttl <= 100", ttl)
	}
	if r := exec(s, c, "PERSIST", "k"); r != Integer(1) {
		t.Fatalf("PERSIST = %#v, want 1", r)
	}
	if r := exec(s, c, "TTL", "k"); r != Integer(-1) {
		t.Fatalf("TTL after PERSIST = %#v, want -1", r)
	}
}

func TestCmdExpireImmediateDeletesKey(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v")
	if r := exec(s, c, "EXPIRE", "k", "-1"); r != Integer(1) {
		t.Fatalf("EXPIRE(past) = %#v, want 1", r)
	}
	if r := exec(s, c, "EXISTS", "k"); r != Integer(0) {
		t.Fatalf("key should be gone after EXPIRE(past): %#v", r)
	}
}

func TestCmdKeysAndScan(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k1", "v")
	exec(s, c, "SET", "k2", "v")
	exec(s, c, "SET", "other", "v")

	r := exec(s, c, "KEYS", "k*")
	arr, ok := r.(Array)
	if !ok || len(arr.Items) != 2 {
		t.Fatalf("KEYS k* = %#v, want 2 items", r)
	}

	var seen []string
	cursor := "0"
	for {
		res := exec(s, c, "SCAN", cursor)
		a := res.(Array)
		cursor = string(a.Items[0].(Bulk).Data)
		for _, item := range a.Items[1].(Array).Items {
			seen = append(seen, string(item.(Bulk).Data))
		}
		if cursor == "0" {
			break
		}
	}
	if len(seen) != 3 {
		t.Fatalf("full SCAN walk found %d keys, want 3: %v", len(seen), seen)
	}
}

func TestCmdRandomKey(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "RANDOMKEY"); !r.(Bulk).Nil {
		t.Fatalf("RANDOMKEY on empty db = %#v, want nil", r)
	}
	exec(s, c, "SET", "only", "v")
	r := exec(s, c, "RANDOMKEY")
	if string(r.(Bulk).Data) != "only" {
		t.Fatalf("RANDOMKEY = %#v, want 'only'", r)
	}
}
