package redisserver

import "testing"

func TestCmdSetGet(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "SET", "k", "v"); r != OK {
		t.Fatalf("SET = %#v, want OK", r)
	}
	if r := exec(s, c, "GET", "k"); r.(Bulk).Data == nil || string(r.(Bulk).Data) != "v" {
		t.Fatalf("GET = %#v, want 'v'", r)
	}
	if r := exec(s, c, "GET", "missing"); !r.(Bulk).Nil {
		t.Fatalf("GET(missing) = %#v, want nil bulk", r)
	}
}

func TestCmdSetNXOption(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v1")
	r := exec(s, c, "SET", "k", "v2", "NX")
	if !r.(Bulk).Nil {
		t.Fatalf("SET NX on existing key = %#v, want nil", r)
	}
	if got := exec(s, c, "GET", "k"); string(got.(Bulk).Data) != "v1" {
		t.Fatalf("value changed despite NX guard: %#v", got)
	}

	r = exec(s, c, "SET", "newkey", "v", "NX")
	if r != OK {
		t.Fatalf("SET NX on new key = %#v, want OK", r)
	}
}

func TestCmdSetXXOption(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "SET", "absent", "v", "XX")
	if !r.(Bulk).Nil {
		t.Fatalf("SET XX on absent key = %#v, want nil", r)
	}
	exec(s, c, "SET", "k", "v1")
	r = exec(s, c, "SET", "k", "v2", "XX")
	if r != OK {
		t.Fatalf("SET XX on existing key = %#v, want OK", r)
	}
}

func TestCmdSetGetOption(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "old")
	r := exec(s, c, "SET", "k", "new", "GET")
	b, ok := r.(Bulk)
	if !ok || string(b.Data) != "old" {
		t.Fatalf("SET GET = %#v, want bulk 'old'", r)
	}
	if got := exec(s, c, "GET", "k"); string(got.(Bulk).Data) != "new" {
		t.Fatalf("value not updated: %#v", got)
	}
}

func TestCmdSetWithExpiry(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "SET", "k", "v", "EX", "100")
	if r != OK {
		t.Fatalf("SET EX = %#v, want OK", r)
	}
	ttl := exec(s, c, "TTL", "k")
	i, ok := ttl.(Integer)
	if !ok || i <= 0 || i > 100 {
		t.Fatalf("TTL after SET EX = %#v, want 0 < ttl <= 100", ttl)
	}
}

func TestCmdAppend(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "APPEND", "k", "hello")
	if r != Integer(5) {
		t.Fatalf("APPEND(new) = %#v, want 5", r)
	}
	r = exec(s, c, "APPEND", "k", " world")
	if r != Integer(11) {
		t.Fatalf("APPEND(existing) = %#v, want 11", r)
	}
	got := exec(s, c, "GET", "k")
	if string(got.(Bulk).Data) != "hello world" {
		t.Fatalf("GET after APPEND = %#v, want 'hello world'", got)
	}
}

func TestCmdIncrDecr(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "INCR", "ctr"); r != Integer(1) {
		t.Fatalf("INCR(new) = %#v, want 1", r)
	}
	if r := exec(s, c, "INCRBY", "ctr", "9"); r != Integer(10) {
		t.Fatalf("INCRBY = %#v, want 10", r)
	}
	if r := exec(s, c, "DECR", "ctr"); r != Integer(9) {
		t.Fatalf("DECR = %#v, want 9", r)
	}
	if r := exec(s, c, "DECRBY", "ctr", "4"); r != Integer(5) {
		t.Fatalf("DECRBY = %#v, want 5", r)
	}
}

func TestCmdIncrOnNonIntegerFails(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "notanumber")
	r := exec(s, c, "INCR", "k")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("INCR(non-integer) = %#v, want error", r)
	}
}

func TestCmdIncrByFloat(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "10.5")
	r := exec(s, c, "INCRBYFLOAT", "k", "0.1")
	b, ok := r.(Bulk)
	if !ok || string(b.Data) != "10.6" {
		t.Fatalf("INCRBYFLOAT = %#v, want '10.6'", r)
	}
}

func TestCmdStrlen(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "hello")
	if r := exec(s, c, "STRLEN", "k"); r != Integer(5) {
		t.Fatalf("STRLEN = %#v, want 5", r)
	}
	if r := exec(s, c, "STRLEN", "missing"); r != Integer(0) {
		t.Fatalf("STRLEN(missing) = %#v, want 0", r)
	}
}

func TestCmdGetRangeSetRange(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "Hello World")
	if r := exec(s, c, "GETRANGE", "k", "0", "4"); string(r.(Bulk).Data) != "Hello" {
		t.Fatalf("GETRANGE = %#v, want 'Hello'", r)
	}
	if r := exec(s, c, "GETRANGE", "k", "-5", "-1"); string(r.(Bulk).Data) != "World" {
		t.Fatalf("GETRANGE negative = %#v, want 'World'", r)
	}
	r := exec(s, c, "SETRANGE", "k", "6", "Redis")
	if r != Integer(11) {
		t.Fatalf("SETRANGE = %#v, want 11", r)
	}
	got := exec(s, c, "GET", "k")
	if string(got.(Bulk).Data) != "Hello Redis" {
		t.Fatalf("GET after SETRANGE = %#v, want 'Hello Redis'", got)
	}
}

func TestCmdMGetMSetMSetNX(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "MSET", "a", "1", "b", "2")
	if r != OK {
		t.Fatalf("MSET = %#v, want OK", r)
	}
	got := exec(s, c, "MGET", "a", "b", "missing")
	arr, ok := got.(Array)
	if !ok || len(arr.Items) != 3 {
		t.Fatalf("MGET = %#v, want 3-item array", got)
	}
	if !arr.Items[2].(Bulk).Nil {
		t.Fatalf("MGET missing key = %#v, want nil bulk", arr.Items[2])
	}

	r = exec(s, c, "MSETNX", "a", "3", "c", "4")
	if r != Integer(0) {
		t.Fatalf("MSETNX over existing key = %#v, want 0", r)
	}
	if got := exec(s, c, "EXISTS", "c"); got != Integer(0) {
		t.Fatalf("MSETNX should not have created 'c': %#v", got)
	}

	r = exec(s, c, "MSETNX", "d", "5", "e", "6")
	if r != Integer(1) {
		t.Fatalf("MSETNX on fresh keys = %#v, want 1", r)
	}
}

func TestCmdWrongTypeOnString(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "alist", "x")
	r := exec(s, c, "GET", "alist")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("GET on a list key = %#v, want error", r)
	}
}
