package redisserver

import "testing"

func TestCmdHSetHGet(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "HSET", "h", "f1", "v1", "f2", "v2")
	if r != Integer(2) {
		t.Fatalf("HSET = %#v, want 2", r)
	}
	if r := exec(s, c, "HGET", "h", "f1"); string(r.(Bulk).Data) != "v1" {
		t.Fatalf("HGET = %#v, want 'v1'", r)
	}
	if r := exec(s, c, "HGET", "h", "missing"); !r.(Bulk).Nil {
		t.Fatalf("HGET(missing field) = %#v, want nil", r)
	}
	r = exec(s, c, "HSET", "h", "f1", "updated")
	if r != Integer(0) {
		t.Fatalf("HSET(overwrite) = %#v, want 0 new fields", r)
	}
}

func TestCmdHSetNX(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "HSETNX", "h", "f", "v1"); r != Integer(1) {
		t.Fatalf("HSETNX(new) = %#v, want 1", r)
	}
	if r := exec(s, c, "HSETNX", "h", "f", "v2"); r != Integer(0) {
		t.Fatalf("HSETNX(existing) = %#v, want 0", r)
	}
	if r := exec(s, c, "HGET", "h", "f"); string(r.(Bulk).Data) != "v1" {
		t.Fatalf("value should not change: %#v", r)
	}
}

func TestCmdHDelAndHExists(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "HSET", "h", "f1", "v1", "f2", "v2")
	if r := exec(s, c, "HEXISTS", "h", "f1"); r != Integer(1) {
		t.Fatalf("HEXISTS = %#v, want 1", r)
	}
	if r := exec(s, c, "HDEL", "h", "f1", "missing"); r != Integer(1) {
		t.Fatalf("HDEL = %#v, want 1", r)
	}
	if r := exec(s, c, "HEXISTS", "h", "f1"); r != Integer(0) {
		t.Fatalf("HEXISTS after HDEL = %#v, want 0", r)
	}
}

func TestCmdHDelEmptiesHashDeletesKey(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "HSET", "h", "only", "v")
	exec(s, c, "HDEL", "h", "only")
	if r := exec(s, c, "EXISTS", "h"); r != Integer(0) {
		t.Fatalf("empty hash should be deleted, EXISTS = %#v", r)
	}
}

func TestCmdHLenKeysValsGetAll(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "HSET", "h", "a", "1", "b", "2")
	if r := exec(s, c, "HLEN", "h"); r != Integer(2) {
		t.Fatalf("HLEN = %#v, want 2", r)
	}
	keys := sortedBulkStrings(t, exec(s, c, "HKEYS", "h"))
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("HKEYS = %v, want [a b]", keys)
	}
	vals := sortedBulkStrings(t, exec(s, c, "HVALS", "h"))
	if len(vals) != 2 || vals[0] != "1" || vals[1] != "2" {
		t.Fatalf("HVALS = %v, want [1 2]", vals)
	}
	all := exec(s, c, "HGETALL", "h")
	arr, ok := all.(Array)
	if !ok || len(arr.Items) != 4 {
		t.Fatalf("HGETALL = %#v, want 4-item array (2 field/value pairs)", all)
	}
}

func TestCmdHMGetHMSet(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "HMSET", "h", "a", "1", "b", "2"); r != OK {
		t.Fatalf("HMSET = %#v, want OK", r)
	}
	got := exec(s, c, "HMGET", "h", "a", "missing", "b")
	arr, ok := got.(Array)
	if !ok || len(arr.Items) != 3 {
		t.Fatalf("HMGET = %#v, want 3-item array", got)
	}
	if !arr.Items[1].(Bulk).Nil {
		t.Fatalf("HMGET missing field = %#v, want nil", arr.Items[1])
	}
}

func TestCmdHIncrByAndHIncrByFloat(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "HINCRBY", "h", "ctr", "5"); r != Integer(5) {
		t.Fatalf("HINCRBY(new) = %#v, want 5", r)
	}
	if r := exec(s, c, "HINCRBY", "h", "ctr", "-2"); r != Integer(3) {
		t.Fatalf("HINCRBY = %#v, want 3", r)
	}
	r := exec(s, c, "HINCRBYFLOAT", "h", "f", "1.5")
	if string(r.(Bulk).Data) != "1.5" {
		t.Fatalf("HINCRBYFLOAT = %#v, want '1.5'", r)
	}
}

func TestCmdHScan(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "HSET", "h", "a", "1", "b", "2")
	r := exec(s, c, "HSCAN", "h", "0")
	arr, ok := r.(Array)
	if !ok || len(arr.Items) != 2 {
		t.Fatalf("HSCAN = %#v, want [cursor, flat field/value array]", r)
	}
	pairs, ok := arr.Items[1].(Array)
	if !ok || len(pairs.Items) != 4 {
		t.Fatalf("HSCAN field/value array = %#v, want 4 items", arr.Items[1])
	}
}

func TestCmdHRandField(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "HSET", "h", "a", "1", "b", "2", "c", "3")
	r := exec(s, c, "HRANDFIELD", "h")
	if _, ok := r.(Bulk); !ok {
		t.Fatalf("HRANDFIELD = %#v, want bulk", r)
	}
	r = exec(s, c, "HRANDFIELD", "h", "-5")
	arr, ok := r.(Array)
	if !ok || len(arr.Items) != 5 {
		t.Fatalf("HRANDFIELD negative count = %#v, want 5 items", r)
	}
}

func TestCmdHashWrongType(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v")
	r := exec(s, c, "HSET", "k", "f", "v")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("HSET on string key = %#v, want error", r)
	}
}
