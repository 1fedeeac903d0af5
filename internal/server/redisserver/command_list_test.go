package redisserver

import "testing"

func bulkStrings(t *testing.T, arr Reply) []string {
	t.Helper()
	a, ok := arr.(Array)
	if !ok {
		t.Fatalf("reply is not an Array: %#v", arr)
	}
	out := make([]string, len(a.Items))
	for i, item := range a.Items {
		out[i] = string(item.(Bulk).Data)
	}
	return out
}

func TestCmdPushPop(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "RPUSH", "l", "a", "b", "c"); r != Integer(3) {
		t.Fatalf("RPUSH = %#v, want 3", r)
	}
	if r := exec(s, c, "LPUSH", "l", "z"); r != Integer(4) {
		t.Fatalf("LPUSH = %#v, want 4", r)
	}
	if r := exec(s, c, "LLEN", "l"); r != Integer(4) {
		t.Fatalf("LLEN = %#v, want 4", r)
	}
	got := bulkStrings(t, exec(s, c, "LRANGE", "l", "0", "-1"))
	want := []string{"z", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("LRANGE = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LRANGE = %v, want %v", got, want)
		}
	}

	r := exec(s, c, "LPOP", "l")
	if string(r.(Bulk).Data) != "z" {
		t.Fatalf("LPOP = %#v, want 'z'", r)
	}
	r = exec(s, c, "RPOP", "l")
	if string(r.(Bulk).Data) != "c" {
		t.Fatalf("RPOP = %#v, want 'c'", r)
	}
}

func TestCmdPushXOnAbsentKey(t *testing.T) {
	s, c := newTestServerConn()
	if r := exec(s, c, "LPUSHX", "missing", "v"); r != Integer(0) {
		t.Fatalf("LPUSHX(absent) = %#v, want 0", r)
	}
	if r := exec(s, c, "EXISTS", "missing"); r != Integer(0) {
		t.Fatalf("LPUSHX must not create the key: %#v", r)
	}
}

func TestCmdPopEmptiesListDeletesKey(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "only")
	exec(s, c, "LPOP", "l")
	if r := exec(s, c, "EXISTS", "l"); r != Integer(0) {
		t.Fatalf("empty list should be deleted, EXISTS = %#v", r)
	}
}

func TestCmdLIndexAndLSet(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "b", "c")
	if r := exec(s, c, "LINDEX", "l", "1"); string(r.(Bulk).Data) != "b" {
		t.Fatalf("LINDEX = %#v, want 'b'", r)
	}
	if r := exec(s, c, "LSET", "l", "1", "B"); r != OK {
		t.Fatalf("LSET = %#v, want OK", r)
	}
	if r := exec(s, c, "LINDEX", "l", "1"); string(r.(Bulk).Data) != "B" {
		t.Fatalf("LINDEX after LSET = %#v, want 'B'", r)
	}
	r := exec(s, c, "LSET", "l", "99", "x")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("LSET out of range = %#v, want error", r)
	}
}

func TestCmdLTrim(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "b", "c", "d")
	if r := exec(s, c, "LTRIM", "l", "1", "2"); r != OK {
		t.Fatalf("LTRIM = %#v, want OK", r)
	}
	got := bulkStrings(t, exec(s, c, "LRANGE", "l", "0", "-1"))
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("LRANGE after LTRIM = %v, want [b c]", got)
	}
}

func TestCmdLInsert(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "c")
	r := exec(s, c, "LINSERT", "l", "BEFORE", "c", "b")
	if r != Integer(3) {
		t.Fatalf("LINSERT = %#v, want 3", r)
	}
	got := bulkStrings(t, exec(s, c, "LRANGE", "l", "0", "-1"))
	if len(got) != 3 || got[1] != "b" {
		t.Fatalf("LRANGE after LINSERT = %v, want [a b c]", got)
	}
}

func TestCmdLRem(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "b", "a", "c", "a")
	r := exec(s, c, "LREM", "l", "2", "a")
	if r != Integer(2) {
		t.Fatalf("LREM = %#v, want 2", r)
	}
	got := bulkStrings(t, exec(s, c, "LRANGE", "l", "0", "-1"))
	if len(got) != 3 {
		t.Fatalf("LRANGE after LREM = %v, want 3 remaining items", got)
	}
}

func TestCmdLMoveAndRPopLPush(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "src", "a", "b", "c")
	r := exec(s, c, "RPOPLPUSH", "src", "dst")
	if string(r.(Bulk).Data) != "c" {
		t.Fatalf("RPOPLPUSH = %#v, want 'c'", r)
	}
	dst := bulkStrings(t, exec(s, c, "LRANGE", "dst", "0", "-1"))
	if len(dst) != 1 || dst[0] != "c" {
		t.Fatalf("dst after RPOPLPUSH = %v, want [c]", dst)
	}

	r = exec(s, c, "LMOVE", "src", "dst", "LEFT", "LEFT")
	if string(r.(Bulk).Data) != "a" {
		t.Fatalf("LMOVE = %#v, want 'a'", r)
	}
	dst = bulkStrings(t, exec(s, c, "LRANGE", "dst", "0", "-1"))
	if len(dst) != 2 || dst[0] != "a" {
		t.Fatalf("dst after LMOVE = %v, want [a c]", dst)
	}
}

func TestCmdLPos(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "b", "c", "b")
	r := exec(s, c, "LPOS", "l", "b")
	if r != Integer(1) {
		t.Fatalf("LPOS = %#v, want 1", r)
	}
	r = exec(s, c, "LPOS", "l", "missing")
	if !r.(Bulk).Nil {
		t.Fatalf("LPOS(missing) = %#v, want nil", r)
	}
}

func TestCmdBLPopBRPop(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "l", "a", "b", "c")

	r := exec(s, c, "BLPOP", "missing", "l", "0")
	a, ok := r.(Array)
	if !ok || len(a.Items) != 2 {
		t.Fatalf("BLPOP = %#v, want 2-element array", r)
	}
	if string(a.Items[0].(Bulk).Data) != "l" || string(a.Items[1].(Bulk).Data) != "a" {
		t.Fatalf("BLPOP = %v, want [l a]", bulkStrings(t, a))
	}

	r = exec(s, c, "BRPOP", "l", "0")
	a, ok = r.(Array)
	if !ok || len(a.Items) != 2 || string(a.Items[1].(Bulk).Data) != "c" {
		t.Fatalf("BRPOP = %#v, want [l c]", r)
	}
}

func TestCmdBLPopEmptyReturnsNilImmediately(t *testing.T) {
	s, c := newTestServerConn()
	r := exec(s, c, "BLPOP", "missing", "0")
	a, ok := r.(Array)
	if !ok || !a.Nil {
		t.Fatalf("BLPOP on empty keys = %#v, want nil array", r)
	}
}

func TestCmdBRPopLPushAndBLMove(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "RPUSH", "src", "a", "b", "c")

	r := exec(s, c, "BRPOPLPUSH", "src", "dst", "0")
	if string(r.(Bulk).Data) != "c" {
		t.Fatalf("BRPOPLPUSH = %#v, want 'c'", r)
	}

	r = exec(s, c, "BLMOVE", "src", "dst", "LEFT", "LEFT", "0")
	if string(r.(Bulk).Data) != "a" {
		t.Fatalf("BLMOVE = %#v, want 'a'", r)
	}
	dst := bulkStrings(t, exec(s, c, "LRANGE", "dst", "0", "-1"))
	if len(dst) != 2 || dst[0] != "a" || dst[1] != "c" {
		t.Fatalf("dst after BLMOVE = %v, want [a c]", dst)
	}
}

func TestCmdListWrongType(t *testing.T) {
	s, c := newTestServerConn()
	exec(s, c, "SET", "k", "v")
	r := exec(s, c, "RPUSH", "k", "x")
	if _, ok := r.(ErrorReply); !ok {
		t.Fatalf("RPUSH on string key = %#v, want error", r)
	}
}
