package keyspace

import "testing"

func TestGetLazyExpiry(t *testing.T) {
	ks := New(1)
	ks.Lock()
	defer ks.Unlock()
	d := ks.DB(0)

	d.Put("k", &Entry{Kind: KindString, Value: []byte("v"), ExpireAt: 100})

	if _, ok := d.Get("k", 50); !ok {
		t.Fatalf("expected key present before expiry")
	}
	if _, ok := d.Get("k", 200); ok {
		t.Fatalf("expected key absent after expiry")
	}
	if d.Size() != 0 {
		t.Fatalf("expired key should have been deleted, size=%d", d.Size())
	}
}

func TestRenamePreservesExpiry(t *testing.T) {
	ks := New(1)
	ks.Lock()
	defer ks.Unlock()
	d := ks.DB(0)

	d.Put("a", &Entry{Kind: KindString, Value: []byte("v"), ExpireAt: 9999})
	if !d.Rename("a", "b", 100) {
		t.Fatalf("rename failed")
	}
	if d.Exists("a", 100) {
		t.Fatalf("old key should be gone")
	}
	e, ok := d.Get("b", 100)
	if !ok {
		t.Fatalf("new key missing")
	}
	if e.ExpireAt != 9999 {
		t.Fatalf("expiry not preserved: %d", e.ExpireAt)
	}
}

func TestFlushOnlyAffectsOneDB(t *testing.T) {
	ks := New(2)
	ks.Lock()
	defer ks.Unlock()
	ks.DB(0).Put("k", &Entry{Kind: KindString, Value: []byte("v")})
	ks.DB(1).Put("k", &Entry{Kind: KindString, Value: []byte("v")})

	ks.DB(0).Flush()

	if ks.DB(0).Size() != 0 {
		t.Fatalf("db0 should be empty")
	}
	if ks.DB(1).Size() != 1 {
		t.Fatalf("db1 should be untouched")
	}
}

func TestDBDeleteIdempotent(t *testing.T) {
	ks := New(1)
	ks.Lock()
	defer ks.Unlock()
	d := ks.DB(0)
	d.Put("k", &Entry{Kind: KindString, Value: []byte("v")})

	if !d.Delete("k") {
		t.Fatalf("first delete should report true")
	}
	if d.Delete("k") {
		t.Fatalf("second delete should report false")
	}
}

// TestCloneLockedIndependentOfLiveWrites simulates a BGSAVE: clone under
// lock, release the lock, then mutate the live List/Set/Hash/ZSet in place
// the way a concurrent LPUSH/SADD/HSET/ZADD would, and confirms the image
// taken by CloneLocked is unaffected — the defect this guards against is a
// shared linked-list/map/skiplist being torn or corrupted by a write that
// lands after the snapshot already started ranging over it.
func TestCloneLockedIndependentOfLiveWrites(t *testing.T) {
	ks := New(1)
	ks.Lock()
	d := ks.DB(0)

	l := NewList()
	l.PushBack([]byte("a"))
	d.Put("list", &Entry{Kind: KindList, Value: l})

	s := NewSet()
	s.Add([]byte("m1"))
	d.Put("set", &Entry{Kind: KindSet, Value: s})

	h := NewHash()
	h.Set([]byte("f"), []byte("v1"))
	d.Put("hash", &Entry{Kind: KindHash, Value: h})

	z := NewZSet()
	z.Add("m1", 1, AddDefault, CompareNone, false)
	d.Put("zset", &Entry{Kind: KindZSet, Value: z})

	images := ks.CloneLocked()
	ks.Unlock()

	// Mutate the live values as a concurrent command handler would.
	l.PushBack([]byte("b"))
	s.Add([]byte("m2"))
	h.Set([]byte("f"), []byte("v2"))
	z.Add("m2", 2, AddDefault, CompareNone, false)

	img := images[0]

	clonedList := img.Entries["list"].Value.(*List)
	if clonedList.Len() != 1 {
		t.Fatalf("cloned list should be unaffected by later PushBack, len=%d", clonedList.Len())
	}

	clonedSet := img.Entries["set"].Value.(Set)
	if len(clonedSet) != 1 {
		t.Fatalf("cloned set should be unaffected by later Add, len=%d", len(clonedSet))
	}

	clonedHash := img.Entries["hash"].Value.(Hash)
	if v, _ := clonedHash.Get([]byte("f")); string(v) != "v1" {
		t.Fatalf("cloned hash field should keep old value, got %q", v)
	}

	clonedZSet := img.Entries["zset"].Value.(*ZSet)
	if clonedZSet.Card() != 1 {
		t.Fatalf("cloned zset should be unaffected by later Add, card=%d", clonedZSet.Card())
	}
}

func TestCloneLockedSharesStringValues(t *testing.T) {
	ks := New(1)
	ks.Lock()
	d := ks.DB(0)
	d.Put("k", &Entry{Kind: KindString, Value: []byte("v")})
	images := ks.CloneLocked()
	ks.Unlock()

	if images[0].Entries["k"] != ks.DB(0).entries["k"] {
		t.Fatalf("string entries should be shared (copy-on-write), not duplicated")
	}
}
