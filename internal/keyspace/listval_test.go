package keyspace

import (
	"bytes"
	"testing"
)

func TestListPushPop(t *testing.T) {
	l := NewList()
	l.PushBack([]byte("b"))
	l.PushFront([]byte("a"))
	l.PushBack([]byte("c"))

	if l.Len() != 3 {
		t.Fatalf("len=%d, want 3", l.Len())
	}
	got := l.Range(0, -1)
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if !bytes.Equal(got[i], []byte(w)) {
			t.Fatalf("position %d: got %s, want %s", i, got[i], w)
		}
	}

	v, ok := l.PopFront()
	if !ok || string(v) != "a" {
		t.Fatalf("PopFront = %s, %v", v, ok)
	}
	v, ok = l.PopBack()
	if !ok || string(v) != "c" {
		t.Fatalf("PopBack = %s, %v", v, ok)
	}
	if l.Len() != 1 {
		t.Fatalf("len=%d, want 1", l.Len())
	}
}

func TestListIndexAndSet(t *testing.T) {
	l := NewList()
	for _, s := range []string{"a", "b", "c"} {
		l.PushBack([]byte(s))
	}
	if v, ok := l.Index(-1); !ok || string(v) != "c" {
		t.Fatalf("Index(-1) = %s, %v", v, ok)
	}
	if !l.Set(1, []byte("x")) {
		t.Fatalf("Set failed")
	}
	if v, _ := l.Index(1); string(v) != "x" {
		t.Fatalf("Index(1) after Set = %s", v)
	}
	if l.Set(99, []byte("y")) {
		t.Fatalf("Set out of range should fail")
	}
}

func TestListRemove(t *testing.T) {
	l := NewList()
	for _, s := range []string{"a", "x", "b", "x", "c", "x"} {
		l.PushBack([]byte(s))
	}
	removed := l.Remove([]byte("x"), 2)
	if removed != 2 {
		t.Fatalf("removed=%d, want 2", removed)
	}
	got := l.Range(0, -1)
	want := []string{"a", "b", "c", "x"}
	if len(got) != len(want) {
		t.Fatalf("len=%d, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i], w)
		}
	}
}

func TestListTrim(t *testing.T) {
	l := NewList()
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		l.PushBack([]byte(s))
	}
	l.Trim(1, 3)
	got := l.Range(0, -1)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("len=%d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i], w)
		}
	}
}

func TestListInsertAndPos(t *testing.T) {
	l := NewList()
	l.PushBack([]byte("a"))
	l.PushBack([]byte("c"))
	if !l.InsertAfter([]byte("a"), []byte("b")) {
		t.Fatalf("InsertAfter failed")
	}
	got := l.Range(0, -1)
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i], w)
		}
	}
	if pos := l.Pos([]byte("b"), 1); pos != 1 {
		t.Fatalf("Pos(b)=%d, want 1", pos)
	}
	if pos := l.Pos([]byte("missing"), 1); pos != -1 {
		t.Fatalf("Pos(missing)=%d, want -1", pos)
	}
}
