package redisserver

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunSavePoints_FiresWhenDueAndDirty(t *testing.T) {
	s := newTestServer()
	s.IncrDirty(5)

	var saves atomic.Int32
	s.BGSaveFunc = func() { saves.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	RunSavePoints(ctx, s, []SavePoint{{IntervalSeconds: 0, MinChanges: 1}}, 5*time.Millisecond)

	if saves.Load() == 0 {
		t.Fatal("expected at least one save to fire")
	}
}

func TestRunSavePoints_SkipsWhenNotDirtyEnough(t *testing.T) {
	s := newTestServer()
	s.IncrDirty(1)

	var saves atomic.Int32
	s.BGSaveFunc = func() { saves.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	RunSavePoints(ctx, s, []SavePoint{{IntervalSeconds: 0, MinChanges: 100}}, 5*time.Millisecond)

	if saves.Load() != 0 {
		t.Fatalf("expected no save to fire, got %d", saves.Load())
	}
}

func TestRunSavePoints_NoPointsIsNoop(t *testing.T) {
	s := newTestServer()
	s.BGSaveFunc = func() { t.Fatal("should never be called") }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	RunSavePoints(ctx, s, nil, time.Millisecond)
}
