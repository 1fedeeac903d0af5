package redisserver

import (
	"context"
	"time"
)

// SavePoint is one (interval, min-changes) automatic-save rule (§4.7,
// §13): "save if at least MinChanges keys changed in the last
// IntervalSeconds seconds".
type SavePoint struct {
	IntervalSeconds int
	MinChanges      int
}

// RunSavePoints polls the server's dirty counter against cfg and calls
// server.BGSaveFunc whenever a rule is satisfied; when any rule fires,
// every rule's clock is reset. It blocks until ctx is cancelled.
func RunSavePoints(ctx context.Context, s *Server, points []SavePoint, tick time.Duration) {
	if len(points) == 0 || s.BGSaveFunc == nil {
		return
	}
	if tick <= 0 {
		tick = time.Second
	}
	last := make([]time.Time, len(points))
	now := time.Now()
	for i := range last {
		last[i] = now
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			dirty := s.DirtyCount()
			for i, p := range points {
				if dirty >= int64(p.MinChanges) && t.Sub(last[i]) >= time.Duration(p.IntervalSeconds)*time.Second {
					s.BGSaveFunc()
					for j := range last {
						last[j] = t
					}
					break
				}
			}
		}
	}
}
