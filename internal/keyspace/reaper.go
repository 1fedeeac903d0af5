package keyspace

import (
	"context"
	"time"
)

// ReaperConfig tunes the active-expiration cycle (§4.4).
type ReaperConfig struct {
	// Interval between cycles. Default 100ms.
	Interval time.Duration
	// SampleSize is how many keys-with-expiry are sampled per database per
	// sub-iteration. Default 20.
	SampleSize int
	// RepeatThreshold: if more than this fraction of a sample was expired,
	// the sub-iteration repeats within the same cycle. Default 0.25.
	RepeatThreshold float64
	// MaxIterations bounds the repeats within one cycle, so a database full
	// of expired keys can't stall the reaper goroutine indefinitely.
	MaxIterations int
}

func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval:        100 * time.Millisecond,
		SampleSize:      20,
		RepeatThreshold: 0.25,
		MaxIterations:   16,
	}
}

// Reaper periodically evicts expired keys so memory isn't held by entries
// no client will ever see live again, bounding the tail latency a lazy-only
// scheme would otherwise push onto whichever client happens to touch a
// long-dead key first.
type Reaper struct {
	ks       *Keyspace
	cfg      ReaperConfig
	onEvict  func(db int, key string)
}

func NewReaper(ks *Keyspace, cfg ReaperConfig, onEvict func(db int, key string)) *Reaper {
	if cfg.Interval <= 0 {
		cfg = DefaultReaperConfig()
	}
	return &Reaper{ks: ks, cfg: cfg, onEvict: onEvict}
}

// Run blocks, running cycles until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle()
		}
	}
}

func (r *Reaper) cycle() {
	r.ks.Lock()
	defer r.ks.Unlock()

	for dbIdx, d := range r.ks.dbs {
		for iter := 0; iter < r.cfg.MaxIterations; iter++ {
			sample := d.sampleExpiring(r.cfg.SampleSize)
			if len(sample) == 0 {
				break
			}
			now := r.ks.now()
			expired := 0
			for _, key := range sample {
				e, ok := d.entries[key]
				if !ok {
					continue
				}
				if e.expiredAt(now) {
					d.deleteKey(key)
					expired++
					if r.onEvict != nil {
						r.onEvict(dbIdx, key)
					}
				}
			}
			if expired > 0 {
				r.ks.expiredKeys.Add(int64(expired))
			}
			if float64(expired) <= r.cfg.RepeatThreshold*float64(len(sample)) {
				break
			}
		}
	}
}
