package keyspace

import (
	"sync"
	"sync/atomic"
	"time"
)

// DB is one numbered database. All methods assume the owning Keyspace's
// lock is already held by the caller — see the package doc comment.
type DB struct {
	entries map[string]*Entry
	expires map[string]struct{}
	ks      *Keyspace // for hit/miss/expiry accounting; nil in standalone tests
}

func newDB() *DB {
	return &DB{
		entries: make(map[string]*Entry),
		expires: make(map[string]struct{}),
	}
}

// Keyspace owns N numbered databases behind a single mutex (§5: "a single
// lock protects the entire keyspace, all databases"). Handlers in the
// command dispatcher call Lock once per request and then use the
// lock-assuming DB accessors directly; external callers (snapshotter, reaper) call
// Lock/Unlock around their own short critical sections.
type Keyspace struct {
	mu  sync.Mutex
	dbs []*DB
	now func() int64

	hits, misses, expiredKeys atomic.Int64
}

// New creates a Keyspace with n databases.
func New(n int) *Keyspace {
	if n <= 0 {
		n = 16
	}
	ks := &Keyspace{now: nowMS}
	dbs := make([]*DB, n)
	for i := range dbs {
		dbs[i] = newDB()
		dbs[i].ks = ks
	}
	ks.dbs = dbs
	return ks
}

// HitCount, MissCount, and ExpiredKeyCount are cumulative counts of Get
// lookups and expirations observed since the Keyspace was created, read by
// the metrics registry (§11).
func (ks *Keyspace) HitCount() int64        { return ks.hits.Load() }
func (ks *Keyspace) MissCount() int64       { return ks.misses.Load() }
func (ks *Keyspace) ExpiredKeyCount() int64 { return ks.expiredKeys.Load() }

// IncrExpired records n keys removed by active expiration (the reaper); Get
// records lazy expirations itself.
func (ks *Keyspace) IncrExpired(n int64) { ks.expiredKeys.Add(n) }

func nowMS() int64 { return time.Now().UnixMilli() }

func (ks *Keyspace) Lock()   { ks.mu.Lock() }
func (ks *Keyspace) Unlock() { ks.mu.Unlock() }

// NumDB returns the number of configured databases.
func (ks *Keyspace) NumDB() int { return len(ks.dbs) }

// DB returns the database at index i. Caller must hold the keyspace lock.
// Panics on an out-of-range index; callers validate with ValidDB first.
func (ks *Keyspace) DB(i int) *DB { return ks.dbs[i] }

// DBSize returns the key count of database i. Caller must hold the
// keyspace lock; used by the metrics collector on scrape.
func (ks *Keyspace) DBSize(i int) int { return ks.dbs[i].Size() }

func (ks *Keyspace) ValidDB(i int) bool { return i >= 0 && i < len(ks.dbs) }

// NowMS returns the current time in Unix milliseconds, via the keyspace's
// clock so tests can substitute a fake one.
func (ks *Keyspace) NowMS() int64 { return ks.now() }

// --- DB accessors (caller holds the keyspace lock) ---

// Get returns the live entry for key, deleting and reporting absent if it
// has lazily expired (§4.2).
func (d *DB) Get(key string, nowMS int64) (*Entry, bool) {
	e, ok := d.entries[key]
	if !ok {
		d.recordMiss()
		return nil, false
	}
	if e.expiredAt(nowMS) {
		d.deleteKey(key)
		d.recordMiss()
		if d.ks != nil {
			d.ks.expiredKeys.Add(1)
		}
		return nil, false
	}
	d.recordHit()
	return e, true
}

func (d *DB) recordHit() {
	if d.ks != nil {
		d.ks.hits.Add(1)
	}
}

func (d *DB) recordMiss() {
	if d.ks != nil {
		d.ks.misses.Add(1)
	}
}

func (d *DB) Put(key string, e *Entry) {
	d.entries[key] = e
	if e.hasExpiry() {
		d.expires[key] = struct{}{}
	} else {
		delete(d.expires, key)
	}
}

func (d *DB) Delete(key string) bool {
	if _, ok := d.entries[key]; !ok {
		return false
	}
	d.deleteKey(key)
	return true
}

func (d *DB) deleteKey(key string) {
	delete(d.entries, key)
	delete(d.expires, key)
}

func (d *DB) Exists(key string, nowMS int64) bool {
	_, ok := d.Get(key, nowMS)
	return ok
}

func (d *DB) SetExpiry(key string, atMS int64) bool {
	e, ok := d.entries[key]
	if !ok {
		return false
	}
	e.ExpireAt = atMS
	d.expires[key] = struct{}{}
	return true
}

func (d *DB) ClearExpiry(key string) bool {
	e, ok := d.entries[key]
	if !ok || !e.hasExpiry() {
		return false
	}
	e.ExpireAt = 0
	delete(d.expires, key)
	return true
}

// Rename moves the entry at from to to, preserving value and expiry.
// Returns false if from does not exist (after lazy-expiry).
func (d *DB) Rename(from, to string, nowMS int64) bool {
	e, ok := d.Get(from, nowMS)
	if !ok {
		return false
	}
	d.deleteKey(from)
	d.Put(to, e)
	return true
}

func (d *DB) Size() int { return len(d.entries) }

func (d *DB) Flush() {
	d.entries = make(map[string]*Entry)
	d.expires = make(map[string]struct{})
}

// RandomKey returns a resident key, relying on Go's randomized map
// iteration order rather than maintaining a separate index, or "" if the
// database is empty.
func (d *DB) RandomKey(nowMS int64) (string, bool) {
	for k, e := range d.entries {
		if e.expiredAt(nowMS) {
			continue
		}
		return k, true
	}
	return "", false
}

// sampleExpiring returns up to n keys that carry an expiry, chosen by the
// map's randomized iteration order — used by the reaper (§4.4).
func (d *DB) sampleExpiring(n int) []string {
	if n <= 0 || len(d.expires) == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for k := range d.expires {
		out = append(out, k)
		if len(out) >= n {
			break
		}
	}
	return out
}

// DBImage is a point-in-time copy of one database's entries for BGSAVE.
// String entries are shared with the live database: SET/APPEND/etc. always
// install a freshly allocated []byte rather than writing into an existing
// one, so sharing is safe copy-on-write. List/Set/Hash/ZSet entries are
// deep-copied by cloneEntry, because their handlers (LPUSH's node links,
// SADD/HSET's map writes, ZADD's skiplist insert) mutate the live value in
// place — without the deep copy, a snapshot encoder ranging over a List's
// nodes or a Set/Hash map concurrently with such a write would see a torn
// read or, for the map kinds, crash with "concurrent map read and map
// write".
type DBImage struct {
	Entries map[string]*Entry
}

// cloneEntry returns an Entry holding an independent copy of e's value for
// the kinds that are mutated in place; string entries are returned as-is.
func cloneEntry(e *Entry) *Entry {
	switch e.Kind {
	case KindList:
		return &Entry{Kind: e.Kind, Value: e.Value.(*List).Clone(), ExpireAt: e.ExpireAt}
	case KindSet:
		return &Entry{Kind: e.Kind, Value: e.Value.(Set).Clone(), ExpireAt: e.ExpireAt}
	case KindHash:
		return &Entry{Kind: e.Kind, Value: e.Value.(Hash).Clone(), ExpireAt: e.ExpireAt}
	case KindZSet:
		return &Entry{Kind: e.Kind, Value: e.Value.(*ZSet).Clone(), ExpireAt: e.ExpireAt}
	default:
		return e
	}
}

// CloneLocked returns a point-in-time image of every database, safe to
// serialize after the keyspace lock is released. Caller must hold the
// keyspace lock; typically used for the instant of a BGSAVE.
func (ks *Keyspace) CloneLocked() []DBImage {
	out := make([]DBImage, len(ks.dbs))
	for i, d := range ks.dbs {
		m := make(map[string]*Entry, len(d.entries))
		for k, e := range d.entries {
			m[k] = cloneEntry(e)
		}
		out[i] = DBImage{Entries: m}
	}
	return out
}

// RestoreLocked replaces every database's contents with images, used at
// startup to load a snapshot before the server accepts connections. Caller
// must hold the keyspace lock. Databases beyond len(images) are left empty;
// images beyond NumDB() are ignored.
func (ks *Keyspace) RestoreLocked(images []DBImage) {
	for i, d := range ks.dbs {
		d.Flush()
		if i >= len(images) {
			continue
		}
		for k, e := range images[i].Entries {
			d.Put(k, e)
		}
	}
}
