package keyspace

import "github.com/spaolacci/murmur3"

// scanBuckets is the size of the virtual bucket space SCAN-family cursors
// iterate over. It is independent of how many keys actually exist or how
// the live Go map happens to be sized internally — that independence is
// exactly what makes the cursor sequence stable while keys are concurrently
// added and removed (§4.2).
const scanBuckets = 1 << 14 // must stay a power of two
const scanMask = uint64(scanBuckets - 1)

// scanBucket assigns name to a virtual bucket.
func scanBucket(name string) uint64 {
	return murmur3.Sum64([]byte(name)) & scanMask
}

// reverseBits reverses the low `bits` bits of v.
func reverseBits(v uint64, bits int) uint64 {
	var r uint64
	for i := 0; i < bits; i++ {
		r |= ((v >> i) & 1) << (bits - 1 - i)
	}
	return r
}

func maskBits(mask uint64) int {
	bits := 0
	for mask != 0 {
		bits++
		mask >>= 1
	}
	return bits
}

var scanMaskBits = maskBits(scanMask)

// nextCursor advances a reverse-binary-bit cursor, the same algorithm
// Redis's dictScan uses: incrementing the reversed cursor is equivalent to
// a stable in-order walk of the bucket space that tolerates the table being
// resized between calls (this implementation's table never resizes, but
// the same property keeps the walk correct even as keys move between
// buckets is not needed here — the virtual bucket space is fixed forever).
func nextCursor(cursor uint64) uint64 {
	cursor = reverseBits(cursor, scanMaskBits)
	cursor++
	cursor = reverseBits(cursor, scanMaskBits)
	return cursor
}

// ScanResult is one page of a SCAN-family iteration.
type ScanResult struct {
	Cursor uint64
	Keys   []string
}

// scanNames walks names (db keys, or set/hash/zset member names) bucketed
// by scanBucket, starting at cursor (0 begins a new scan), visiting
// buckets until at least countHint items have been collected or the table
// has been fully walked (cursor wraps back to 0). match, if non-empty, is a
// glob filter applied before counting toward countHint.
func scanNames(names []string, cursor uint64, match string, countHint int) ScanResult {
	if countHint <= 0 {
		countHint = 10
	}
	buckets := make(map[uint64][]string, countHint)
	for _, n := range names {
		b := scanBucket(n)
		buckets[b] = append(buckets[b], n)
	}

	var out []string
	c := cursor
	visited := 0
	for {
		for _, n := range buckets[c] {
			if match == "" || Glob(match, n) {
				out = append(out, n)
			}
		}
		c = nextCursor(c)
		visited++
		if c == 0 {
			return ScanResult{Cursor: 0, Keys: out}
		}
		if len(out) >= countHint || visited >= scanBuckets {
			return ScanResult{Cursor: c, Keys: out}
		}
	}
}

// ScanMembers applies the same cursor contract as Scan to an arbitrary name
// list, used by SSCAN/HSCAN/ZSCAN over a collection's member names.
func ScanMembers(names []string, cursor uint64, match string, countHint int) ScanResult {
	return scanNames(names, cursor, match, countHint)
}

// Scan implements the SCAN command's cursor contract over a database's
// live (non-expired) keys.
func (ks *Keyspace) Scan(dbIdx int, cursor uint64, match string, countHint int) ScanResult {
	d := ks.dbs[dbIdx]
	now := ks.now()
	names := make([]string, 0, len(d.entries))
	for k, e := range d.entries {
		if !e.expiredAt(now) {
			names = append(names, k)
		}
	}
	return scanNames(names, cursor, match, countHint)
}
