package keyspace

// Set is an unordered collection of unique byte strings, keyed by the
// string conversion of the member bytes (safe: Go string keys are
// immutable copies of the bytes at the time of conversion).
type Set map[string]struct{}

func NewSet() Set { return make(Set) }

func (s Set) Add(member []byte) bool {
	k := string(member)
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

func (s Set) Remove(member []byte) bool {
	k := string(member)
	if _, ok := s[k]; !ok {
		return false
	}
	delete(s, k)
	return true
}

func (s Set) Has(member []byte) bool {
	_, ok := s[string(member)]
	return ok
}

func (s Set) Members() [][]byte {
	out := make([][]byte, 0, len(s))
	for k := range s {
		out = append(out, []byte(k))
	}
	return out
}

// Clone returns an independent copy of the map underlying s, so a live
// SADD/SREM on the original after Clone cannot race with a reader ranging
// over the copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// SetUnion returns a new Set holding every member present in any of sets.
func SetUnion(sets ...Set) Set { return unionSets(sets...) }

// SetIntersect returns a new Set holding only members present in every set.
func SetIntersect(sets ...Set) Set { return intersectSets(sets...) }

// SetDiff returns a new Set holding members of sets[0] absent from every
// other set.
func SetDiff(sets ...Set) Set { return diffSets(sets...) }

func unionSets(sets ...Set) Set {
	out := NewSet()
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

func intersectSets(sets ...Set) Set {
	out := NewSet()
	if len(sets) == 0 {
		return out
	}
	for k := range sets[0] {
		inAll := true
		for _, s := range sets[1:] {
			if _, ok := s[k]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out[k] = struct{}{}
		}
	}
	return out
}

func diffSets(sets ...Set) Set {
	out := NewSet()
	if len(sets) == 0 {
		return out
	}
	for k := range sets[0] {
		out[k] = struct{}{}
	}
	for _, s := range sets[1:] {
		for k := range s {
			delete(out, k)
		}
	}
	return out
}
