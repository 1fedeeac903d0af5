package redisserver

import (
	"math/rand"
	"strconv"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func getSet(db *keyspace.DB, now int64, key string, create bool) (keyspace.Set, *keyspace.Entry, error) {
	e, ok := db.Get(key, now)
	if !ok {
		if !create {
			return nil, nil, nil
		}
		set := keyspace.NewSet()
		return set, &keyspace.Entry{Kind: keyspace.KindSet, Value: set}, nil
	}
	if e.Kind != keyspace.KindSet {
		return nil, nil, keyspace.ErrWrongType
	}
	return e.Value.(keyspace.Set), e, nil
}

func cmdSAdd(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	set, entry, err := getSet(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	added := int64(0)
	for _, m := range args[2:] {
		if set.Add(m) {
			added++
		}
	}
	db.Put(key, entry)
	return Integer(added)
}

func cmdSRem(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	set, entry, err := getSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if set == nil {
		return Integer(0)
	}
	removed := int64(0)
	for _, m := range args[2:] {
		if set.Remove(m) {
			removed++
		}
	}
	if len(set) == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(removed)
}

func cmdSIsMember(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if set == nil || !set.Has(args[2]) {
		return Integer(0)
	}
	return Integer(1)
}

func cmdSMIsMember(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	items := make([]Reply, 0, len(args)-2)
	for _, m := range args[2:] {
		if set != nil && set.Has(m) {
			items = append(items, Integer(1))
		} else {
			items = append(items, Integer(0))
		}
	}
	return Array{Items: items}
}

func cmdSCard(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	return Integer(int64(len(set)))
}

func cmdSMembers(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	return BulkArray(set.Members()...)
}

func cmdSPop(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	set, entry, err := getSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if set == nil {
		if len(args) > 2 {
			return Array{}
		}
		return NilBulk()
	}

	count := 1
	multi := len(args) > 2
	if multi {
		n, err := keyspace.ParseInt(args[2])
		if err != nil {
			return errorFrom(err)
		}
		count = int(n)
	}

	members := set.Members()
	rand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	if count > len(members) {
		count = len(members)
	}
	picked := members[:count]
	for _, m := range picked {
		set.Remove(m)
	}
	if len(set) == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}

	if multi {
		return BulkArray(picked...)
	}
	if len(picked) == 0 {
		return NilBulk()
	}
	return BulkFrom(picked[0])
}

func cmdSRandMember(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if set == nil {
		if len(args) > 2 {
			return Array{}
		}
		return NilBulk()
	}
	members := set.Members()
	if len(args) == 2 {
		return BulkFrom(members[rand.Intn(len(members))])
	}
	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	count := int(n)
	if count >= 0 {
		rand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		if count > len(members) {
			count = len(members)
		}
		return BulkArray(members[:count]...)
	}
	// Negative count: may repeat members.
	out := make([][]byte, -count)
	for i := range out {
		out[i] = members[rand.Intn(len(members))]
	}
	return BulkArray(out...)
}

func setsFromKeys(db *keyspace.DB, now int64, keys [][]byte) ([]keyspace.Set, error) {
	sets := make([]keyspace.Set, 0, len(keys))
	for _, k := range keys {
		set, _, err := getSet(db, now, string(k), false)
		if err != nil {
			return nil, err
		}
		if set == nil {
			set = keyspace.NewSet()
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func setOp(s *Server, c *Conn, args [][]byte, combine func(...keyspace.Set) keyspace.Set) Reply {
	db := s.ks.DB(c.session.DB())
	sets, err := setsFromKeys(db, s.ks.NowMS(), args[1:])
	if err != nil {
		return errorFrom(err)
	}
	result := combine(sets...)
	return BulkArray(result.Members()...)
}

func setOpStore(s *Server, c *Conn, args [][]byte, combine func(...keyspace.Set) keyspace.Set) Reply {
	db := s.ks.DB(c.session.DB())
	dst := string(args[1])
	sets, err := setsFromKeys(db, s.ks.NowMS(), args[2:])
	if err != nil {
		return errorFrom(err)
	}
	result := combine(sets...)
	if len(result) == 0 {
		db.Delete(dst)
		return Integer(0)
	}
	db.Put(dst, &keyspace.Entry{Kind: keyspace.KindSet, Value: result})
	return Integer(int64(len(result)))
}

func cmdSUnion(s *Server, c *Conn, args [][]byte) Reply      { return setOp(s, c, args, keyspace.SetUnion) }
func cmdSInter(s *Server, c *Conn, args [][]byte) Reply      { return setOp(s, c, args, keyspace.SetIntersect) }
func cmdSDiff(s *Server, c *Conn, args [][]byte) Reply       { return setOp(s, c, args, keyspace.SetDiff) }
func cmdSUnionStore(s *Server, c *Conn, args [][]byte) Reply { return setOpStore(s, c, args, keyspace.SetUnion) }
func cmdSInterStore(s *Server, c *Conn, args [][]byte) Reply { return setOpStore(s, c, args, keyspace.SetIntersect) }
func cmdSDiffStore(s *Server, c *Conn, args [][]byte) Reply  { return setOpStore(s, c, args, keyspace.SetDiff) }

func cmdSMove(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	src, srcEntry, err := getSet(db, now, string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if src == nil || !src.Has(args[3]) {
		return Integer(0)
	}
	dst, dstEntry, err := getSet(db, now, string(args[2]), true)
	if err != nil {
		return errorFrom(err)
	}
	src.Remove(args[3])
	dst.Add(args[3])
	if len(src) == 0 {
		db.Delete(string(args[1]))
	} else {
		db.Put(string(args[1]), srcEntry)
	}
	db.Put(string(args[2]), dstEntry)
	return Integer(1)
}

func cmdSScan(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	set, _, err := getSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	cursorN, cerr := keyspace.ParseInt(args[2])
	if cerr != nil {
		return errorFrom(cerr)
	}
	pattern, count, perr := parseScanOpts(args[3:])
	if perr != nil {
		return errorFrom(perr)
	}
	var names []string
	if set != nil {
		for _, m := range set.Members() {
			names = append(names, string(m))
		}
	}
	res := keyspace.ScanMembers(names, uint64(cursorN), pattern, count)
	return ArrayOf(BulkString(strconv.FormatUint(res.Cursor, 10)), BulkStringArray(res.Keys...))
}
