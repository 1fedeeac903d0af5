package redisserver

import (
	"math/rand"
	"strconv"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func getHash(db *keyspace.DB, now int64, key string, create bool) (keyspace.Hash, *keyspace.Entry, error) {
	e, ok := db.Get(key, now)
	if !ok {
		if !create {
			return nil, nil, nil
		}
		h := keyspace.NewHash()
		return h, &keyspace.Entry{Kind: keyspace.KindHash, Value: h}, nil
	}
	if e.Kind != keyspace.KindHash {
		return nil, nil, keyspace.ErrWrongType
	}
	return e.Value.(keyspace.Hash), e, nil
}

func cmdHSet(s *Server, c *Conn, args [][]byte) Reply {
	if (len(args)-2)%2 != 0 {
		return errorFrom(keyspace.ErrSyntax)
	}
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	created := int64(0)
	for i := 2; i < len(args); i += 2 {
		if h.Set(args[i], append([]byte(nil), args[i+1]...)) {
			created++
		}
	}
	db.Put(key, entry)
	return Integer(created)
}

func cmdHSetNX(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	if _, exists := h.Get(args[2]); exists {
		return Integer(0)
	}
	h.Set(args[2], append([]byte(nil), args[3]...))
	db.Put(key, entry)
	return Integer(1)
}

func cmdHGet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if h == nil {
		return NilBulk()
	}
	v, ok := h.Get(args[2])
	if !ok {
		return NilBulk()
	}
	return BulkFrom(v)
}

func cmdHDel(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if h == nil {
		return Integer(0)
	}
	removed := int64(0)
	for _, f := range args[2:] {
		if h.Delete(f) {
			removed++
		}
	}
	if len(h) == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(removed)
}

func cmdHExists(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if h == nil {
		return Integer(0)
	}
	if _, ok := h.Get(args[2]); ok {
		return Integer(1)
	}
	return Integer(0)
}

func cmdHLen(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	return Integer(int64(len(h)))
}

func cmdHKeys(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	return BulkStringArray(out...)
}

func cmdHVals(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	out := make([][]byte, 0, len(h))
	for _, v := range h {
		out = append(out, v)
	}
	return BulkArray(out...)
}

func cmdHGetAll(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	items := make([]Reply, 0, len(h)*2)
	for k, v := range h {
		items = append(items, BulkString(k), BulkFrom(v))
	}
	return Array{Items: items}
}

func cmdHMGet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	items := make([]Reply, 0, len(args)-2)
	for _, f := range args[2:] {
		if h == nil {
			items = append(items, NilBulk())
			continue
		}
		v, ok := h.Get(f)
		if !ok {
			items = append(items, NilBulk())
			continue
		}
		items = append(items, BulkFrom(v))
	}
	return Array{Items: items}
}

func cmdHMSet(s *Server, c *Conn, args [][]byte) Reply {
	if (len(args)-2)%2 != 0 {
		return errorFrom(keyspace.ErrSyntax)
	}
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	for i := 2; i < len(args); i += 2 {
		h.Set(args[i], append([]byte(nil), args[i+1]...))
	}
	db.Put(key, entry)
	return OK
}

func cmdHIncrBy(s *Server, c *Conn, args [][]byte) Reply {
	delta, err := keyspace.ParseInt(args[3])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	var cur int64
	if v, ok := h.Get(args[2]); ok {
		cur, err = keyspace.ParseInt(v)
		if err != nil {
			return errorFrom(err)
		}
	}
	next := cur + delta
	h.Set(args[2], []byte(strconv.FormatInt(next, 10)))
	db.Put(key, entry)
	return Integer(next)
}

func cmdHIncrByFloat(s *Server, c *Conn, args [][]byte) Reply {
	delta, err := keyspace.ParseFloat(args[3])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	h, entry, err := getHash(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	var cur float64
	if v, ok := h.Get(args[2]); ok {
		cur, err = keyspace.ParseFloat(v)
		if err != nil {
			return errorFrom(err)
		}
	}
	next := cur + delta
	out := []byte(keyspace.FormatFloat(next))
	h.Set(args[2], out)
	db.Put(key, entry)
	return BulkFrom(out)
}

func cmdHScan(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
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
	for k := range h {
		names = append(names, k)
	}
	res := keyspace.ScanMembers(names, uint64(cursorN), pattern, count)
	items := make([]Reply, 0, len(res.Keys)*2)
	for _, k := range res.Keys {
		items = append(items, BulkString(k), BulkFrom(h[k]))
	}
	return ArrayOf(BulkString(strconv.FormatUint(res.Cursor, 10)), Array{Items: items})
}

func cmdHRandField(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	h, _, err := getHash(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if len(args) == 2 {
		if h == nil {
			return NilBulk()
		}
		keys := make([]string, 0, len(h))
		for k := range h {
			keys = append(keys, k)
		}
		return BulkString(keys[rand.Intn(len(keys))])
	}

	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	withValues := len(args) > 3
	if h == nil {
		return Array{}
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}

	count := int(n)
	var picked []string
	if count >= 0 {
		rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		if count > len(keys) {
			count = len(keys)
		}
		picked = keys[:count]
	} else {
		picked = make([]string, -count)
		for i := range picked {
			picked[i] = keys[rand.Intn(len(keys))]
		}
	}

	if !withValues {
		return BulkStringArray(picked...)
	}
	items := make([]Reply, 0, len(picked)*2)
	for _, k := range picked {
		items = append(items, BulkString(k), BulkFrom(h[k]))
	}
	return Array{Items: items}
}
