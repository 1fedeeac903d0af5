package redisserver

import (
	"strconv"
	"strings"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func getString(db *keyspace.DB, now int64, key string) ([]byte, *keyspace.Entry, error) {
	e, ok := db.Get(key, now)
	if !ok {
		return nil, nil, nil
	}
	if e.Kind != keyspace.KindString {
		return nil, nil, keyspace.ErrWrongType
	}
	return e.Value.([]byte), e, nil
}

func cmdGet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	v, _, err := getString(db, s.ks.NowMS(), string(args[1]))
	if err != nil {
		return errorFrom(err)
	}
	return BulkFrom(v)
}

// SET key value [EX seconds|PX ms|EXAT ts|PXAT ts|KEEPTTL] [NX|XX] [GET]
func cmdSet(s *Server, c *Conn, args [][]byte) Reply {
	key := string(args[1])
	value := args[2]
	now := s.ks.NowMS()

	var expireAt int64
	keepTTL := false
	var nx, xx, get bool

	for i := 3; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "GET":
			get = true
		case "KEEPTTL":
			keepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if i+1 >= len(args) {
				return errorFrom(keyspace.ErrSyntax)
			}
			n, err := keyspace.ParseInt(args[i+1])
			if err != nil {
				return errorFrom(err)
			}
			switch opt {
			case "EX":
				expireAt = now + n*1000
			case "PX":
				expireAt = now + n
			case "EXAT":
				expireAt = n * 1000
			case "PXAT":
				expireAt = n
			}
			i++
		default:
			return errorFrom(keyspace.ErrSyntax)
		}
	}

	db := s.ks.DB(c.session.DB())
	existing, exists := db.Get(key, now)

	var old Reply = NilBulk()
	if get {
		if exists && existing.Kind != keyspace.KindString {
			return errorFrom(keyspace.ErrWrongType)
		}
		if exists {
			old = BulkFrom(existing.Value.([]byte))
		}
	}

	if nx && exists {
		if get {
			return old
		}
		return NilBulk()
	}
	if xx && !exists {
		if get {
			return old
		}
		return NilBulk()
	}

	entry := &keyspace.Entry{Kind: keyspace.KindString, Value: append([]byte(nil), value...)}
	if keepTTL && exists {
		entry.ExpireAt = existing.ExpireAt
	} else {
		entry.ExpireAt = expireAt
	}
	db.Put(key, entry)

	if get {
		return old
	}
	return OK
}

func cmdSetNX(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	if db.Exists(string(args[1]), s.ks.NowMS()) {
		return Integer(0)
	}
	db.Put(string(args[1]), &keyspace.Entry{Kind: keyspace.KindString, Value: append([]byte(nil), args[2]...)})
	return Integer(1)
}

func cmdSetEX(s *Server, c *Conn, args [][]byte) Reply {
	seconds, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	db.Put(string(args[1]), &keyspace.Entry{
		Kind:     keyspace.KindString,
		Value:    append([]byte(nil), args[3]...),
		ExpireAt: s.ks.NowMS() + seconds*1000,
	})
	return OK
}

func cmdPSetEX(s *Server, c *Conn, args [][]byte) Reply {
	ms, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	db.Put(string(args[1]), &keyspace.Entry{
		Kind:     keyspace.KindString,
		Value:    append([]byte(nil), args[3]...),
		ExpireAt: s.ks.NowMS() + ms,
	})
	return OK
}

func cmdGetSet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	v, _, err := getString(db, now, string(args[1]))
	if err != nil {
		return errorFrom(err)
	}
	db.Put(string(args[1]), &keyspace.Entry{Kind: keyspace.KindString, Value: append([]byte(nil), args[2]...)})
	return BulkFrom(v)
}

func cmdAppend(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	key := string(args[1])
	v, existing, err := getString(db, now, key)
	if err != nil {
		return errorFrom(err)
	}
	newVal := append(append([]byte(nil), v...), args[2]...)
	expireAt := int64(0)
	if existing != nil {
		expireAt = existing.ExpireAt
	}
	db.Put(key, &keyspace.Entry{Kind: keyspace.KindString, Value: newVal, ExpireAt: expireAt})
	return Integer(int64(len(newVal)))
}

func cmdStrlen(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	v, _, err := getString(db, s.ks.NowMS(), string(args[1]))
	if err != nil {
		return errorFrom(err)
	}
	return Integer(int64(len(v)))
}

func incrBy(s *Server, c *Conn, key string, delta int64) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	v, existing, err := getString(db, now, key)
	if err != nil {
		return errorFrom(err)
	}
	var cur int64
	if v != nil {
		cur, err = keyspace.ParseInt(v)
		if err != nil {
			return errorFrom(err)
		}
	}
	next := cur + delta
	expireAt := int64(0)
	if existing != nil {
		expireAt = existing.ExpireAt
	}
	db.Put(key, &keyspace.Entry{Kind: keyspace.KindString, Value: []byte(strconv.FormatInt(next, 10)), ExpireAt: expireAt})
	return Integer(next)
}

func cmdIncr(s *Server, c *Conn, args [][]byte) Reply { return incrBy(s, c, string(args[1]), 1) }
func cmdDecr(s *Server, c *Conn, args [][]byte) Reply { return incrBy(s, c, string(args[1]), -1) }

func cmdIncrBy(s *Server, c *Conn, args [][]byte) Reply {
	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	return incrBy(s, c, string(args[1]), n)
}

func cmdDecrBy(s *Server, c *Conn, args [][]byte) Reply {
	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	return incrBy(s, c, string(args[1]), -n)
}

func cmdIncrByFloat(s *Server, c *Conn, args [][]byte) Reply {
	delta, err := keyspace.ParseFloat(args[2])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	key := string(args[1])
	v, existing, err := getString(db, now, key)
	if err != nil {
		return errorFrom(err)
	}
	var cur float64
	if v != nil {
		cur, err = keyspace.ParseFloat(v)
		if err != nil {
			return errorFrom(err)
		}
	}
	next := cur + delta
	expireAt := int64(0)
	if existing != nil {
		expireAt = existing.ExpireAt
	}
	out := []byte(keyspace.FormatFloat(next))
	db.Put(key, &keyspace.Entry{Kind: keyspace.KindString, Value: out, ExpireAt: expireAt})
	return BulkFrom(out)
}

func normalizeRange(start, stop, n int) (int, int, bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

func cmdGetRange(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	v, _, err := getString(db, s.ks.NowMS(), string(args[1]))
	if err != nil {
		return errorFrom(err)
	}
	start, err1 := keyspace.ParseInt(args[2])
	stop, err2 := keyspace.ParseInt(args[3])
	if err1 != nil || err2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	b, e, ok := normalizeRange(int(start), int(stop), len(v))
	if !ok {
		return BulkString("")
	}
	return BulkFrom(v[b : e+1])
}

func cmdSetRange(s *Server, c *Conn, args [][]byte) Reply {
	offset, err := keyspace.ParseInt(args[2])
	if err != nil || offset < 0 {
		return errorFrom(keyspace.ErrNotInteger)
	}
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	key := string(args[1])
	v, existing, err := getString(db, now, key)
	if err != nil {
		return errorFrom(err)
	}
	patch := args[3]
	end := int(offset) + len(patch)
	out := make([]byte, maxInt(len(v), end))
	copy(out, v)
	copy(out[offset:], patch)
	expireAt := int64(0)
	if existing != nil {
		expireAt = existing.ExpireAt
	}
	db.Put(key, &keyspace.Entry{Kind: keyspace.KindString, Value: out, ExpireAt: expireAt})
	return Integer(int64(len(out)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func cmdMGet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	items := make([]Reply, 0, len(args)-1)
	for _, k := range args[1:] {
		v, _, err := getString(db, now, string(k))
		if err != nil {
			items = append(items, NilBulk())
			continue
		}
		items = append(items, BulkFrom(v))
	}
	return Array{Items: items}
}

func cmdMSet(s *Server, c *Conn, args [][]byte) Reply {
	if (len(args)-1)%2 != 0 {
		return errorFrom(keyspace.ErrSyntax)
	}
	db := s.ks.DB(c.session.DB())
	for i := 1; i < len(args); i += 2 {
		db.Put(string(args[i]), &keyspace.Entry{Kind: keyspace.KindString, Value: append([]byte(nil), args[i+1]...)})
	}
	return OK
}

func cmdMSetNX(s *Server, c *Conn, args [][]byte) Reply {
	if (len(args)-1)%2 != 0 {
		return errorFrom(keyspace.ErrSyntax)
	}
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	for i := 1; i < len(args); i += 2 {
		if db.Exists(string(args[i]), now) {
			return Integer(0)
		}
	}
	for i := 1; i < len(args); i += 2 {
		db.Put(string(args[i]), &keyspace.Entry{Kind: keyspace.KindString, Value: append([]byte(nil), args[i+1]...)})
	}
	return Integer(1)
}
