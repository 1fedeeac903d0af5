package redisserver

import (
	"strings"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func getList(db *keyspace.DB, now int64, key string, create bool) (*keyspace.List, *keyspace.Entry, error) {
	e, ok := db.Get(key, now)
	if !ok {
		if !create {
			return nil, nil, nil
		}
		l := keyspace.NewList()
		entry := &keyspace.Entry{Kind: keyspace.KindList, Value: l}
		return l, entry, nil
	}
	if e.Kind != keyspace.KindList {
		return nil, nil, keyspace.ErrWrongType
	}
	return e.Value.(*keyspace.List), e, nil
}

func pushList(s *Server, c *Conn, args [][]byte, front, requireExists bool) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	key := string(args[1])

	l, entry, err := getList(db, now, key, !requireExists)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return Integer(0) // XX variant, key absent
	}
	for _, v := range args[2:] {
		if front {
			l.PushFront(append([]byte(nil), v...))
		} else {
			l.PushBack(append([]byte(nil), v...))
		}
	}
	db.Put(key, entry)
	return Integer(int64(l.Len()))
}

func cmdLPush(s *Server, c *Conn, args [][]byte) Reply  { return pushList(s, c, args, true, false) }
func cmdRPush(s *Server, c *Conn, args [][]byte) Reply  { return pushList(s, c, args, false, false) }
func cmdLPushX(s *Server, c *Conn, args [][]byte) Reply { return pushList(s, c, args, true, true) }
func cmdRPushX(s *Server, c *Conn, args [][]byte) Reply { return pushList(s, c, args, false, true) }

func popList(s *Server, c *Conn, args [][]byte, front bool) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	key := string(args[1])
	l, entry, err := getList(db, now, key, false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		if len(args) > 2 {
			return NilArray()
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

	var out []Reply
	for i := 0; i < count; i++ {
		var v []byte
		var ok bool
		if front {
			v, ok = l.PopFront()
		} else {
			v, ok = l.PopBack()
		}
		if !ok {
			break
		}
		out = append(out, BulkFrom(v))
	}
	if l.Len() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}

	if multi {
		return Array{Items: out}
	}
	if len(out) == 0 {
		return NilBulk()
	}
	return out[0]
}

func cmdLPop(s *Server, c *Conn, args [][]byte) Reply { return popList(s, c, args, true) }
func cmdRPop(s *Server, c *Conn, args [][]byte) Reply { return popList(s, c, args, false) }

func cmdLLen(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	l, _, err := getList(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return Integer(0)
	}
	return Integer(int64(l.Len()))
}

func cmdLRange(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	l, _, err := getList(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return Array{}
	}
	start, err1 := keyspace.ParseInt(args[2])
	stop, err2 := keyspace.ParseInt(args[3])
	if err1 != nil || err2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	return BulkArray(l.Range(int(start), int(stop))...)
}

func cmdLIndex(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	l, _, err := getList(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return NilBulk()
	}
	idx, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	v, ok := l.Index(int(idx))
	if !ok {
		return NilBulk()
	}
	return BulkFrom(v)
}

func cmdLSet(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	l, _, err := getList(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return errorFrom(keyspace.ErrNoSuchKey)
	}
	idx, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	if !l.Set(int(idx), append([]byte(nil), args[3]...)) {
		return ErrorReply("ERR index out of range")
	}
	return OK
}

func cmdLTrim(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	l, entry, err := getList(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return OK
	}
	start, err1 := keyspace.ParseInt(args[2])
	stop, err2 := keyspace.ParseInt(args[3])
	if err1 != nil || err2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	l.Trim(int(start), int(stop))
	if l.Len() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return OK
}

func cmdLInsert(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	l, entry, err := getList(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return Integer(0)
	}
	before := strings.EqualFold(string(args[2]), "BEFORE")
	if !before && !strings.EqualFold(string(args[2]), "AFTER") {
		return errorFrom(keyspace.ErrSyntax)
	}
	var ok bool
	if before {
		ok = l.InsertBefore(args[3], append([]byte(nil), args[4]...))
	} else {
		ok = l.InsertAfter(args[3], append([]byte(nil), args[4]...))
	}
	if !ok {
		return Integer(-1)
	}
	db.Put(key, entry)
	return Integer(int64(l.Len()))
}

func cmdLRem(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	l, entry, err := getList(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return Integer(0)
	}
	count, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	removed := l.Remove(args[3], int(count))
	if l.Len() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(int64(removed))
}

func cmdLPos(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	l, _, err := getList(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if l == nil {
		return NilBulk()
	}
	rank := 1
	for i := 3; i < len(args); i += 2 {
		if strings.EqualFold(string(args[i]), "RANK") && i+1 < len(args) {
			n, err := keyspace.ParseInt(args[i+1])
			if err != nil {
				return errorFrom(err)
			}
			rank = int(n)
		}
	}
	pos := l.Pos(args[2], rank)
	if pos < 0 {
		return NilBulk()
	}
	return Integer(int64(pos))
}

// RPOPLPUSH source destination
func cmdRPopLPush(s *Server, c *Conn, args [][]byte) Reply {
	return moveListElement(s, c, string(args[1]), string(args[2]), false, true)
}

// LMOVE source destination LEFT|RIGHT LEFT|RIGHT
func cmdLMove(s *Server, c *Conn, args [][]byte) Reply {
	fromLeft := strings.EqualFold(string(args[3]), "LEFT")
	toLeft := strings.EqualFold(string(args[4]), "LEFT")
	return moveListElement(s, c, string(args[1]), string(args[2]), fromLeft, toLeft)
}

// BLPOP/BRPOP/BRPOPLPUSH/BLMOVE here are non-blocking aliases (§12),
// mirroring BZPOPMIN/BZPOPMAX in command_zset.go: they probe immediately
// and return nil on empty rather than waiting on new elements to arrive.

// BLPOP key [key ...] timeout
func cmdBLPop(s *Server, c *Conn, args [][]byte) Reply { return bPopList(s, c, args, true) }

// BRPOP key [key ...] timeout
func cmdBRPop(s *Server, c *Conn, args [][]byte) Reply { return bPopList(s, c, args, false) }

func bPopList(s *Server, c *Conn, args [][]byte, front bool) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	keys := args[1 : len(args)-1]
	for _, k := range keys {
		key := string(k)
		l, entry, err := getList(db, now, key, false)
		if err != nil {
			continue
		}
		if l == nil || l.Len() == 0 {
			continue
		}
		var v []byte
		var ok bool
		if front {
			v, ok = l.PopFront()
		} else {
			v, ok = l.PopBack()
		}
		if !ok {
			continue
		}
		if l.Len() == 0 {
			db.Delete(key)
		} else {
			db.Put(key, entry)
		}
		return ArrayOf(BulkString(key), BulkFrom(v))
	}
	return NilArray()
}

// BRPOPLPUSH source destination timeout
func cmdBRPopLPush(s *Server, c *Conn, args [][]byte) Reply {
	return moveListElement(s, c, string(args[1]), string(args[2]), false, true)
}

// BLMOVE source destination LEFT|RIGHT LEFT|RIGHT timeout
func cmdBLMove(s *Server, c *Conn, args [][]byte) Reply {
	fromLeft := strings.EqualFold(string(args[3]), "LEFT")
	toLeft := strings.EqualFold(string(args[4]), "LEFT")
	return moveListElement(s, c, string(args[1]), string(args[2]), fromLeft, toLeft)
}

func moveListElement(s *Server, c *Conn, src, dst string, popFront, pushFront bool) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	srcList, srcEntry, err := getList(db, now, src, false)
	if err != nil {
		return errorFrom(err)
	}
	if srcList == nil {
		return NilBulk()
	}
	var v []byte
	var ok bool
	if popFront {
		v, ok = srcList.PopFront()
	} else {
		v, ok = srcList.PopBack()
	}
	if !ok {
		return NilBulk()
	}
	if srcList.Len() == 0 {
		db.Delete(src)
	} else {
		db.Put(src, srcEntry)
	}

	dstList, dstEntry, err := getList(db, now, dst, true)
	if err != nil {
		return errorFrom(err)
	}
	if pushFront {
		dstList.PushFront(v)
	} else {
		dstList.PushBack(v)
	}
	db.Put(dst, dstEntry)
	return BulkFrom(v)
}
