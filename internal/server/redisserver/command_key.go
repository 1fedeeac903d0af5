package redisserver

import (
	"strconv"
	"strings"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func cmdDel(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	n := int64(0)
	for _, k := range args[1:] {
		if db.Delete(string(k)) {
			n++
		}
	}
	return Integer(n)
}

func cmdExists(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	n := int64(0)
	for _, k := range args[1:] {
		if db.Exists(string(k), now) {
			n++
		}
	}
	return Integer(n)
}

func cmdType(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	e, ok := db.Get(string(args[1]), s.ks.NowMS())
	if !ok {
		return SimpleString("none")
	}
	return SimpleString(e.Kind.String())
}

func cmdRename(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	if !db.Rename(string(args[1]), string(args[2]), now) {
		return errorFrom(keyspace.ErrNoSuchKey)
	}
	return OK
}

func cmdRenameNX(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	if !db.Exists(string(args[1]), now) {
		return errorFrom(keyspace.ErrNoSuchKey)
	}
	if db.Exists(string(args[2]), now) {
		return Integer(0)
	}
	db.Rename(string(args[1]), string(args[2]), now)
	return Integer(1)
}

func cmdExpire(s *Server, c *Conn, args [][]byte) Reply {
	return setExpireSeconds(s, c, args, false)
}

func cmdPExpire(s *Server, c *Conn, args [][]byte) Reply {
	return setExpireMillis(s, c, args, false)
}

func cmdExpireAt(s *Server, c *Conn, args [][]byte) Reply {
	return setExpireSeconds(s, c, args, true)
}

func cmdPExpireAt(s *Server, c *Conn, args [][]byte) Reply {
	return setExpireMillis(s, c, args, true)
}

func setExpireSeconds(s *Server, c *Conn, args [][]byte, absolute bool) Reply {
	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	at := n * 1000
	if !absolute {
		at += s.ks.NowMS()
	}
	return applyExpiry(s, c, string(args[1]), at)
}

func setExpireMillis(s *Server, c *Conn, args [][]byte, absolute bool) Reply {
	n, err := keyspace.ParseInt(args[2])
	if err != nil {
		return errorFrom(err)
	}
	at := n
	if !absolute {
		at += s.ks.NowMS()
	}
	return applyExpiry(s, c, string(args[1]), at)
}

func applyExpiry(s *Server, c *Conn, key string, at int64) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	if at <= now {
		if db.Delete(key) {
			return Integer(1)
		}
		return Integer(0)
	}
	if !db.SetExpiry(key, at) {
		return Integer(0)
	}
	return Integer(1)
}

func cmdPersist(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	if db.ClearExpiry(string(args[1])) {
		return Integer(1)
	}
	return Integer(0)
}

func cmdTTL(s *Server, c *Conn, args [][]byte) Reply {
	return ttlReply(s, c, args, time_seconds)
}

func cmdPTTL(s *Server, c *Conn, args [][]byte) Reply {
	return ttlReply(s, c, args, time_millis)
}

type ttlUnit int

const (
	time_seconds ttlUnit = iota
	time_millis
)

func ttlReply(s *Server, c *Conn, args [][]byte, unit ttlUnit) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	e, ok := db.Get(string(args[1]), now)
	if !ok {
		return Integer(-2)
	}
	if e.ExpireAt == 0 {
		return Integer(-1)
	}
	remMS := e.ExpireAt - now
	if remMS < 0 {
		remMS = 0
	}
	if unit == time_seconds {
		return Integer((remMS + 999) / 1000)
	}
	return Integer(remMS)
}

func cmdRandomKey(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	k, ok := db.RandomKey(s.ks.NowMS())
	if !ok {
		return NilBulk()
	}
	return BulkString(k)
}

func cmdKeys(s *Server, c *Conn, args [][]byte) Reply {
	pattern := string(args[1])
	cursor := uint64(0)
	var out []string
	for {
		res := s.ks.Scan(c.session.DB(), cursor, pattern, 1000)
		out = append(out, res.Keys...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}
	return BulkStringArray(out...)
}

func cmdScan(s *Server, c *Conn, args [][]byte) Reply {
	cursor, err := strconv.ParseUint(string(args[1]), 10, 64)
	if err != nil {
		return ErrorReply("ERR invalid cursor")
	}
	pattern, count, err := parseScanOpts(args[2:])
	if err != nil {
		return errorFrom(err)
	}
	res := s.ks.Scan(c.session.DB(), cursor, pattern, count)
	return ArrayOf(BulkString(strconv.FormatUint(res.Cursor, 10)), BulkStringArray(res.Keys...))
}

func parseScanOpts(opts [][]byte) (pattern string, count int, err error) {
	count = 10
	for i := 0; i < len(opts); i += 2 {
		if i+1 >= len(opts) {
			return "", 0, keyspace.ErrSyntax
		}
		switch strings.ToUpper(string(opts[i])) {
		case "MATCH":
			pattern = string(opts[i+1])
		case "COUNT":
			n, e := keyspace.ParseInt(opts[i+1])
			if e != nil {
				return "", 0, e
			}
			count = int(n)
		default:
			return "", 0, keyspace.ErrSyntax
		}
	}
	return pattern, count, nil
}
