package redisserver

import (
	"math"
	"strconv"
	"strings"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func getZSet(db *keyspace.DB, now int64, key string, create bool) (*keyspace.ZSet, *keyspace.Entry, error) {
	e, ok := db.Get(key, now)
	if !ok {
		if !create {
			return nil, nil, nil
		}
		z := keyspace.NewZSet()
		return z, &keyspace.Entry{Kind: keyspace.KindZSet, Value: z}, nil
	}
	if e.Kind != keyspace.KindZSet {
		return nil, nil, keyspace.ErrWrongType
	}
	return e.Value.(*keyspace.ZSet), e, nil
}

// ZADD key [NX|XX] [GT|LT] [CH] [INCR] score member [score member ...]
func cmdZAdd(s *Server, c *Conn, args [][]byte) Reply {
	i := 2
	mode := keyspace.AddDefault
	cmp := keyspace.CompareNone
	ch := false
	incr := false
loop:
	for i < len(args) {
		switch strings.ToUpper(string(args[i])) {
		case "NX":
			mode = keyspace.AddNX
		case "XX":
			mode = keyspace.AddXX
		case "GT":
			cmp = keyspace.CompareGT
		case "LT":
			cmp = keyspace.CompareLT
		case "CH":
			ch = true
		case "INCR":
			incr = true
		default:
			break loop
		}
		i++
	}
	rest := args[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errorFrom(keyspace.ErrSyntax)
	}
	if incr && len(rest) != 2 {
		return ErrorReply("ERR INCR option supports a single increment-element pair")
	}

	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}

	added, changed := 0, 0
	var lastScore float64
	var lastRejected bool
	for p := 0; p < len(rest); p += 2 {
		score, err := keyspace.ParseFloat(rest[p])
		if err != nil {
			return errorFrom(err)
		}
		member := string(rest[p+1])
		newScore, wasAdded, wasChanged, rejected := z.Add(member, score, mode, cmp, incr)
		lastScore = newScore
		lastRejected = rejected
		if wasAdded {
			added++
		}
		if wasChanged {
			changed++
		}
	}
	if z.Card() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}

	if incr {
		if lastRejected {
			return NilBulk()
		}
		return BulkString(keyspace.FormatFloat(lastScore))
	}
	if ch {
		return Integer(int64(changed))
	}
	return Integer(int64(added))
}

func cmdZScore(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return NilBulk()
	}
	score, ok := z.Score(string(args[2]))
	if !ok {
		return NilBulk()
	}
	return BulkString(keyspace.FormatFloat(score))
}

func cmdZMScore(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	items := make([]Reply, 0, len(args)-2)
	for _, m := range args[2:] {
		if z == nil {
			items = append(items, NilBulk())
			continue
		}
		score, ok := z.Score(string(m))
		if !ok {
			items = append(items, NilBulk())
			continue
		}
		items = append(items, BulkString(keyspace.FormatFloat(score)))
	}
	return Array{Items: items}
}

func cmdZIncrBy(s *Server, c *Conn, args [][]byte) Reply {
	delta, err := keyspace.ParseFloat(args[2])
	if err != nil {
		return errorFrom(err)
	}
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, true)
	if err != nil {
		return errorFrom(err)
	}
	newScore, _, _, _ := z.Add(string(args[3]), delta, keyspace.AddDefault, keyspace.CompareNone, true)
	db.Put(key, entry)
	return BulkString(keyspace.FormatFloat(newScore))
}

func cmdZCard(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Integer(0)
	}
	return Integer(int64(z.Card()))
}

func parseScoreRange(minArg, maxArg []byte) (keyspace.ScoreRange, error) {
	var r keyspace.ScoreRange
	minS, maxS := string(minArg), string(maxArg)
	if strings.HasPrefix(minS, "(") {
		r.MinExclude = true
		minS = minS[1:]
	}
	if strings.HasPrefix(maxS, "(") {
		r.MaxExclude = true
		maxS = maxS[1:]
	}
	var err error
	r.Min, err = parseScoreBound(minS)
	if err != nil {
		return r, err
	}
	r.Max, err = parseScoreBound(maxS)
	if err != nil {
		return r, err
	}
	return r, nil
}

func parseScoreBound(s string) (float64, error) {
	switch s {
	case "-inf":
		return math.Inf(-1), nil
	case "+inf", "inf":
		return math.Inf(1), nil
	}
	return keyspace.ParseFloat([]byte(s))
}

func cmdZCount(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Integer(0)
	}
	r, err := parseScoreRange(args[2], args[3])
	if err != nil {
		return errorFrom(err)
	}
	return Integer(int64(z.CountByScore(r)))
}

func rankReply(s *Server, c *Conn, args [][]byte, rev bool) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return NilBulk()
	}
	rank := z.Rank(string(args[2]), rev)
	if rank < 0 {
		return NilBulk()
	}
	return Integer(int64(rank))
}

func cmdZRank(s *Server, c *Conn, args [][]byte) Reply    { return rankReply(s, c, args, false) }
func cmdZRevRank(s *Server, c *Conn, args [][]byte) Reply { return rankReply(s, c, args, true) }

func zEntriesToReply(entries []keyspace.ZEntry, withScores bool) Array {
	if !withScores {
		items := make([]Reply, len(entries))
		for i, e := range entries {
			items[i] = BulkString(e.Member)
		}
		return Array{Items: items}
	}
	items := make([]Reply, 0, len(entries)*2)
	for _, e := range entries {
		items = append(items, BulkString(e.Member), BulkString(keyspace.FormatFloat(e.Score)))
	}
	return Array{Items: items}
}

func rangeByRank(s *Server, c *Conn, args [][]byte, rev bool) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Array{}
	}
	start, e1 := keyspace.ParseInt(args[2])
	stop, e2 := keyspace.ParseInt(args[3])
	if e1 != nil || e2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	withScores := len(args) > 4 && strings.EqualFold(string(args[4]), "WITHSCORES")
	return zEntriesToReply(z.RangeByRank(int(start), int(stop), rev), withScores)
}

func cmdZRange(s *Server, c *Conn, args [][]byte) Reply    { return rangeByRank(s, c, args, false) }
func cmdZRevRange(s *Server, c *Conn, args [][]byte) Reply { return rangeByRank(s, c, args, true) }

func rangeByScore(s *Server, c *Conn, args [][]byte, rev bool) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Array{}
	}
	minArg, maxArg := args[2], args[3]
	if rev {
		minArg, maxArg = args[3], args[2]
	}
	r, err := parseScoreRange(minArg, maxArg)
	if err != nil {
		return errorFrom(err)
	}
	withScores := false
	offset, limit := 0, -1
	for i := 4; i < len(args); i++ {
		switch strings.ToUpper(string(args[i])) {
		case "WITHSCORES":
			withScores = true
		case "LIMIT":
			if i+2 >= len(args) {
				return errorFrom(keyspace.ErrSyntax)
			}
			o, e1 := keyspace.ParseInt(args[i+1])
			l, e2 := keyspace.ParseInt(args[i+2])
			if e1 != nil || e2 != nil {
				return errorFrom(keyspace.ErrNotInteger)
			}
			offset, limit = int(o), int(l)
			i += 2
		default:
			return errorFrom(keyspace.ErrSyntax)
		}
	}
	return zEntriesToReply(z.RangeByScore(r, rev, offset, limit), withScores)
}

func cmdZRangeByScore(s *Server, c *Conn, args [][]byte) Reply    { return rangeByScore(s, c, args, false) }
func cmdZRevRangeByScore(s *Server, c *Conn, args [][]byte) Reply { return rangeByScore(s, c, args, true) }

// ZRANGESTORE destination source start stop [REV]
//
// Computes the same by-rank range as ZRANGE/ZREVRANGE and stores it into
// destination as a fresh zset, atomically under the one request's keyspace
// lock — the ZSET analogue of SINTERSTORE/SUNIONSTORE/SDIFFSTORE's
// compute-then-store shape in command_set.go.
func cmdZRangeStore(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	now := s.ks.NowMS()
	dst := string(args[1])

	z, _, err := getZSet(db, now, string(args[2]), false)
	if err != nil {
		return errorFrom(err)
	}
	start, e1 := keyspace.ParseInt(args[3])
	stop, e2 := keyspace.ParseInt(args[4])
	if e1 != nil || e2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	rev := len(args) > 5 && strings.EqualFold(string(args[5]), "REV")

	var entries []keyspace.ZEntry
	if z != nil {
		entries = z.RangeByRank(int(start), int(stop), rev)
	}
	if len(entries) == 0 {
		db.Delete(dst)
		return Integer(0)
	}

	result := keyspace.NewZSet()
	for _, e := range entries {
		result.Add(e.Member, e.Score, keyspace.AddDefault, keyspace.CompareNone, false)
	}
	db.Put(dst, &keyspace.Entry{Kind: keyspace.KindZSet, Value: result})
	return Integer(int64(len(entries)))
}

func cmdZRem(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Integer(0)
	}
	removed := int64(0)
	for _, m := range args[2:] {
		if z.Remove(string(m)) {
			removed++
		}
	}
	if z.Card() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(removed)
}

func cmdZRemRangeByRank(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Integer(0)
	}
	start, e1 := keyspace.ParseInt(args[2])
	stop, e2 := keyspace.ParseInt(args[3])
	if e1 != nil || e2 != nil {
		return errorFrom(keyspace.ErrNotInteger)
	}
	n := z.RemoveRangeByRank(int(start), int(stop))
	if z.Card() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(int64(n))
}

func cmdZRemRangeByScore(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Integer(0)
	}
	r, err := parseScoreRange(args[2], args[3])
	if err != nil {
		return errorFrom(err)
	}
	n := z.RemoveRangeByScore(r)
	if z.Card() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return Integer(int64(n))
}

func popZ(s *Server, c *Conn, args [][]byte, max bool) Reply {
	db := s.ks.DB(c.session.DB())
	key := string(args[1])
	z, entry, err := getZSet(db, s.ks.NowMS(), key, false)
	if err != nil {
		return errorFrom(err)
	}
	if z == nil {
		return Array{}
	}
	count := 1
	if len(args) > 2 {
		n, err := keyspace.ParseInt(args[2])
		if err != nil {
			return errorFrom(err)
		}
		count = int(n)
	}
	var popped []keyspace.ZEntry
	if max {
		popped = z.PopMax(count)
	} else {
		popped = z.PopMin(count)
	}
	if z.Card() == 0 {
		db.Delete(key)
	} else {
		db.Put(key, entry)
	}
	return zEntriesToReply(popped, true)
}

func cmdZPopMin(s *Server, c *Conn, args [][]byte) Reply { return popZ(s, c, args, false) }
func cmdZPopMax(s *Server, c *Conn, args [][]byte) Reply { return popZ(s, c, args, true) }

// BZPOPMIN/BZPOPMAX here are non-blocking aliases (§12): they pop from the
// first key with any members and return immediately, rather than waiting on
// new members to arrive.
func cmdBZPopMin(s *Server, c *Conn, args [][]byte) Reply { return bzPop(s, c, args, false) }
func cmdBZPopMax(s *Server, c *Conn, args [][]byte) Reply { return bzPop(s, c, args, true) }

func bzPop(s *Server, c *Conn, args [][]byte, max bool) Reply {
	db := s.ks.DB(c.session.DB())
	keys := args[1 : len(args)-1]
	for _, k := range keys {
		z, entry, err := getZSet(db, s.ks.NowMS(), string(k), false)
		if err != nil {
			continue
		}
		if z == nil || z.Card() == 0 {
			continue
		}
		var popped []keyspace.ZEntry
		if max {
			popped = z.PopMax(1)
		} else {
			popped = z.PopMin(1)
		}
		if z.Card() == 0 {
			db.Delete(string(k))
		} else {
			db.Put(string(k), entry)
		}
		if len(popped) == 0 {
			continue
		}
		return ArrayOf(BulkString(string(k)), BulkString(popped[0].Member), BulkString(keyspace.FormatFloat(popped[0].Score)))
	}
	return NilArray()
}

func cmdZScan(s *Server, c *Conn, args [][]byte) Reply {
	db := s.ks.DB(c.session.DB())
	z, _, err := getZSet(db, s.ks.NowMS(), string(args[1]), false)
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
	scores := map[string]float64{}
	if z != nil {
		for _, e := range z.RangeByRank(0, -1, false) {
			names = append(names, e.Member)
			scores[e.Member] = e.Score
		}
	}
	res := keyspace.ScanMembers(names, uint64(cursorN), pattern, count)
	items := make([]Reply, 0, len(res.Keys)*2)
	for _, m := range res.Keys {
		items = append(items, BulkString(m), BulkString(keyspace.FormatFloat(scores[m])))
	}
	return ArrayOf(BulkString(strconv.FormatUint(res.Cursor, 10)), Array{Items: items})
}
