package redisserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/sedris-go/sedris/internal/keyspace"
)

func cmdPing(s *Server, c *Conn, args [][]byte) Reply {
	if len(args) > 1 {
		return BulkFrom(args[1])
	}
	return SimpleString("PONG")
}

func cmdEcho(s *Server, c *Conn, args [][]byte) Reply {
	return BulkFrom(args[1])
}

func cmdSelect(s *Server, c *Conn, args [][]byte) Reply {
	n, err := keyspace.ParseInt(args[1])
	if err != nil {
		return errorFrom(err)
	}
	if !s.ks.ValidDB(int(n)) {
		return errorFrom(keyspace.ErrInvalidDBIndex)
	}
	c.session.SetDB(int(n))
	return OK
}

func cmdDBSize(s *Server, c *Conn, args [][]byte) Reply {
	return Integer(int64(s.ks.DB(c.session.DB()).Size()))
}

func cmdFlushDB(s *Server, c *Conn, args [][]byte) Reply {
	s.ks.DB(c.session.DB()).Flush()
	return OK
}

func cmdFlushAll(s *Server, c *Conn, args [][]byte) Reply {
	for i := 0; i < s.ks.NumDB(); i++ {
		s.ks.DB(i).Flush()
	}
	return OK
}

func cmdTime(s *Server, c *Conn, args [][]byte) Reply {
	now := time.Now()
	return ArrayOf(
		BulkString(fmt.Sprintf("%d", now.Unix())),
		BulkString(fmt.Sprintf("%d", now.Nanosecond()/1000)),
	)
}

// INFO returns a subset of sections a client driver typically parses for
// liveness/capacity checks (SPEC_FULL §6).
func cmdInfo(s *Server, c *Conn, args [][]byte) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "# Server\r\nredis_version:7.0.0-sedris\r\nrole:master\r\nuptime_in_seconds:%d\r\n",
		int64(time.Since(s.StartedAt()).Seconds()))
	b.WriteString("\r\n# Clients\r\nconnected_clients:1\r\n")
	b.WriteString("\r\n# Memory\r\nused_memory:0\r\n")
	b.WriteString("\r\n# Keyspace\r\n")
	for i := 0; i < s.ks.NumDB(); i++ {
		n := s.ks.DB(i).Size()
		if n > 0 {
			fmt.Fprintf(&b, "db%d:keys=%d,expires=0,avg_ttl=0\r\n", i, n)
		}
	}
	return BulkString(b.String())
}

func cmdCommand(s *Server, c *Conn, args [][]byte) Reply {
	return Array{}
}

// CONFIG GET pattern | SET name value — a minimal stub (§12): values aren't
// actually wired to runtime behavior, but the subcommand shape is honored so
// clients that probe config on connect don't fail.
func cmdConfig(s *Server, c *Conn, args [][]byte) Reply {
	if len(args) < 2 {
		return errorFrom(keyspace.ErrSyntax)
	}
	switch strings.ToUpper(string(args[1])) {
	case "GET":
		return Array{}
	case "SET":
		return OK
	default:
		return ErrorReply("ERR Unknown CONFIG subcommand")
	}
}

func cmdShutdown(s *Server, c *Conn, args [][]byte) Reply {
	if s.OnShutdownCommand != nil {
		s.OnShutdownCommand()
	}
	return nil
}

func cmdAuth(s *Server, c *Conn, args [][]byte) Reply {
	return OK
}

func cmdQuit(s *Server, c *Conn, args [][]byte) Reply {
	c.push(OK)
	return nil
}

func cmdClient(s *Server, c *Conn, args [][]byte) Reply {
	if len(args) < 2 {
		return errorFrom(keyspace.ErrSyntax)
	}
	switch strings.ToUpper(string(args[1])) {
	case "GETNAME":
		return BulkString("")
	case "SETNAME":
		return OK
	case "ID":
		return BulkString(c.correlationID)
	case "LIST":
		return BulkString("")
	default:
		return OK
	}
}

func cmdLastSave(s *Server, c *Conn, args [][]byte) Reply {
	return Integer(s.StartedAt().Unix())
}

func cmdSave(s *Server, c *Conn, args [][]byte) Reply {
	if s.SaveFunc == nil {
		return errorFrom(keyspace.ErrSyntax)
	}
	if err := s.SaveFunc(); err != nil {
		return ErrorReply("ERR " + err.Error())
	}
	return OK
}

func cmdBGSave(s *Server, c *Conn, args [][]byte) Reply {
	if s.BGSaveFunc != nil {
		go s.BGSaveFunc()
	}
	return SimpleString("Background saving started")
}

// DEBUG SLEEP seconds | DEBUG JSON key (§12 supplemental features)
func cmdDebug(s *Server, c *Conn, args [][]byte) Reply {
	if len(args) < 2 {
		return errorFrom(keyspace.ErrSyntax)
	}
	switch strings.ToUpper(string(args[1])) {
	case "SLEEP":
		if len(args) < 3 {
			return errorFrom(keyspace.ErrSyntax)
		}
		secs, err := keyspace.ParseFloat(args[2])
		if err != nil {
			return errorFrom(err)
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return OK
	case "JSON":
		if len(args) < 3 {
			return errorFrom(keyspace.ErrSyntax)
		}
		s.ks.Lock()
		defer s.ks.Unlock()
		db := s.ks.DB(c.session.DB())
		e, ok := db.Get(string(args[2]), s.ks.NowMS())
		if !ok {
			return BulkString(`{"status":"no such key"}`)
		}
		size := 1
		switch v := e.Value.(type) {
		case []byte:
			size = len(v)
		case *keyspace.List:
			size = v.Len()
		case keyspace.Set:
			size = len(v)
		case keyspace.Hash:
			size = len(v)
		case *keyspace.ZSet:
			size = v.Card()
		}
		return BulkString(fmt.Sprintf(`{"kind":%q,"size":%d}`, e.Kind.String(), size))
	default:
		return ErrorReply("ERR DEBUG subcommand not supported")
	}
}
