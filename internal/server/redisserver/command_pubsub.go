package redisserver

import "strings"

func subscribeChannels(s *Server, c *Conn, args [][]byte) Reply {
	for _, ch := range args[1:] {
		name := string(ch)
		s.hub.subscribeChannel(c, name)
		c.session.addChannel(name)
		c.push(ArrayOf(BulkString("subscribe"), BulkString(name), Integer(int64(c.session.SubscriptionCount()))))
	}
	return NoReply
}

func unsubscribeChannels(s *Server, c *Conn, args [][]byte) Reply {
	names := args[1:]
	if len(names) == 0 {
		names = toByteSlices(c.session.channels())
	}
	for _, ch := range names {
		name := string(ch)
		s.hub.unsubscribeChannel(c, name)
		c.session.removeChannel(name)
		c.push(ArrayOf(BulkString("unsubscribe"), BulkString(name), Integer(int64(c.session.SubscriptionCount()))))
	}
	return NoReply
}

func subscribePatterns(s *Server, c *Conn, args [][]byte) Reply {
	for _, p := range args[1:] {
		name := string(p)
		s.hub.subscribePattern(c, name)
		c.session.addPattern(name)
		c.push(ArrayOf(BulkString("psubscribe"), BulkString(name), Integer(int64(c.session.SubscriptionCount()))))
	}
	return NoReply
}

func unsubscribePatterns(s *Server, c *Conn, args [][]byte) Reply {
	names := args[1:]
	if len(names) == 0 {
		names = toByteSlices(c.session.patterns())
	}
	for _, p := range names {
		name := string(p)
		s.hub.unsubscribePattern(c, name)
		c.session.removePattern(name)
		c.push(ArrayOf(BulkString("punsubscribe"), BulkString(name), Integer(int64(c.session.SubscriptionCount()))))
	}
	return NoReply
}

func toByteSlices(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func cmdPublish(s *Server, c *Conn, args [][]byte) Reply {
	n := s.hub.publish(string(args[1]), args[2])
	return Integer(int64(n))
}

// PUBSUB CHANNELS [pattern] | NUMSUB [channel ...] | NUMPAT
func cmdPubSub(s *Server, c *Conn, args [][]byte) Reply {
	sub := strings.ToUpper(string(args[1]))
	switch sub {
	case "CHANNELS":
		match := ""
		if len(args) > 2 {
			match = string(args[2])
		}
		return BulkStringArray(s.hub.channelNames(match)...)
	case "NUMSUB":
		items := make([]Reply, 0, (len(args)-2)*2)
		for _, ch := range args[2:] {
			items = append(items, BulkString(string(ch)), Integer(int64(s.hub.channelSubscriberCount(string(ch)))))
		}
		return Array{Items: items}
	case "NUMPAT":
		return Integer(int64(s.hub.numPatterns()))
	default:
		return ErrorReply("ERR Unknown PUBSUB subcommand or wrong number of arguments for '" + sub + "'")
	}
}
