package redisserver

func cmdMulti(s *Server, c *Conn, args [][]byte) Reply {
	if c.session.IsInTx() {
		return ErrorReply("ERR MULTI calls can not be nested")
	}
	c.session.beginTx()
	return OK
}

func cmdDiscard(s *Server, c *Conn, args [][]byte) Reply {
	if !c.session.IsInTx() {
		return ErrorReply("ERR DISCARD without MULTI")
	}
	c.session.endTx()
	return OK
}

// EXEC runs every queued command in order (§4.3): a syntax/arity error
// encountered while queuing aborts the whole transaction (EXECABORT); a
// runtime error from an individual command instead shows up as that
// command's own error entry in the reply array, and the rest still run.
func cmdExec(s *Server, c *Conn, args [][]byte) Reply {
	if !c.session.IsInTx() {
		return ErrorReply("ERR EXEC without MULTI")
	}
	queue, aborted := c.session.endTx()
	if aborted {
		return ErrorReply("EXECABORT Transaction discarded because of previous errors.")
	}
	items := make([]Reply, len(queue))
	for i, cmdArgs := range queue {
		items[i] = s.runQueued(c, cmdArgs)
	}
	return Array{Items: items}
}
