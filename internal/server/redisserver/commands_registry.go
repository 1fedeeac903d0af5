package redisserver

// NewDispatcher builds the full command table (§4.3). Arity follows the
// convention used throughout Redis's own command table: a positive number
// is an exact argument count (including the command name itself), a
// negative number is a minimum.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{registry: make(map[string]*Descriptor)}

	// Connection / transaction control — no keyspace lock.
	d.register(Descriptor{Name: "PING", Arity: -1, Handler: cmdPing})
	d.register(Descriptor{Name: "ECHO", Arity: 2, Handler: cmdEcho})
	d.register(Descriptor{Name: "AUTH", Arity: -2, Handler: cmdAuth})
	d.register(Descriptor{Name: "QUIT", Arity: 1, Handler: cmdQuit})
	d.register(Descriptor{Name: "SELECT", Arity: 2, Flags: FlagNoDBSelect, Handler: cmdSelect})
	d.register(Descriptor{Name: "MULTI", Arity: 1, Handler: cmdMulti})
	d.register(Descriptor{Name: "DISCARD", Arity: 1, Handler: cmdDiscard})
	d.register(Descriptor{Name: "EXEC", Arity: 1, Handler: cmdExec})
	d.register(Descriptor{Name: "CLIENT", Arity: -2, Handler: cmdClient})
	d.register(Descriptor{Name: "COMMAND", Arity: -1, Handler: cmdCommand})

	// Admin / server.
	d.register(Descriptor{Name: "DBSIZE", Arity: 1, Flags: FlagReadonly, Handler: cmdDBSize})
	d.register(Descriptor{Name: "FLUSHDB", Arity: -1, Flags: FlagWrite | FlagAdmin, Handler: cmdFlushDB})
	d.register(Descriptor{Name: "FLUSHALL", Arity: -1, Flags: FlagWrite | FlagAdmin, Handler: cmdFlushAll})
	d.register(Descriptor{Name: "TIME", Arity: 1, Handler: cmdTime})
	d.register(Descriptor{Name: "INFO", Arity: -1, Flags: FlagReadonly, Handler: cmdInfo})
	d.register(Descriptor{Name: "CONFIG", Arity: -2, Flags: FlagAdmin, Handler: cmdConfig})
	d.register(Descriptor{Name: "SHUTDOWN", Arity: -1, Flags: FlagAdmin, Handler: cmdShutdown})
	d.register(Descriptor{Name: "SAVE", Arity: 1, Flags: FlagAdmin, Handler: cmdSave})
	d.register(Descriptor{Name: "BGSAVE", Arity: -1, Flags: FlagAdmin, Handler: cmdBGSave})
	d.register(Descriptor{Name: "LASTSAVE", Arity: 1, Handler: cmdLastSave})
	d.register(Descriptor{Name: "DEBUG", Arity: -2, Flags: FlagAdmin, Handler: cmdDebug})

	// Pub/Sub.
	d.register(Descriptor{Name: "SUBSCRIBE", Arity: -2, Flags: FlagPubSub, Handler: subscribeChannels})
	d.register(Descriptor{Name: "UNSUBSCRIBE", Arity: -1, Flags: FlagPubSub, Handler: unsubscribeChannels})
	d.register(Descriptor{Name: "PSUBSCRIBE", Arity: -2, Flags: FlagPubSub, Handler: subscribePatterns})
	d.register(Descriptor{Name: "PUNSUBSCRIBE", Arity: -1, Flags: FlagPubSub, Handler: unsubscribePatterns})
	d.register(Descriptor{Name: "PUBLISH", Arity: 3, Flags: FlagPubSub, Handler: cmdPublish})
	d.register(Descriptor{Name: "PUBSUB", Arity: -2, Flags: FlagPubSub, Handler: cmdPubSub})

	// Keys, generic.
	d.register(Descriptor{Name: "DEL", Arity: -2, Flags: FlagWrite, Handler: cmdDel})
	d.register(Descriptor{Name: "EXISTS", Arity: -2, Flags: FlagReadonly, Handler: cmdExists})
	d.register(Descriptor{Name: "TYPE", Arity: 2, Flags: FlagReadonly, Handler: cmdType})
	d.register(Descriptor{Name: "RENAME", Arity: 3, Flags: FlagWrite, Handler: cmdRename})
	d.register(Descriptor{Name: "RENAMENX", Arity: 3, Flags: FlagWrite, Handler: cmdRenameNX})
	d.register(Descriptor{Name: "EXPIRE", Arity: -3, Flags: FlagWrite, Handler: cmdExpire})
	d.register(Descriptor{Name: "PEXPIRE", Arity: -3, Flags: FlagWrite, Handler: cmdPExpire})
	d.register(Descriptor{Name: "EXPIREAT", Arity: -3, Flags: FlagWrite, Handler: cmdExpireAt})
	d.register(Descriptor{Name: "PEXPIREAT", Arity: -3, Flags: FlagWrite, Handler: cmdPExpireAt})
	d.register(Descriptor{Name: "PERSIST", Arity: 2, Flags: FlagWrite, Handler: cmdPersist})
	d.register(Descriptor{Name: "TTL", Arity: 2, Flags: FlagReadonly, Handler: cmdTTL})
	d.register(Descriptor{Name: "PTTL", Arity: 2, Flags: FlagReadonly, Handler: cmdPTTL})
	d.register(Descriptor{Name: "RANDOMKEY", Arity: 1, Flags: FlagReadonly, Handler: cmdRandomKey})
	d.register(Descriptor{Name: "KEYS", Arity: 2, Flags: FlagReadonly, Handler: cmdKeys})
	d.register(Descriptor{Name: "SCAN", Arity: -2, Flags: FlagReadonly, Handler: cmdScan})

	// Strings.
	d.register(Descriptor{Name: "GET", Arity: 2, Flags: FlagReadonly, Handler: cmdGet})
	d.register(Descriptor{Name: "SET", Arity: -3, Flags: FlagWrite, Handler: cmdSet})
	d.register(Descriptor{Name: "SETNX", Arity: 3, Flags: FlagWrite, Handler: cmdSetNX})
	d.register(Descriptor{Name: "SETEX", Arity: 4, Flags: FlagWrite, Handler: cmdSetEX})
	d.register(Descriptor{Name: "PSETEX", Arity: 4, Flags: FlagWrite, Handler: cmdPSetEX})
	d.register(Descriptor{Name: "GETSET", Arity: 3, Flags: FlagWrite, Handler: cmdGetSet})
	d.register(Descriptor{Name: "APPEND", Arity: 3, Flags: FlagWrite, Handler: cmdAppend})
	d.register(Descriptor{Name: "STRLEN", Arity: 2, Flags: FlagReadonly, Handler: cmdStrlen})
	d.register(Descriptor{Name: "INCR", Arity: 2, Flags: FlagWrite, Handler: cmdIncr})
	d.register(Descriptor{Name: "DECR", Arity: 2, Flags: FlagWrite, Handler: cmdDecr})
	d.register(Descriptor{Name: "INCRBY", Arity: 3, Flags: FlagWrite, Handler: cmdIncrBy})
	d.register(Descriptor{Name: "DECRBY", Arity: 3, Flags: FlagWrite, Handler: cmdDecrBy})
	d.register(Descriptor{Name: "INCRBYFLOAT", Arity: 3, Flags: FlagWrite, Handler: cmdIncrByFloat})
	d.register(Descriptor{Name: "GETRANGE", Arity: 4, Flags: FlagReadonly, Handler: cmdGetRange})
	d.register(Descriptor{Name: "SETRANGE", Arity: 4, Flags: FlagWrite, Handler: cmdSetRange})
	d.register(Descriptor{Name: "MGET", Arity: -2, Flags: FlagReadonly, Handler: cmdMGet})
	d.register(Descriptor{Name: "MSET", Arity: -3, Flags: FlagWrite, Handler: cmdMSet})
	d.register(Descriptor{Name: "MSETNX", Arity: -3, Flags: FlagWrite, Handler: cmdMSetNX})

	// Lists.
	d.register(Descriptor{Name: "LPUSH", Arity: -3, Flags: FlagWrite, Handler: cmdLPush})
	d.register(Descriptor{Name: "RPUSH", Arity: -3, Flags: FlagWrite, Handler: cmdRPush})
	d.register(Descriptor{Name: "LPUSHX", Arity: -3, Flags: FlagWrite, Handler: cmdLPushX})
	d.register(Descriptor{Name: "RPUSHX", Arity: -3, Flags: FlagWrite, Handler: cmdRPushX})
	d.register(Descriptor{Name: "LPOP", Arity: -2, Flags: FlagWrite, Handler: cmdLPop})
	d.register(Descriptor{Name: "RPOP", Arity: -2, Flags: FlagWrite, Handler: cmdRPop})
	d.register(Descriptor{Name: "LLEN", Arity: 2, Flags: FlagReadonly, Handler: cmdLLen})
	d.register(Descriptor{Name: "LRANGE", Arity: 4, Flags: FlagReadonly, Handler: cmdLRange})
	d.register(Descriptor{Name: "LINDEX", Arity: 3, Flags: FlagReadonly, Handler: cmdLIndex})
	d.register(Descriptor{Name: "LSET", Arity: 4, Flags: FlagWrite, Handler: cmdLSet})
	d.register(Descriptor{Name: "LTRIM", Arity: 4, Flags: FlagWrite, Handler: cmdLTrim})
	d.register(Descriptor{Name: "LINSERT", Arity: 5, Flags: FlagWrite, Handler: cmdLInsert})
	d.register(Descriptor{Name: "LREM", Arity: 4, Flags: FlagWrite, Handler: cmdLRem})
	d.register(Descriptor{Name: "LPOS", Arity: -3, Flags: FlagReadonly, Handler: cmdLPos})
	d.register(Descriptor{Name: "RPOPLPUSH", Arity: 3, Flags: FlagWrite, Handler: cmdRPopLPush})
	d.register(Descriptor{Name: "LMOVE", Arity: 5, Flags: FlagWrite, Handler: cmdLMove})
	d.register(Descriptor{Name: "BLPOP", Arity: -3, Flags: FlagWrite, Handler: cmdBLPop})
	d.register(Descriptor{Name: "BRPOP", Arity: -3, Flags: FlagWrite, Handler: cmdBRPop})
	d.register(Descriptor{Name: "BRPOPLPUSH", Arity: 4, Flags: FlagWrite, Handler: cmdBRPopLPush})
	d.register(Descriptor{Name: "BLMOVE", Arity: 6, Flags: FlagWrite, Handler: cmdBLMove})

	// Sets.
	d.register(Descriptor{Name: "SADD", Arity: -3, Flags: FlagWrite, Handler: cmdSAdd})
	d.register(Descriptor{Name: "SREM", Arity: -3, Flags: FlagWrite, Handler: cmdSRem})
	d.register(Descriptor{Name: "SISMEMBER", Arity: 3, Flags: FlagReadonly, Handler: cmdSIsMember})
	d.register(Descriptor{Name: "SMISMEMBER", Arity: -3, Flags: FlagReadonly, Handler: cmdSMIsMember})
	d.register(Descriptor{Name: "SCARD", Arity: 2, Flags: FlagReadonly, Handler: cmdSCard})
	d.register(Descriptor{Name: "SMEMBERS", Arity: 2, Flags: FlagReadonly, Handler: cmdSMembers})
	d.register(Descriptor{Name: "SPOP", Arity: -2, Flags: FlagWrite, Handler: cmdSPop})
	d.register(Descriptor{Name: "SRANDMEMBER", Arity: -2, Flags: FlagReadonly, Handler: cmdSRandMember})
	d.register(Descriptor{Name: "SUNION", Arity: -2, Flags: FlagReadonly, Handler: cmdSUnion})
	d.register(Descriptor{Name: "SINTER", Arity: -2, Flags: FlagReadonly, Handler: cmdSInter})
	d.register(Descriptor{Name: "SDIFF", Arity: -2, Flags: FlagReadonly, Handler: cmdSDiff})
	d.register(Descriptor{Name: "SUNIONSTORE", Arity: -3, Flags: FlagWrite, Handler: cmdSUnionStore})
	d.register(Descriptor{Name: "SINTERSTORE", Arity: -3, Flags: FlagWrite, Handler: cmdSInterStore})
	d.register(Descriptor{Name: "SDIFFSTORE", Arity: -3, Flags: FlagWrite, Handler: cmdSDiffStore})
	d.register(Descriptor{Name: "SMOVE", Arity: 4, Flags: FlagWrite, Handler: cmdSMove})
	d.register(Descriptor{Name: "SSCAN", Arity: -3, Flags: FlagReadonly, Handler: cmdSScan})

	// Hashes.
	d.register(Descriptor{Name: "HSET", Arity: -4, Flags: FlagWrite, Handler: cmdHSet})
	d.register(Descriptor{Name: "HSETNX", Arity: 4, Flags: FlagWrite, Handler: cmdHSetNX})
	d.register(Descriptor{Name: "HGET", Arity: 3, Flags: FlagReadonly, Handler: cmdHGet})
	d.register(Descriptor{Name: "HDEL", Arity: -3, Flags: FlagWrite, Handler: cmdHDel})
	d.register(Descriptor{Name: "HEXISTS", Arity: 3, Flags: FlagReadonly, Handler: cmdHExists})
	d.register(Descriptor{Name: "HLEN", Arity: 2, Flags: FlagReadonly, Handler: cmdHLen})
	d.register(Descriptor{Name: "HKEYS", Arity: 2, Flags: FlagReadonly, Handler: cmdHKeys})
	d.register(Descriptor{Name: "HVALS", Arity: 2, Flags: FlagReadonly, Handler: cmdHVals})
	d.register(Descriptor{Name: "HGETALL", Arity: 2, Flags: FlagReadonly, Handler: cmdHGetAll})
	d.register(Descriptor{Name: "HMGET", Arity: -3, Flags: FlagReadonly, Handler: cmdHMGet})
	d.register(Descriptor{Name: "HMSET", Arity: -4, Flags: FlagWrite, Handler: cmdHMSet})
	d.register(Descriptor{Name: "HINCRBY", Arity: 4, Flags: FlagWrite, Handler: cmdHIncrBy})
	d.register(Descriptor{Name: "HINCRBYFLOAT", Arity: 4, Flags: FlagWrite, Handler: cmdHIncrByFloat})
	d.register(Descriptor{Name: "HSCAN", Arity: -3, Flags: FlagReadonly, Handler: cmdHScan})
	d.register(Descriptor{Name: "HRANDFIELD", Arity: -2, Flags: FlagReadonly, Handler: cmdHRandField})

	// Sorted sets.
	d.register(Descriptor{Name: "ZADD", Arity: -4, Flags: FlagWrite, Handler: cmdZAdd})
	d.register(Descriptor{Name: "ZSCORE", Arity: 3, Flags: FlagReadonly, Handler: cmdZScore})
	d.register(Descriptor{Name: "ZMSCORE", Arity: -3, Flags: FlagReadonly, Handler: cmdZMScore})
	d.register(Descriptor{Name: "ZINCRBY", Arity: 4, Flags: FlagWrite, Handler: cmdZIncrBy})
	d.register(Descriptor{Name: "ZCARD", Arity: 2, Flags: FlagReadonly, Handler: cmdZCard})
	d.register(Descriptor{Name: "ZCOUNT", Arity: 4, Flags: FlagReadonly, Handler: cmdZCount})
	d.register(Descriptor{Name: "ZRANK", Arity: 3, Flags: FlagReadonly, Handler: cmdZRank})
	d.register(Descriptor{Name: "ZREVRANK", Arity: 3, Flags: FlagReadonly, Handler: cmdZRevRank})
	d.register(Descriptor{Name: "ZRANGE", Arity: -4, Flags: FlagReadonly, Handler: cmdZRange})
	d.register(Descriptor{Name: "ZREVRANGE", Arity: -4, Flags: FlagReadonly, Handler: cmdZRevRange})
	d.register(Descriptor{Name: "ZRANGEBYSCORE", Arity: -4, Flags: FlagReadonly, Handler: cmdZRangeByScore})
	d.register(Descriptor{Name: "ZREVRANGEBYSCORE", Arity: -4, Flags: FlagReadonly, Handler: cmdZRevRangeByScore})
	d.register(Descriptor{Name: "ZRANGESTORE", Arity: -5, Flags: FlagWrite, Handler: cmdZRangeStore})
	d.register(Descriptor{Name: "ZREM", Arity: -3, Flags: FlagWrite, Handler: cmdZRem})
	d.register(Descriptor{Name: "ZREMRANGEBYRANK", Arity: 4, Flags: FlagWrite, Handler: cmdZRemRangeByRank})
	d.register(Descriptor{Name: "ZREMRANGEBYSCORE", Arity: 4, Flags: FlagWrite, Handler: cmdZRemRangeByScore})
	d.register(Descriptor{Name: "ZPOPMIN", Arity: -2, Flags: FlagWrite, Handler: cmdZPopMin})
	d.register(Descriptor{Name: "ZPOPMAX", Arity: -2, Flags: FlagWrite, Handler: cmdZPopMax})
	d.register(Descriptor{Name: "BZPOPMIN", Arity: -3, Flags: FlagWrite, Handler: cmdBZPopMin})
	d.register(Descriptor{Name: "BZPOPMAX", Arity: -3, Flags: FlagWrite, Handler: cmdBZPopMax})
	d.register(Descriptor{Name: "ZSCAN", Arity: -3, Flags: FlagReadonly, Handler: cmdZScan})

	return d
}
