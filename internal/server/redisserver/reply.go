package redisserver

import (
	"bufio"
	"strconv"

	"github.com/sedris-go/sedris/internal/keyspace"
)

// Reply is the generic command reply value: a simple string, error, integer,
// bulk string (possibly nil), or array (possibly nil, possibly nested) — the
// shapes RESP itself distinguishes (§4.1). Handlers build one of the
// concrete types below and return it; the connection's writer goroutine is
// the only thing that knows how to put it on the wire.
type Reply interface {
	encode(w *bufio.Writer) error
}

// SimpleString is a `+` reply. Must not contain CR or LF.
type SimpleString string

func (r SimpleString) encode(w *bufio.Writer) error {
	_, err := w.WriteString("+" + string(r) + "\r\n")
	return err
}

// OK is the simple string reply nearly every write command returns.
var OK = SimpleString("OK")

// ErrorReply is a `-` reply. Message should already carry its category
// token prefix (ERR, WRONGTYPE, ...).
type ErrorReply string

func (r ErrorReply) encode(w *bufio.Writer) error {
	_, err := w.WriteString("-" + string(r) + "\r\n")
	return err
}

// errorFrom converts any error into an ErrorReply, preserving a RespErr's
// wire-visible category token and unwrapping everything else into ERR.
func errorFrom(err error) ErrorReply {
	var re *keyspace.RespErr
	if e, ok := err.(*keyspace.RespErr); ok {
		re = e
	}
	if re != nil {
		return ErrorReply(re.Code + " " + re.Message)
	}
	return ErrorReply("ERR " + err.Error())
}

// Integer is a `:` reply.
type Integer int64

func (r Integer) encode(w *bufio.Writer) error {
	_, err := w.WriteString(":" + strconv.FormatInt(int64(r), 10) + "\r\n")
	return err
}

// Bulk is a `$` reply. Nil set means the nil bulk string ($-1); BulkFrom
// sets it for a nil slice.
type Bulk struct {
	Data []byte
	Nil  bool
}

func BulkFrom(b []byte) Bulk {
	if b == nil {
		return Bulk{Nil: true}
	}
	return Bulk{Data: b}
}

func BulkString(s string) Bulk { return Bulk{Data: []byte(s)} }

func NilBulk() Bulk { return Bulk{Nil: true} }

func (r Bulk) encode(w *bufio.Writer) error {
	if r.Nil {
		_, err := w.WriteString("$-1\r\n")
		return err
	}
	if _, err := w.WriteString("$" + strconv.Itoa(len(r.Data)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(r.Data); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Array is a `*` reply, possibly nested and possibly nil (*-1, distinct
// from an empty-but-present array).
type Array struct {
	Items []Reply
	Nil   bool
}

func NilArray() Array { return Array{Nil: true} }

func ArrayOf(items ...Reply) Array { return Array{Items: items} }

func (r Array) encode(w *bufio.Writer) error {
	if r.Nil {
		_, err := w.WriteString("*-1\r\n")
		return err
	}
	if _, err := w.WriteString("*" + strconv.Itoa(len(r.Items)) + "\r\n"); err != nil {
		return err
	}
	for _, item := range r.Items {
		if err := item.encode(w); err != nil {
			return err
		}
	}
	return nil
}

// BulkStringArray is a convenience builder for the common case of an array
// of non-nil bulk strings.
func BulkStringArray(ss ...string) Array {
	items := make([]Reply, len(ss))
	for i, s := range ss {
		items[i] = BulkString(s)
	}
	return Array{Items: items}
}

func BulkArray(bs ...[]byte) Array {
	items := make([]Reply, len(bs))
	for i, b := range bs {
		items[i] = BulkFrom(b)
	}
	return Array{Items: items}
}

// noReply marks a handler that has already written its own frames directly
// to the connection (SUBSCRIBE-family commands send one frame per channel)
// and wants the dispatcher to push nothing further.
type noReply struct{}

func (noReply) encode(*bufio.Writer) error { return nil }

var NoReply Reply = noReply{}

func isNoReply(r Reply) bool {
	_, ok := r.(noReply)
	return ok
}

// WriteReply encodes r to w. Callers flush.
func WriteReply(w *bufio.Writer, r Reply) error {
	if r == nil {
		return NilBulk().encode(w)
	}
	return r.encode(w)
}
