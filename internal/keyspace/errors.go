package keyspace

import "errors"

// RespErr is the typed error carried from storage and value-engine code up
// to the RESP boundary. Unlike a formatted string, it keeps the category
// token (ERR, WRONGTYPE, ...) separate from the human-readable message so
// the encoder can reproduce the exact on-wire prefix without re-parsing it.
type RespErr struct {
	Code    string
	Message string
	cause   error
}

func (e *RespErr) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + " " + e.Message
}

func (e *RespErr) Unwrap() error { return e.cause }

// NewRespErr builds a RespErr with the given category and message.
func NewRespErr(code, message string) *RespErr {
	return &RespErr{Code: code, Message: message}
}

// Wrap attaches a cause to a RespErr without changing its wire presentation.
func (e *RespErr) Wrap(cause error) *RespErr {
	return &RespErr{Code: e.Code, Message: e.Message, cause: cause}
}

var (
	// ErrWrongType is returned whenever a command targets a key whose kind
	// does not match the operation (§3 invariant: kind and value shape agree).
	ErrWrongType = NewRespErr("WRONGTYPE", "Operation against a key holding the wrong kind of value")

	// ErrNoSuchKey is used internally by RENAME and similar commands.
	ErrNoSuchKey = NewRespErr("ERR", "no such key")

	// ErrNotInteger is returned when a command requires an integer-parseable
	// string value and the stored bytes don't parse as one.
	ErrNotInteger = NewRespErr("ERR", "value is not an integer or out of range")

	// ErrNotFloat is the float analogue of ErrNotInteger.
	ErrNotFloat = NewRespErr("ERR", "value is not a valid float")

	// ErrSyntax covers malformed command option combinations.
	ErrSyntax = NewRespErr("ERR", "syntax error")

	// ErrInvalidDBIndex is returned by SELECT for an out-of-range database.
	ErrInvalidDBIndex = NewRespErr("ERR", "DB index is out of range")
)

// IsWrongType reports whether err is (or wraps) ErrWrongType.
func IsWrongType(err error) bool {
	var re *RespErr
	if errors.As(err, &re) {
		return re.Code == "WRONGTYPE"
	}
	return false
}
