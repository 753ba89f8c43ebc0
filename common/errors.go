package common

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned when a name does not resolve to any
// on-chain record, either in the reference directory or in a cache.
var ErrRecordNotFound = errors.New("record not found")

// ErrInsufficientBalance is returned by pre-flight checks when a wallet
// or token account does not hold enough funds for the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ValueError marks inputs that are syntactically valid but semantically
// unacceptable, such as a zero amount or a name with no version suffix
// where one is required.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value error: %s", e.Msg)
}

func ValueErrorf(format string, args ...interface{}) error {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError marks account data or names that could not be decoded.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("couldn't parse %s", e.What)
	}
	return fmt.Sprintf("couldn't parse %s: %s", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Well-known JSON-RPC error codes returned by Solana nodes. Only the
// submission engine classifies these; everywhere else a RemoteError is
// opaque.
const (
	RPCCodeBlockNotAvailable = -32004
	RPCCodeNodeUnhealthy     = -32005
	RPCCodeBlockCleanedUp    = -32001
	RPCCodePreflightFailure  = -32002
)

// RemoteError wraps a failure returned by an RPC node. Code is zero when
// the node never produced a structured response (transport timeouts and
// the like).
type RemoteError struct {
	Code    int
	Message string
	Timeout bool
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("rpc error: %s", e.Err)
	}
	return fmt.Sprintf("rpc error: %s", e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AsRemoteError digs a RemoteError out of a wrapped chain.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
