package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies client-side failures.
type Kind string

const (
	KindConnection Kind = "connection" // transport unreachable or misconfigured
	KindProtocol   Kind = "protocol"   // state machine violation
	KindRemote     Kind = "remote"     // remote service reported an error frame
	KindTimeout    Kind = "timeout"    // bounded call exceeded its deadline
)

// Stable error codes shared with the wire protocols.
const (
	CodeAlreadyStarted   = "already_started"
	CodeNotStarted       = "not_started"
	CodeNotImplemented   = "not_implemented"
	CodeInvalidJSON      = "invalid_json"
	CodeUnknownFrame     = "unknown_frame"
	CodeStreamEnded      = "stream_ended_without_completion"
	CodeConnectionFailed = "connection_failed"
	CodeTimeout          = "timeout"
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeRateLimited      = "rate_limited"
	CodeServerError      = "server_error"
	CodeAborted          = "aborted"
	CodeInternal         = "internal_error"
)

// StackError carries a kind, a stable code and a human message, plus an
// optional wrapped cause with a captured stack.
type StackError struct {
	kind      Kind
	code      string
	msg       string
	retryable bool
	cause     error
}

func (e *StackError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.kind, e.code, e.msg, e.cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.kind, e.code, e.msg)
}

func (e *StackError) Kind() Kind      { return e.kind }
func (e *StackError) Code() string    { return e.code }
func (e *StackError) Msg() string     { return e.msg }
func (e *StackError) Retryable() bool { return e.retryable }
func (e *StackError) Unwrap() error   { return e.cause }

func Connection(msg string, cause error) *StackError {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &StackError{kind: KindConnection, code: CodeConnectionFailed, msg: msg, retryable: true, cause: cause}
}

func Protocol(code, msg string) *StackError {
	return &StackError{kind: KindProtocol, code: code, msg: msg}
}

func Remote(code, msg string, retryable bool) *StackError {
	return &StackError{kind: KindRemote, code: code, msg: msg, retryable: retryable}
}

func Timeout(msg string, cause error) *StackError {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &StackError{kind: KindTimeout, code: CodeTimeout, msg: msg, retryable: true, cause: cause}
}

// FromStatus classifies an HTTP status into the resource error taxonomy.
func FromStatus(status int, msg string) *StackError {
	switch {
	case status == 400:
		return &StackError{kind: KindRemote, code: CodeBadRequest, msg: msg}
	case status == 401:
		return &StackError{kind: KindRemote, code: CodeUnauthorized, msg: msg}
	case status == 403:
		return &StackError{kind: KindRemote, code: CodeForbidden, msg: msg}
	case status == 404:
		return &StackError{kind: KindRemote, code: CodeNotFound, msg: msg}
	case status == 429:
		return &StackError{kind: KindRemote, code: CodeRateLimited, msg: msg, retryable: true}
	case status >= 500:
		return &StackError{kind: KindRemote, code: CodeServerError, msg: msg, retryable: true}
	default:
		return &StackError{kind: KindRemote, code: CodeInternal, msg: fmt.Sprintf("unexpected status %d: %s", status, msg)}
	}
}

func isKind(err error, k Kind) bool {
	var se *StackError
	if pkgerrors.As(err, &se) {
		return se.kind == k
	}
	return false
}

func IsConnection(err error) bool { return isKind(err, KindConnection) }
func IsProtocol(err error) bool   { return isKind(err, KindProtocol) }
func IsRemote(err error) bool     { return isKind(err, KindRemote) }
func IsTimeout(err error) bool    { return isKind(err, KindTimeout) }

// AsStack returns the StackError in err's chain, if any.
func AsStack(err error) (*StackError, bool) {
	var se *StackError
	ok := pkgerrors.As(err, &se)
	return se, ok
}
