// Package errors defines the tagged error type shared by the gateways, the
// operations built on them, and their callers.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

// Error kinds.
const (
	KindValidation        Kind = "VALIDATION"
	KindSession           Kind = "SESSION"
	KindWrongNetwork      Kind = "WRONG_NETWORK"
	KindNotFound          Kind = "NOT_FOUND"
	KindABIMismatch       Kind = "ABI_MISMATCH"
	KindRejected          Kind = "REJECTED"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindExecution         Kind = "EXECUTION_FAULT"
	KindTransport         Kind = "TRANSPORT"
	KindDecode            Kind = "DECODE"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindBusy              Kind = "BUSY"
	KindAbandoned         Kind = "ABANDONED"
	KindInternal          Kind = "INTERNAL"
)

// MsgNotConnected is the message of session errors raised when no account is connected.
const MsgNotConnected = "wallet not connected"

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match kinds with errors.Is(err, &Error{Kind: KindBusy}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Err == nil
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotConnected returns the session error used when no account is connected.
func NotConnected(op string) *Error {
	return New(KindSession, op, MsgNotConnected)
}

// KindOf returns the kind of err, or "" for nil. Unclassified errors are
// reported as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// rpcCoder is implemented by JSON-RPC error values.
type rpcCoder interface {
	RPCCode() int
}

// Neo N3 node error codes.
const (
	codeUnknownContract   = -102
	codeInsufficientFunds = -511
	codeInvalidParams     = -32602
)

// Classify maps err to a tagged error for op. Already classified errors are
// returned as is; one without an op is copied with op filled in.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		if e.Op != "" || op == "" {
			return e
		}
		c := *e
		c.Op = op
		return &c
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return Wrap(KindAbandoned, op, err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTransport, Op: op, Message: "request timed out", Err: err}
	}

	var coder rpcCoder
	if stderrors.As(err, &coder) {
		switch coder.RPCCode() {
		case codeUnknownContract:
			return Wrap(KindNotFound, op, err)
		case codeInsufficientFunds:
			return Wrap(KindInsufficientFunds, op, err)
		case codeInvalidParams:
			return Wrap(KindABIMismatch, op, err)
		}
	}

	if kind, ok := kindFromMessage(err.Error()); ok {
		return Wrap(kind, op, err)
	}

	return Wrap(KindTransport, op, err)
}

// ClassifyFault maps a VM fault exception to a kind.
func ClassifyFault(op, exception string) *Error {
	if kind, ok := kindFromMessage(exception); ok {
		return New(kind, op, exception)
	}
	return New(KindExecution, op, exception)
}

func kindFromMessage(msg string) (Kind, bool) {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "user abort"), strings.Contains(m, "rejected by user"), strings.Contains(m, "user rejected"):
		return KindRejected, true
	case strings.Contains(m, "insufficient"):
		return KindInsufficientFunds, true
	case strings.Contains(m, "unknown contract"), strings.Contains(m, "contract not found"), strings.Contains(m, "called contract") && strings.Contains(m, "not found"):
		return KindNotFound, true
	case strings.Contains(m, "doesn't exist in the contract"), strings.Contains(m, "method not found in contract"):
		return KindABIMismatch, true
	}
	return "", false
}

// UserMessage renders err as text suitable for an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindRejected:
		return "Transaction was cancelled by the user."
	case KindInsufficientFunds:
		return "Insufficient funds to cover the transaction and its fees."
	case KindNotFound:
		return "Contract or record not found. Make sure you are connected to the correct network."
	case KindABIMismatch:
		return "The deployed contract does not match the expected interface."
	case KindWrongNetwork:
		return "Connected to the wrong network. " + e.Message
	case KindSession:
		if e.Message == MsgNotConnected {
			return "Wallet not connected. Connect a wallet and try again."
		}
	case KindBusy:
		return "An identical operation is already in progress."
	}
	return e.Error()
}
