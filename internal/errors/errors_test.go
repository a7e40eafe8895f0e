package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPCError struct {
	code int
	msg  string
}

func (e *fakeRPCError) Error() string { return fmt.Sprintf("RPC error %d: %s", e.code, e.msg) }
func (e *fakeRPCError) RPCCode() int  { return e.code }

func TestError_Format(t *testing.T) {
	assert.Equal(t, "post_job: amount required", New(KindValidation, "post_job", "amount required").Error())
	assert.Equal(t, "amount required", New(KindValidation, "", "amount required").Error())
	assert.Equal(t, "get_job_details: boom", Wrap(KindTransport, "get_job_details", stderrors.New("boom")).Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", New(KindBusy, "op", "busy"))
	assert.Equal(t, KindBusy, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindBusy))
	assert.False(t, IsKind(nil, KindBusy))
}

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("x: %w", NotConnected("approve_work"))
	assert.True(t, stderrors.Is(err, &Error{Kind: KindSession}))
	assert.False(t, stderrors.Is(err, &Error{Kind: KindBusy}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unknown contract code", &fakeRPCError{code: -102, msg: "Unknown contract"}, KindNotFound},
		{"insufficient funds code", &fakeRPCError{code: -511, msg: "Insufficient funds"}, KindInsufficientFunds},
		{"invalid params", &fakeRPCError{code: -32602, msg: "Invalid params"}, KindABIMismatch},
		{"insufficient message", stderrors.New("Insufficient GAS for fee"), KindInsufficientFunds},
		{"user abort", stderrors.New("User abort"), KindRejected},
		{"contract not found", stderrors.New("Contract not found"), KindNotFound},
		{"deadline", context.DeadlineExceeded, KindTransport},
		{"canceled", context.Canceled, KindAbandoned},
		{"other", stderrors.New("connection refused"), KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("op", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, "op", got.Op)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.Nil(t, Classify("op", nil))

	orig := New(KindValidation, "", "bad")
	got := Classify("post_job", orig)
	assert.NotSame(t, orig, got)
	assert.Equal(t, "post_job", got.Op)
	assert.Empty(t, orig.Op)
	assert.Equal(t, KindValidation, got.Kind)

	keep := New(KindDecode, "get_job_details", "bad status")
	assert.Same(t, keep, Classify("other", keep))
	assert.Equal(t, "get_job_details", keep.Op)
}

func TestClassifyFault(t *testing.T) {
	assert.Equal(t, KindExecution, ClassifyFault("approve_work", "only employer").Kind)
	assert.Equal(t, KindABIMismatch, ClassifyFault("x", `Method "x" with 2 parameter(s) doesn't exist in the contract`).Kind)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(NotConnected("op")), "Wallet not connected")
	assert.Contains(t, UserMessage(New(KindRejected, "op", "")), "cancelled")
	assert.Contains(t, UserMessage(New(KindInsufficientFunds, "op", "")), "Insufficient funds")
	assert.Contains(t, UserMessage(New(KindNotFound, "op", "")), "correct network")
	assert.Equal(t, "op: bad", UserMessage(New(KindValidation, "op", "bad")))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
}
