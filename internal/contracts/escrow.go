package contracts

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/session"
)

// Escrow wraps the payment escrow contract.
type Escrow struct {
	base
}

// NewEscrow creates an escrow gateway.
func NewEscrow(invoker chain.Invoker, contractHash string, sess *session.Session, opts ...Option) *Escrow {
	return &Escrow{base: newBase(NameEscrow, invoker, contractHash, sess, opts)}
}

// CreateEscrow locks amount of token for the worker on a job.
func (e *Escrow) CreateEscrow(ctx context.Context, jobID, worker, amount, token string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.add(PseudonymParam(worker))
	l.add(Uint256Param(amount))
	l.add(FeltParam("token", token))
	return e.send(ctx, "create_escrow", l)
}

// ReleasePayment pays the escrowed amount out to payout.
func (e *Escrow) ReleasePayment(ctx context.Context, escrowID, payout string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(escrowID))
	l.add(FeltParam("payout_address", payout))
	return e.send(ctx, "release_payment", l)
}

// DisputePayment freezes an escrow.
func (e *Escrow) DisputePayment(ctx context.Context, escrowID, reason string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(escrowID))
	l.plain(ByteArrayParam(reason))
	return e.send(ctx, "dispute_payment", l)
}

// GetEscrowDetails returns an escrow.
func (e *Escrow) GetEscrowDetails(ctx context.Context, escrowID string) (*marketplace.EscrowDetails, error) {
	l := &paramList{}
	l.add(Uint256Param(escrowID))
	item, err := e.query(ctx, "get_escrow_details", l)
	if err != nil {
		return nil, err
	}
	d, err := ParseEscrow(item)
	if err != nil {
		return nil, e.decodeFailed(ctx, "get_escrow_details", err)
	}
	return d, nil
}
