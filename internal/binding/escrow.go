package binding

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/session"
)

// Escrow operation names.
const (
	OpCreateEscrow   = "create_escrow"
	OpReleasePayment = "release_payment"
	OpDisputePayment = "dispute_payment"
	OpEscrowDetails  = "get_escrow_details"
)

// CreateEscrowInput funds a standalone escrow. The token defaults to
// DefaultPaymentToken.
type CreateEscrowInput struct {
	JobID        string
	Worker       string
	AmountWei    string
	AmountTokens string
	Token        string
}

// ReleaseInput pays out a funded escrow. PayoutAddress defaults to the signer.
type ReleaseInput struct {
	EscrowID      string
	PayoutAddress string
}

// EscrowDisputeInput freezes a funded escrow.
type EscrowDisputeInput struct {
	EscrowID string
	Reason   string
}

// EscrowOps is the set of escrow operations.
type EscrowOps struct {
	deps *Deps

	Create  *Operation[CreateEscrowInput, string]
	Release *Operation[ReleaseInput, string]
	Dispute *Operation[EscrowDisputeInput, string]
	Details *Operation[string, marketplace.EscrowDetails]
}

// NewEscrow builds the escrow operations.
func NewEscrow(deps Deps) *EscrowOps {
	d := deps.withDefaults()
	e := &EscrowOps{deps: d}
	e.Create = newOperation(d, OpCreateEscrow, true, e.create)
	e.Release = newOperation(d, OpReleasePayment, true, e.release)
	e.Dispute = newOperation(d, OpDisputePayment, true, e.dispute)
	e.Details = newOperation(d, OpEscrowDetails, false, e.details)
	return e
}

func (e *EscrowOps) create(ctx context.Context, sess *session.Session, in CreateEscrowInput) (string, error) {
	id, err := jobID(OpCreateEscrow, in.JobID)
	if err != nil {
		return "", err
	}
	worker, err := requireText(OpCreateEscrow, "worker", in.Worker)
	if err != nil {
		return "", err
	}
	amount, err := amountWei(OpCreateEscrow, in.AmountWei, in.AmountTokens)
	if err != nil {
		return "", err
	}
	token := in.Token
	if token == "" {
		token = DefaultPaymentToken
	}
	if token, err = requireFelt(OpCreateEscrow, "token", token); err != nil {
		return "", err
	}
	return e.deps.escrow(sess).CreateEscrow(ctx, id, worker, amount, token)
}

func (e *EscrowOps) release(ctx context.Context, sess *session.Session, in ReleaseInput) (string, error) {
	id, err := jobID(OpReleasePayment, in.EscrowID)
	if err != nil {
		return "", err
	}
	payout := in.PayoutAddress
	if payout == "" {
		payout = sess.Address()
	}
	if payout, err = requireFelt(OpReleasePayment, "payout address", payout); err != nil {
		return "", err
	}
	return e.deps.escrow(sess).ReleasePayment(ctx, id, payout)
}

func (e *EscrowOps) dispute(ctx context.Context, sess *session.Session, in EscrowDisputeInput) (string, error) {
	id, err := jobID(OpDisputePayment, in.EscrowID)
	if err != nil {
		return "", err
	}
	reason, err := requireText(OpDisputePayment, "reason", in.Reason)
	if err != nil {
		return "", err
	}
	return e.deps.escrow(sess).DisputePayment(ctx, id, reason)
}

func (e *EscrowOps) details(ctx context.Context, sess *session.Session, rawID string) (marketplace.EscrowDetails, error) {
	id, err := jobID(OpEscrowDetails, rawID)
	if err != nil {
		return marketplace.EscrowDetails{}, err
	}
	out, err := e.deps.escrow(sess).GetEscrowDetails(ctx, id)
	if err != nil {
		return marketplace.EscrowDetails{}, err
	}
	return *out, nil
}
