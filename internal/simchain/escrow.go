package simchain

import (
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
)

const (
	escrowFunded int64 = iota + 1
	escrowReleased
	escrowDisputed
)

type escrow struct {
	id        *big.Int
	jobID     *big.Int
	employer  string
	pseudonym string
	amount    *big.Int
	token     string
	status    int64
	createdAt time.Time
	payout    string
	reason    string
}

type escrowState struct {
	count   *big.Int
	escrows map[string]*escrow
}

func newEscrowState() *escrowState {
	return &escrowState{count: new(big.Int), escrows: make(map[string]*escrow)}
}

func (s *escrowState) create(jobID *big.Int, employer, pseudonym string, amount *big.Int, token string, now time.Time) *escrow {
	s.count = new(big.Int).Add(s.count, big.NewInt(1))
	e := &escrow{
		id:        new(big.Int).Set(s.count),
		jobID:     new(big.Int).Set(jobID),
		employer:  employer,
		pseudonym: pseudonym,
		amount:    amount,
		token:     token,
		status:    escrowFunded,
		createdAt: now,
	}
	s.escrows[idKey(e.id)] = e
	return e
}

func (s *escrowState) get(id *big.Int) (*escrow, error) {
	e, ok := s.escrows[idKey(id)]
	if !ok {
		return nil, fault("escrow %s not found", id)
	}
	return e, nil
}

var escrowEntryPoints = map[string]entryPoint{
	"create_escrow":      {4, true, createEscrow},
	"release_payment":    {2, true, releasePayment},
	"dispute_payment":    {2, true, disputePayment},
	"get_escrow_details": {1, false, getEscrowDetails},
}

// createEscrow funds an escrow directly. It is linked to the job when the
// caller employs the job's assigned worker and the job has no escrow yet.
func createEscrow(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	jobID, worker, amount, token := a.u256(0), a.str(1), a.u256(2), a.felt(3)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	if worker == "" {
		return chain.StackItem{}, fault("worker required")
	}
	if amount.Sign() == 0 {
		return chain.StackItem{}, fault("escrow amount must be positive")
	}
	e := c.escrow.create(jobID, in.caller, worker, amount, token, c.now().UTC())
	if j, ok := c.market.jobs[idKey(jobID)]; ok && j.employer == in.caller && j.worker == worker && j.escrowID.Sign() == 0 {
		j.escrowID = new(big.Int).Set(e.id)
		e.payout = j.payout
	}
	return u256Item(e.id), nil
}

func releasePayment(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, payout := a.u256(0), a.felt(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	e, err := c.escrow.get(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if e.employer != in.caller {
		return chain.StackItem{}, fault("only the employer can release payment")
	}
	if e.status != escrowFunded {
		return chain.StackItem{}, fault("escrow %s: invalid status %d", id, e.status)
	}
	if j, ok := c.market.jobs[idKey(e.jobID)]; ok && j.escrowID.Cmp(e.id) == 0 && j.status == jobDisputed {
		return chain.StackItem{}, fault("escrow %s: job %s is disputed", id, j.id)
	}
	e.status = escrowReleased
	e.payout = payout
	return okItem(), nil
}

func disputePayment(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, reason := a.u256(0), a.text(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	e, err := c.escrow.get(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if e.employer != in.caller && !c.registry.controls(in.caller, e.pseudonym) {
		return chain.StackItem{}, fault("only the employer or the worker can dispute payment")
	}
	if e.status != escrowFunded {
		return chain.StackItem{}, fault("escrow %s: invalid status %d", id, e.status)
	}
	e.status = escrowDisputed
	e.reason = reason
	return okItem(), nil
}

func getEscrowDetails(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	e, err := c.escrow.get(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	return chain.NewStructItem(
		u256Item(e.id),
		u256Item(e.jobID),
		feltItem(e.employer),
		stringItem(e.pseudonym),
		u256Item(e.amount),
		feltItem(e.token),
		intItem(e.status),
		timeItem(e.createdAt),
	), nil
}
