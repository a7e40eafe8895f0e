package contracts

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/session"
)

// Addresses are the contract script hashes the client talks to.
type Addresses struct {
	JobMarketplace    string `json:"job_marketplace" yaml:"job_marketplace"`
	PseudonymRegistry string `json:"pseudonym_registry" yaml:"pseudonym_registry"`
	Escrow            string `json:"escrow" yaml:"escrow"`
	ZKVerifier        string `json:"zk_verifier" yaml:"zk_verifier"`
}

// Probe outcomes.
const (
	StatusDeployed = "deployed"
	StatusNotFound = "not-found"
	StatusError    = "error"
)

// ContractStatus is the result of probing one contract.
type ContractStatus struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Status  string      `json:"status"`
	Kind    errors.Kind `json:"kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// probeID names a job and an escrow that should not exist.
const probeID = "999999"

// Probe issues one harmless view call per contract. A contract whose code
// ran, even if it faulted or returned something undecodable, is deployed.
func Probe(ctx context.Context, invoker chain.Invoker, sess *session.Session, addrs Addresses, opts ...Option) []ContractStatus {
	checks := []struct {
		name string
		hash string
		run  func() error
	}{
		{NameJobMarketplace, addrs.JobMarketplace, func() error {
			_, err := NewJobMarketplace(invoker, addrs.JobMarketplace, sess, opts...).GetJobDetails(ctx, probeID)
			return err
		}},
		{NamePseudonymRegistry, addrs.PseudonymRegistry, func() error {
			_, err := NewPseudonymRegistry(invoker, addrs.PseudonymRegistry, sess, opts...).IsPseudonymRegistered(ctx, "test_pseudonym")
			return err
		}},
		{NameEscrow, addrs.Escrow, func() error {
			_, err := NewEscrow(invoker, addrs.Escrow, sess, opts...).GetEscrowDetails(ctx, probeID)
			return err
		}},
		{NameZKVerifier, addrs.ZKVerifier, func() error {
			_, err := NewZKVerifier(invoker, addrs.ZKVerifier, sess, opts...).IsValidVerificationKey(ctx, "0x1", "0x1")
			return err
		}},
	}

	out := make([]ContractStatus, 0, len(checks))
	for _, c := range checks {
		st := ContractStatus{Name: c.name, Address: c.hash, Status: StatusDeployed}
		if err := c.run(); err != nil {
			st.Kind = errors.KindOf(err)
			st.Error = errors.UserMessage(err)
			switch st.Kind {
			case errors.KindExecution, errors.KindDecode:
			case errors.KindSession:
				st.Status = StatusError
			default:
				st.Status = StatusNotFound
			}
		}
		out = append(out, st)
	}
	return out
}
