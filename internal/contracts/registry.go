package contracts

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/session"
)

// PseudonymRegistry wraps the pseudonym registry contract.
type PseudonymRegistry struct {
	base
}

// NewPseudonymRegistry creates a registry gateway.
func NewPseudonymRegistry(invoker chain.Invoker, contractHash string, sess *session.Session, opts ...Option) *PseudonymRegistry {
	return &PseudonymRegistry{base: newBase(NamePseudonymRegistry, invoker, contractHash, sess, opts)}
}

// RegisterPseudonym binds a pseudonym to an identity commitment and locks
// the reputation bond.
func (r *PseudonymRegistry) RegisterPseudonym(ctx context.Context, pseudonym, identityCommitment, skillsCommitment, bond string) (string, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.add(FeltParam("identity_commitment", identityCommitment))
	l.add(FeltParam("skills_commitment", skillsCommitment))
	l.add(Uint256Param(bond))
	return r.send(ctx, "register_pseudonym", l)
}

// AddSkillProof attaches a skill proof to a pseudonym.
func (r *PseudonymRegistry) AddSkillProof(ctx context.Context, pseudonym, skillTypeHash string, level marketplace.SkillLevel, proof marketplace.ZKProofComponents, vk string) (string, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.add(FeltParam("skill_type_hash", skillTypeHash))
	l.plain(intParam(int64(level)))
	l.add(ProofParam(proof))
	l.add(FeltParam("verification_key", vk))
	return r.send(ctx, "add_skill_proof", l)
}

// UpdateReputation adjusts a worker's reputation directly.
func (r *PseudonymRegistry) UpdateReputation(ctx context.Context, pseudonym string, delta int64, jobID string) (string, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.plain(intParam(delta))
	l.add(Uint256Param(jobID))
	return r.send(ctx, "update_reputation", l)
}

// GetWorkerProfile returns the profile registered under pseudonym.
func (r *PseudonymRegistry) GetWorkerProfile(ctx context.Context, pseudonym string) (*marketplace.WorkerProfile, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	item, err := r.query(ctx, "get_worker_profile", l)
	if err != nil {
		return nil, err
	}
	p, err := ParseWorkerProfile(item)
	if err != nil {
		return nil, r.decodeFailed(ctx, "get_worker_profile", err)
	}
	return p, nil
}

// IsPseudonymRegistered reports whether pseudonym is taken.
func (r *PseudonymRegistry) IsPseudonymRegistered(ctx context.Context, pseudonym string) (bool, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	return r.queryBool(ctx, "is_pseudonym_registered", l)
}

// VerifySkillRequirement checks a proof that pseudonym holds the required skill.
func (r *PseudonymRegistry) VerifySkillRequirement(ctx context.Context, pseudonym, requiredSkillHash string, proof marketplace.ZKProofComponents) (bool, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.add(FeltParam("required_skill_hash", requiredSkillHash))
	l.add(ProofParam(proof))
	return r.queryBool(ctx, "verify_skill_requirement", l)
}

// ProvePseudonymOwnership checks a proof of control over pseudonym.
func (r *PseudonymRegistry) ProvePseudonymOwnership(ctx context.Context, pseudonym string, proof marketplace.ZKProofComponents) (bool, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.add(ProofParam(proof))
	return r.queryBool(ctx, "prove_pseudonym_ownership", l)
}

// GetSkillProofs returns every skill proof attached to pseudonym.
func (r *PseudonymRegistry) GetSkillProofs(ctx context.Context, pseudonym string) ([]marketplace.SkillProof, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	item, err := r.query(ctx, "get_skill_proofs", l)
	if err != nil {
		return nil, err
	}
	proofs, err := parseList(item, ParseSkillProof)
	if err != nil {
		return nil, r.decodeFailed(ctx, "get_skill_proofs", err)
	}
	return proofs, nil
}
