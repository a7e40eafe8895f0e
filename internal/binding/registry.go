package binding

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/session"
)

const (
	OpRegisterPseudonym   = "register_pseudonym"
	OpAddSkillProof       = "add_skill_proof"
	OpUpdateReputation    = "update_reputation"
	OpWorkerProfile       = "get_worker_profile"
	OpIsRegistered        = "is_pseudonym_registered"
	OpSkillProofs         = "get_skill_proofs"
	OpVerifySkill         = "verify_skill_requirement"
	OpProveOwnership      = "prove_pseudonym_ownership"
	OpAddVerificationKey  = "add_verification_key"
	OpVerifySkillProof    = "verify_skill_proof"
	OpVerifyIdentityProof = "verify_identity_proof"
	OpIsValidKey          = "is_valid_verification_key"
)

// RegisterInput creates a pseudonym. The identity commitment is derived from
// Secret unless IdentityCommitment is given; the skills commitment is
// derived from Skills the same way.
type RegisterInput struct {
	Pseudonym          string
	Secret             string
	IdentityCommitment string
	Skills             []string
	SkillsCommitment   string
	BondWei            string
	BondTokens         string
}

// SkillProofInput attaches a skill claim to a pseudonym. Skill is hashed
// unless SkillTypeHash is given.
type SkillProofInput struct {
	Pseudonym       string
	Skill           string
	SkillTypeHash   string
	Level           marketplace.SkillLevel
	VerificationKey string
	Proof           *marketplace.ZKProofComponents
}

type ReputationInput struct {
	Pseudonym string
	Delta     int64
	JobID     string
}

type SkillRequirementInput struct {
	Pseudonym     string
	SkillTypeHash string
	Proof         *marketplace.ZKProofComponents
}

type OwnershipInput struct {
	Pseudonym string
	Secret    string
	Proof     *marketplace.ZKProofComponents
}

// Registry is the set of pseudonym registry operations.
type Registry struct {
	deps *Deps

	Register         *Operation[RegisterInput, string]
	AddSkillProof    *Operation[SkillProofInput, string]
	UpdateReputation *Operation[ReputationInput, string]
	Profile          *Operation[string, marketplace.WorkerProfile]
	IsRegistered     *Operation[string, bool]
	SkillProofs      *Operation[string, []marketplace.SkillProof]
	VerifySkill      *Operation[SkillRequirementInput, bool]
	ProveOwnership   *Operation[OwnershipInput, bool]
}

// NewRegistry builds the registry operations.
func NewRegistry(deps Deps) *Registry {
	d := deps.withDefaults()
	r := &Registry{deps: d}
	r.Register = newOperation(d, OpRegisterPseudonym, true, r.register)
	r.AddSkillProof = newOperation(d, OpAddSkillProof, true, r.addSkillProof)
	r.UpdateReputation = newOperation(d, OpUpdateReputation, true, r.updateReputation)
	r.Profile = newOperation(d, OpWorkerProfile, false, r.profile)
	r.IsRegistered = newOperation(d, OpIsRegistered, false, r.isRegistered)
	r.SkillProofs = newOperation(d, OpSkillProofs, false, r.skillProofs)
	r.VerifySkill = newOperation(d, OpVerifySkill, false, r.verifySkill)
	r.ProveOwnership = newOperation(d, OpProveOwnership, false, r.proveOwnership)
	return r
}

// SkillTypeHash hashes a skill name the way skill proofs and job
// requirements refer to it.
func SkillTypeHash(skill string) string {
	return skillsHash([]string{skill})
}

// prove returns p, or a placeholder proof for st when p is nil.
func prove(ctx context.Context, d *Deps, op string, p *marketplace.ZKProofComponents, st marketplace.ProofStatement) (marketplace.ZKProofComponents, error) {
	if p != nil {
		if err := p.Validate(); err != nil {
			return marketplace.ZKProofComponents{}, errors.Classify(op, err)
		}
		return *p, nil
	}
	out, err := d.Prover.Prove(ctx, st)
	if err != nil {
		return marketplace.ZKProofComponents{}, errors.Wrap(errors.KindInternal, op, err)
	}
	return out, nil
}

func (r *Registry) register(ctx context.Context, sess *session.Session, in RegisterInput) (string, error) {
	pseudonym, err := requireText(OpRegisterPseudonym, "pseudonym", in.Pseudonym)
	if err != nil {
		return "", err
	}

	identity := in.IdentityCommitment
	if identity == "" {
		secret, err := requireText(OpRegisterPseudonym, "secret", in.Secret)
		if err != nil {
			return "", err
		}
		identity = codec.Commitment(secret, pseudonym)
	} else if identity, err = requireFelt(OpRegisterPseudonym, "identity commitment", identity); err != nil {
		return "", err
	}

	skills := in.SkillsCommitment
	if skills == "" {
		skills = codec.Commitment(identity, skillsHash(in.Skills))
	} else if skills, err = requireFelt(OpRegisterPseudonym, "skills commitment", skills); err != nil {
		return "", err
	}

	bondWei := in.BondWei
	if bondWei == "" && in.BondTokens == "" {
		bondWei = DefaultReputationBond
	}
	bond, err := amountWei(OpRegisterPseudonym, bondWei, in.BondTokens)
	if err != nil {
		return "", err
	}

	return r.deps.registry(sess).RegisterPseudonym(ctx, pseudonym, identity, skills, bond)
}

func (r *Registry) addSkillProof(ctx context.Context, sess *session.Session, in SkillProofInput) (string, error) {
	pseudonym, err := requireText(OpAddSkillProof, "pseudonym", in.Pseudonym)
	if err != nil {
		return "", err
	}
	if _, err := marketplace.ParseSkillLevel(int64(in.Level)); err != nil {
		return "", invalid(OpAddSkillProof, "invalid skill level %d", in.Level)
	}
	skill := in.SkillTypeHash
	if skill == "" {
		name, err := requireText(OpAddSkillProof, "skill", in.Skill)
		if err != nil {
			return "", err
		}
		skill = SkillTypeHash(name)
	} else if skill, err = requireFelt(OpAddSkillProof, "skill type hash", skill); err != nil {
		return "", err
	}
	vk, err := requireFelt(OpAddSkillProof, "verification key", in.VerificationKey)
	if err != nil {
		return "", err
	}

	proof, err := prove(ctx, r.deps, OpAddSkillProof, in.Proof, marketplace.ProofStatement{
		Pseudonym:     pseudonym,
		SkillTypeHash: skill,
		Level:         in.Level,
	})
	if err != nil {
		return "", err
	}
	return r.deps.registry(sess).AddSkillProof(ctx, pseudonym, skill, in.Level, proof, vk)
}

func (r *Registry) updateReputation(ctx context.Context, sess *session.Session, in ReputationInput) (string, error) {
	pseudonym, err := requireText(OpUpdateReputation, "pseudonym", in.Pseudonym)
	if err != nil {
		return "", err
	}
	id, err := jobID(OpUpdateReputation, in.JobID)
	if err != nil {
		return "", err
	}
	return r.deps.registry(sess).UpdateReputation(ctx, pseudonym, in.Delta, id)
}

func (r *Registry) profile(ctx context.Context, sess *session.Session, pseudonym string) (marketplace.WorkerProfile, error) {
	p, err := requireText(OpWorkerProfile, "pseudonym", pseudonym)
	if err != nil {
		return marketplace.WorkerProfile{}, err
	}
	out, err := r.deps.registry(sess).GetWorkerProfile(ctx, p)
	if err != nil {
		return marketplace.WorkerProfile{}, err
	}
	return *out, nil
}

func (r *Registry) isRegistered(ctx context.Context, sess *session.Session, pseudonym string) (bool, error) {
	p, err := requireText(OpIsRegistered, "pseudonym", pseudonym)
	if err != nil {
		return false, err
	}
	return r.deps.registry(sess).IsPseudonymRegistered(ctx, p)
}

func (r *Registry) skillProofs(ctx context.Context, sess *session.Session, pseudonym string) ([]marketplace.SkillProof, error) {
	p, err := requireText(OpSkillProofs, "pseudonym", pseudonym)
	if err != nil {
		return nil, err
	}
	return r.deps.registry(sess).GetSkillProofs(ctx, p)
}

func (r *Registry) verifySkill(ctx context.Context, sess *session.Session, in SkillRequirementInput) (bool, error) {
	pseudonym, err := requireText(OpVerifySkill, "pseudonym", in.Pseudonym)
	if err != nil {
		return false, err
	}
	skill, err := requireFelt(OpVerifySkill, "skill type hash", in.SkillTypeHash)
	if err != nil {
		return false, err
	}
	proof, err := prove(ctx, r.deps, OpVerifySkill, in.Proof, marketplace.ProofStatement{
		Pseudonym:     pseudonym,
		SkillTypeHash: skill,
	})
	if err != nil {
		return false, err
	}
	return r.deps.registry(sess).VerifySkillRequirement(ctx, pseudonym, skill, proof)
}

func (r *Registry) proveOwnership(ctx context.Context, sess *session.Session, in OwnershipInput) (bool, error) {
	pseudonym, err := requireText(OpProveOwnership, "pseudonym", in.Pseudonym)
	if err != nil {
		return false, err
	}
	st := marketplace.ProofStatement{Pseudonym: pseudonym}
	if in.Secret != "" {
		st.Commitment = codec.Commitment(in.Secret, pseudonym)
	}
	proof, err := prove(ctx, r.deps, OpProveOwnership, in.Proof, st)
	if err != nil {
		return false, err
	}
	return r.deps.registry(sess).ProvePseudonymOwnership(ctx, pseudonym, proof)
}
