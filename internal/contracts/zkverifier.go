package contracts

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/session"
)

// ZKVerifier wraps the proof verifier contract.
type ZKVerifier struct {
	base
}

// NewZKVerifier creates a verifier gateway.
func NewZKVerifier(invoker chain.Invoker, contractHash string, sess *session.Session, opts ...Option) *ZKVerifier {
	return &ZKVerifier{base: newBase(NameZKVerifier, invoker, contractHash, sess, opts)}
}

// AddVerificationKey registers vk for a skill type.
func (v *ZKVerifier) AddVerificationKey(ctx context.Context, skillTypeHash, vk string) (string, error) {
	l := &paramList{}
	l.add(FeltParam("skill_type_hash", skillTypeHash))
	l.add(FeltParam("verification_key", vk))
	return v.send(ctx, "add_verification_key", l)
}

func (v *ZKVerifier) VerifySkillProof(ctx context.Context, skillTypeHash string, level marketplace.SkillLevel, proof marketplace.ZKProofComponents, vk string) (bool, error) {
	l := &paramList{}
	l.add(FeltParam("skill_type_hash", skillTypeHash))
	l.plain(intParam(int64(level)))
	l.add(ProofParam(proof))
	l.add(FeltParam("verification_key", vk))
	return v.queryBool(ctx, "verify_skill_proof", l)
}

func (v *ZKVerifier) VerifyIdentityProof(ctx context.Context, pseudonym, commitment string, proof marketplace.ZKProofComponents) (bool, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.add(FeltParam("commitment", commitment))
	l.add(ProofParam(proof))
	return v.queryBool(ctx, "verify_identity_proof", l)
}

// IsValidVerificationKey reports whether vk is registered for the skill type.
func (v *ZKVerifier) IsValidVerificationKey(ctx context.Context, skillTypeHash, vk string) (bool, error) {
	l := &paramList{}
	l.add(FeltParam("skill_type_hash", skillTypeHash))
	l.add(FeltParam("verification_key", vk))
	return v.queryBool(ctx, "is_valid_verification_key", l)
}
