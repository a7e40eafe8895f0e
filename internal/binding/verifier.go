package binding

import (
	"context"

	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/session"
)

// VerificationKeyInput names a verification key for a skill type.
type VerificationKeyInput struct {
	SkillTypeHash   string
	VerificationKey string
}

// SkillProofCheckInput is checked against the verifier. Without a Proof a
// placeholder is used.
type SkillProofCheckInput struct {
	SkillTypeHash   string
	Level           marketplace.SkillLevel
	VerificationKey string
	Proof           *marketplace.ZKProofComponents
}

// IdentityProofInput checks a pseudonym against an identity commitment,
// derived from Secret when Commitment is empty.
type IdentityProofInput struct {
	Pseudonym  string
	Secret     string
	Commitment string
	Proof      *marketplace.ZKProofComponents
}

// Verifier is the set of ZK verifier operations.
type Verifier struct {
	deps *Deps

	AddVerificationKey  *Operation[VerificationKeyInput, string]
	VerifySkillProof    *Operation[SkillProofCheckInput, bool]
	VerifyIdentityProof *Operation[IdentityProofInput, bool]
	IsValidKey          *Operation[VerificationKeyInput, bool]
}

// NewVerifier builds the verifier operations.
func NewVerifier(deps Deps) *Verifier {
	d := deps.withDefaults()
	v := &Verifier{deps: d}
	v.AddVerificationKey = newOperation(d, OpAddVerificationKey, true, v.addKey)
	v.VerifySkillProof = newOperation(d, OpVerifySkillProof, false, v.verifySkillProof)
	v.VerifyIdentityProof = newOperation(d, OpVerifyIdentityProof, false, v.verifyIdentity)
	v.IsValidKey = newOperation(d, OpIsValidKey, false, v.isValidKey)
	return v
}

func keyInput(op string, in VerificationKeyInput) (skill, vk string, err error) {
	if skill, err = requireFelt(op, "skill type hash", in.SkillTypeHash); err != nil {
		return "", "", err
	}
	if vk, err = requireFelt(op, "verification key", in.VerificationKey); err != nil {
		return "", "", err
	}
	return skill, vk, nil
}

func (v *Verifier) addKey(ctx context.Context, sess *session.Session, in VerificationKeyInput) (string, error) {
	skill, vk, err := keyInput(OpAddVerificationKey, in)
	if err != nil {
		return "", err
	}
	return v.deps.verifier(sess).AddVerificationKey(ctx, skill, vk)
}

func (v *Verifier) isValidKey(ctx context.Context, sess *session.Session, in VerificationKeyInput) (bool, error) {
	skill, vk, err := keyInput(OpIsValidKey, in)
	if err != nil {
		return false, err
	}
	return v.deps.verifier(sess).IsValidVerificationKey(ctx, skill, vk)
}

func (v *Verifier) verifySkillProof(ctx context.Context, sess *session.Session, in SkillProofCheckInput) (bool, error) {
	skill, vk, err := keyInput(OpVerifySkillProof, VerificationKeyInput{
		SkillTypeHash:   in.SkillTypeHash,
		VerificationKey: in.VerificationKey,
	})
	if err != nil {
		return false, err
	}
	if _, err := marketplace.ParseSkillLevel(int64(in.Level)); err != nil {
		return false, invalid(OpVerifySkillProof, "invalid skill level %d", in.Level)
	}
	proof, err := prove(ctx, v.deps, OpVerifySkillProof, in.Proof, marketplace.ProofStatement{
		SkillTypeHash: skill,
		Level:         in.Level,
	})
	if err != nil {
		return false, err
	}
	return v.deps.verifier(sess).VerifySkillProof(ctx, skill, in.Level, proof, vk)
}

func (v *Verifier) verifyIdentity(ctx context.Context, sess *session.Session, in IdentityProofInput) (bool, error) {
	pseudonym, err := requireText(OpVerifyIdentityProof, "pseudonym", in.Pseudonym)
	if err != nil {
		return false, err
	}
	commitment := in.Commitment
	switch {
	case commitment != "":
		if commitment, err = requireFelt(OpVerifyIdentityProof, "commitment", commitment); err != nil {
			return false, err
		}
	case in.Secret != "":
		commitment = codec.Commitment(in.Secret, pseudonym)
	default:
		return false, errors.New(errors.KindValidation, OpVerifyIdentityProof, "a commitment or secret is required")
	}
	proof, err := prove(ctx, v.deps, OpVerifyIdentityProof, in.Proof, marketplace.ProofStatement{
		Pseudonym:  pseudonym,
		Commitment: commitment,
	})
	if err != nil {
		return false, err
	}
	return v.deps.verifier(sess).VerifyIdentityProof(ctx, pseudonym, commitment, proof)
}
