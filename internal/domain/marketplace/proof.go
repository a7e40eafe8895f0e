package marketplace

import (
	"context"
	"fmt"

	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/errors"
)

// ZKProofComponents is the proof envelope accepted by every proof consuming
// entry point. All elements are hex field elements.
type ZKProofComponents struct {
	ProofA       [2]string    `json:"proof_a"`
	ProofB       [2][2]string `json:"proof_b"`
	ProofC       [2]string    `json:"proof_c"`
	PublicInputs [4]string    `json:"public_inputs"`
}

// Elements returns the envelope flattened in wire order.
func (p ZKProofComponents) Elements() []string {
	out := make([]string, 0, 12)
	out = append(out, p.ProofA[:]...)
	out = append(out, p.ProofB[0][:]...)
	out = append(out, p.ProofB[1][:]...)
	out = append(out, p.ProofC[:]...)
	out = append(out, p.PublicInputs[:]...)
	return out
}

// ProofFromElements rebuilds an envelope from its wire order.
func ProofFromElements(el []string) (ZKProofComponents, error) {
	var p ZKProofComponents
	if len(el) != 12 {
		return p, errors.Newf(errors.KindDecode, "proof_from_elements", "expected 12 elements, got %d", len(el))
	}
	copy(p.ProofA[:], el[0:2])
	copy(p.ProofB[0][:], el[2:4])
	copy(p.ProofB[1][:], el[4:6])
	copy(p.ProofC[:], el[6:8])
	copy(p.PublicInputs[:], el[8:12])
	return p, nil
}

// Validate checks that every element is a field element.
func (p ZKProofComponents) Validate() error {
	for i, e := range p.Elements() {
		if _, err := codec.ParseFelt(e); err != nil {
			return errors.Newf(errors.KindValidation, "validate_proof", "element %d: %q is not a field element", i, e)
		}
	}
	return nil
}

// ProofStatement describes what a proof attests to.
type ProofStatement struct {
	Pseudonym     string
	SkillTypeHash string
	Level         SkillLevel
	Commitment    string
}

// Prover produces proof envelopes.
type Prover interface {
	Prove(ctx context.Context, st ProofStatement) (ZKProofComponents, error)
}

// PlaceholderProver fills the envelope with elements derived from the
// statement. The result has the right shape but proves nothing; a real
// prover must replace it before proofs are checked by a verifier that
// enforces soundness.
type PlaceholderProver struct{}

// Prove implements Prover.
func (PlaceholderProver) Prove(ctx context.Context, st ProofStatement) (ZKProofComponents, error) {
	if err := ctx.Err(); err != nil {
		return ZKProofComponents{}, err
	}
	seed := fmt.Sprintf("%s|%s|%d|%s", st.Pseudonym, st.SkillTypeHash, st.Level, st.Commitment)
	el := make([]string, 12)
	for i := range el {
		el[i] = codec.HashContent("placeholder-proof", seed, fmt.Sprint(i))
	}
	el[8] = codec.HashContent("skill-proof", seed)
	return ProofFromElements(el)
}

// SkillProofHash is the hash stored with an application: the first public
// input of the envelope.
func (p ZKProofComponents) SkillProofHash() string {
	return p.PublicInputs[0]
}
