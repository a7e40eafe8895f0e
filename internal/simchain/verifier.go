package simchain

import (
	"github.com/Rampop01/spectralpay/internal/chain"
)

// verifierState maps skill type hashes to their registered keys. Proofs are
// accepted on shape alone.
type verifierState struct {
	keys map[string]map[string]bool
}

func newVerifierState() *verifierState {
	return &verifierState{keys: make(map[string]map[string]bool)}
}

func (v *verifierState) valid(skillType, vk string) bool {
	return v.keys[skillType][vk]
}

var verifierEntryPoints = map[string]entryPoint{
	"add_verification_key":      {2, true, addVerificationKey},
	"verify_skill_proof":        {4, false, verifySkillProof},
	"verify_identity_proof":     {3, false, verifyIdentityProof},
	"is_valid_verification_key": {2, false, isValidVerificationKey},
}

func addVerificationKey(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	skillType, vk := a.felt(0), a.felt(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	if c.verifier.keys[skillType] == nil {
		c.verifier.keys[skillType] = make(map[string]bool)
	}
	c.verifier.keys[skillType][vk] = true
	return okItem(), nil
}

func verifySkillProof(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	skillType, level := a.felt(0), a.signed(1)
	a.proof(2)
	vk := a.felt(3)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	ok := level >= 1 && level <= 4 && c.verifier.valid(skillType, vk)
	return chain.NewBooleanItem(ok), nil
}

func verifyIdentityProof(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, commitment := a.str(0), a.felt(1)
	a.proof(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	p, ok := c.registry.profiles[pseudonym]
	return chain.NewBooleanItem(ok && p.commitment == commitment), nil
}

func isValidVerificationKey(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	skillType, vk := a.felt(0), a.felt(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	return chain.NewBooleanItem(c.verifier.valid(skillType, vk)), nil
}
