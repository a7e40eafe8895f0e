package simchain

import (
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
)

type profile struct {
	pseudonym  string
	owner      string
	commitment string
	skills     string
	reputation int64
	completed  uint64
	earnings   *big.Int
	registered time.Time
	bond       *big.Int
	active     bool
}

type skillProof struct {
	skillType string
	level     int64
	data      []string
	vk        string
	timestamp time.Time
	verified  bool
}

type registryState struct {
	profiles map[string]*profile
	proofs   map[string][]*skillProof
}

func newRegistryState() *registryState {
	return &registryState{
		profiles: make(map[string]*profile),
		proofs:   make(map[string][]*skillProof),
	}
}

var registryEntryPoints = map[string]entryPoint{
	"register_pseudonym":        {4, true, registerPseudonym},
	"add_skill_proof":           {5, true, addSkillProof},
	"update_reputation":         {3, true, updateReputation},
	"get_worker_profile":        {1, false, getWorkerProfile},
	"is_pseudonym_registered":   {1, false, isPseudonymRegistered},
	"verify_skill_requirement":  {3, false, verifySkillRequirement},
	"prove_pseudonym_ownership": {2, false, provePseudonymOwnership},
	"get_skill_proofs":          {1, false, getSkillProofs},
}

func (r *registryState) profile(pseudonym string) (*profile, error) {
	p, ok := r.profiles[pseudonym]
	if !ok {
		return nil, fault("pseudonym %s not registered", pseudonym)
	}
	return p, nil
}

// controls reports whether address registered pseudonym.
func (r *registryState) controls(address, pseudonym string) bool {
	p, ok := r.profiles[pseudonym]
	return ok && address != "" && p.owner == address
}

func registerPseudonym(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, commitment, skills, bond := a.str(0), a.felt(1), a.felt(2), a.u256(3)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	if pseudonym == "" {
		return chain.StackItem{}, fault("pseudonym required")
	}
	if _, ok := c.registry.profiles[pseudonym]; ok {
		return chain.StackItem{}, fault("pseudonym %s already registered", pseudonym)
	}
	c.registry.profiles[pseudonym] = &profile{
		pseudonym:  pseudonym,
		owner:      in.caller,
		commitment: commitment,
		skills:     skills,
		earnings:   new(big.Int),
		registered: c.now().UTC(),
		bond:       bond,
		active:     true,
	}
	return okItem(), nil
}

func addSkillProof(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, skillType, level, proof, vk := a.str(0), a.felt(1), a.signed(2), a.proof(3), a.felt(4)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	if !c.registry.controls(in.caller, pseudonym) {
		return chain.StackItem{}, fault("pseudonym %s not registered to caller", pseudonym)
	}
	if level < 1 || level > 4 {
		return chain.StackItem{}, fault("invalid skill level %d", level)
	}
	c.registry.proofs[pseudonym] = append(c.registry.proofs[pseudonym], &skillProof{
		skillType: skillType,
		level:     level,
		data:      proof,
		vk:        vk,
		timestamp: c.now().UTC(),
		verified:  c.verifier.valid(skillType, vk),
	})
	return okItem(), nil
}

func updateReputation(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, delta := a.str(0), a.signed(1)
	a.u256(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	p, err := c.registry.profile(pseudonym)
	if err != nil {
		return chain.StackItem{}, err
	}
	p.reputation += delta
	return okItem(), nil
}

func getWorkerProfile(c *Chain, in *call) (chain.StackItem, error) {
	pseudonym := in.args.str(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	p, err := c.registry.profile(pseudonym)
	if err != nil {
		return chain.StackItem{}, err
	}
	return chain.NewStructItem(
		stringItem(p.pseudonym),
		feltItem(p.commitment),
		feltItem(p.skills),
		intItem(p.reputation),
		chain.NewIntegerItem(new(big.Int).SetUint64(p.completed)),
		u256Item(p.earnings),
		timeItem(p.registered),
		u256Item(p.bond),
		chain.NewBooleanItem(p.active),
	), nil
}

func isPseudonymRegistered(c *Chain, in *call) (chain.StackItem, error) {
	pseudonym := in.args.str(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	_, ok := c.registry.profiles[pseudonym]
	return chain.NewBooleanItem(ok), nil
}

// verifySkillRequirement holds when the pseudonym carries a verified proof
// for the required skill type.
func verifySkillRequirement(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, required := a.str(0), a.felt(1)
	a.proof(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	for _, sp := range c.registry.proofs[pseudonym] {
		if sp.skillType == required && sp.verified {
			return chain.NewBooleanItem(true), nil
		}
	}
	return chain.NewBooleanItem(false), nil
}

func provePseudonymOwnership(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym := a.str(0)
	a.proof(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	p, ok := c.registry.profiles[pseudonym]
	return chain.NewBooleanItem(ok && p.active), nil
}

func getSkillProofs(c *Chain, in *call) (chain.StackItem, error) {
	pseudonym := in.args.str(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	if _, err := c.registry.profile(pseudonym); err != nil {
		return chain.StackItem{}, err
	}
	var items []chain.StackItem
	for _, sp := range c.registry.proofs[pseudonym] {
		data := make([]chain.StackItem, len(sp.data))
		for i, d := range sp.data {
			data[i] = feltItem(d)
		}
		items = append(items, chain.NewStructItem(
			feltItem(sp.skillType),
			intItem(sp.level),
			chain.NewArrayItem(data...),
			feltItem(sp.vk),
			timeItem(sp.timestamp),
			chain.NewBooleanItem(sp.verified),
		))
	}
	return chain.NewArrayItem(items...), nil
}
