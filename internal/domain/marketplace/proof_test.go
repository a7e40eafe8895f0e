package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderProver_Shape(t *testing.T) {
	p, err := PlaceholderProver{}.Prove(context.Background(), ProofStatement{Pseudonym: "worker_abc123", SkillTypeHash: "0x1", Level: SkillLevelAdvanced})
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Len(t, p.Elements(), 12)
	assert.Equal(t, p.PublicInputs[0], p.SkillProofHash())

	again, err := PlaceholderProver{}.Prove(context.Background(), ProofStatement{Pseudonym: "worker_abc123", SkillTypeHash: "0x1", Level: SkillLevelAdvanced})
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestPlaceholderProver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PlaceholderProver{}.Prove(ctx, ProofStatement{})
	assert.Error(t, err)
}

func TestProofFromElements(t *testing.T) {
	el := []string{"0x1", "0x2", "0x3", "0x4", "0x5", "0x6", "0x7", "0x8", "0x9", "0xa", "0xb", "0xc"}
	p, err := ProofFromElements(el)
	require.NoError(t, err)
	assert.Equal(t, [2][2]string{{"0x3", "0x4"}, {"0x5", "0x6"}}, p.ProofB)
	assert.Equal(t, el, p.Elements())

	_, err = ProofFromElements(el[:11])
	assert.Error(t, err)

	p.ProofA[0] = "nope"
	assert.Error(t, p.Validate())
}
