package contracts_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/simchain"
)

const strk = "0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"

func TestJobMarketplaceAgainstSimulator(t *testing.T) {
	sim := simchain.New()
	ctx := context.Background()
	employer, worker := newSession(t), newSession(t)
	addrs := sim.Addresses()

	em := contracts.NewJobMarketplace(sim, addrs.JobMarketplace, employer)
	wm := contracts.NewJobMarketplace(sim, addrs.JobMarketplace, worker)
	reg := contracts.NewPseudonymRegistry(sim, addrs.PseudonymRegistry, worker)

	long := strings.Repeat("deliver a full audit report ", 5)
	tx, err := em.PostJob(ctx, contracts.PostJobParams{
		Title:              "Audit",
		Description:        long,
		RequiredSkillsHash: "0xabc",
		PaymentAmount:      "2500000000000000000",
		DeadlineDays:       7,
		PaymentToken:       strk,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tx, "0x"))

	_, err = reg.RegisterPseudonym(ctx, "worker_abc123", "0x11", "0x22", "1000")
	require.NoError(t, err)
	_, err = wm.ApplyForJob(ctx, "1", "worker_abc123", "0x33", "0x44")
	require.NoError(t, err)

	apps, err := em.GetWorkerApplications(ctx, "1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "worker_abc123", apps[0].WorkerPseudonym)
	assert.Equal(t, "0x33", apps[0].SkillProofHash)
	assert.Equal(t, marketplace.ApplicationStatusPending, apps[0].Status)

	_, err = em.AssignJob(ctx, "1", "worker_abc123", worker.Address())
	require.NoError(t, err)
	_, err = em.CreateJobEscrow(ctx, "1", "worker_abc123", "2500000000000000000", strk, worker.Address())
	require.NoError(t, err)

	job, err := em.GetJobDetails(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, long, job.Description)
	assert.Equal(t, marketplace.JobStatusAssigned, job.Status)
	assert.Equal(t, "worker_abc123", job.AssignedWorker)
	assert.Equal(t, employer.Address(), job.Employer)
	assert.Equal(t, strk, job.PaymentToken)
	require.True(t, job.HasEscrow())
	assert.Equal(t, int64(1), job.EscrowID.Int64())

	_, err = wm.RequestDeadlineExtension(ctx, "1", 5, "waiting on access to the repository")
	require.NoError(t, err)
	_, err = em.RespondToExtensionRequest(ctx, "1", true, "granted")
	require.NoError(t, err)

	reqs, err := em.GetExtensionRequests(ctx, "1")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, marketplace.ExtensionStatusApproved, reqs[0].Status)
	assert.Equal(t, "granted", reqs[0].EmployerResponse)
	assert.Equal(t, uint64(5), reqs[0].AdditionalDays)
	assert.False(t, reqs[0].RespondedAt.IsZero())

	extended, err := em.GetJobDetails(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), extended.WorkDeadlineDays)
	assert.Equal(t, 5*24*time.Hour, extended.WorkDeadline.Sub(job.WorkDeadline))

	_, err = wm.SubmitWork(ctx, "1", "0x55", "ipfs://bafy")
	require.NoError(t, err)
	_, err = em.ApproveWork(ctx, "1")
	require.NoError(t, err)
	_, err = em.UpdateWorkerReputation(ctx, "worker_abc123", marketplace.ReputationAward, "1")
	require.NoError(t, err)

	profile, err := reg.GetWorkerProfile(ctx, "worker_abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(marketplace.ReputationAward), profile.ReputationScore)
	assert.Equal(t, uint64(1), profile.CompletedJobs)
	assert.Equal(t, "2500000000000000000", profile.TotalEarnings.String())
	assert.Equal(t, "1000", profile.ReputationBond.String())
	assert.True(t, profile.Active)
}

func TestSkillProofsAgainstSimulator(t *testing.T) {
	sim := simchain.New()
	ctx := context.Background()
	sess := newSession(t)
	addrs := sim.Addresses()
	reg := contracts.NewPseudonymRegistry(sim, addrs.PseudonymRegistry, sess)
	zk := contracts.NewZKVerifier(sim, addrs.ZKVerifier, sess)

	proof, err := marketplace.PlaceholderProver{}.Prove(ctx, marketplace.ProofStatement{
		Pseudonym:     "worker_abc123",
		SkillTypeHash: "0x5",
		Level:         marketplace.SkillLevelAdvanced,
	})
	require.NoError(t, err)

	ok, err := zk.IsValidVerificationKey(ctx, "0x5", "0x77")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = zk.AddVerificationKey(ctx, "0x5", "0x77")
	require.NoError(t, err)
	ok, err = zk.IsValidVerificationKey(ctx, "0x5", "0x77")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = zk.VerifySkillProof(ctx, "0x5", marketplace.SkillLevelAdvanced, proof, "0x77")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = reg.RegisterPseudonym(ctx, "worker_abc123", "0x11", "0x22", "0")
	require.NoError(t, err)
	_, err = reg.AddSkillProof(ctx, "worker_abc123", "0x5", marketplace.SkillLevelAdvanced, proof, "0x77")
	require.NoError(t, err)

	proofs, err := reg.GetSkillProofs(ctx, "worker_abc123")
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	assert.Equal(t, marketplace.SkillLevelAdvanced, proofs[0].Level)
	assert.True(t, proofs[0].Verified)
	assert.Equal(t, proof.Elements(), proofs[0].ProofData)

	ok, err = reg.VerifySkillRequirement(ctx, "worker_abc123", "0x5", proof)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = zk.VerifyIdentityProof(ctx, "worker_abc123", "0x11", proof)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.ProvePseudonymOwnership(ctx, "worker_abc123", proof)
	require.NoError(t, err)
	assert.True(t, ok)
}
