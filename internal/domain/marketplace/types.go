// Package marketplace holds the job marketplace data model, the job
// lifecycle rules, and the proof envelope carried to the verifier.
package marketplace

import (
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// Job is a unit of work posted by an employer.
type Job struct {
	ID                 *big.Int  `json:"id"`
	Employer           string    `json:"employer"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	RequiredSkillsHash string    `json:"required_skills_hash"`
	PaymentAmount      *big.Int  `json:"payment_amount"`
	PaymentToken       string    `json:"payment_token"`
	WorkDeadlineDays   uint64    `json:"work_deadline_days"`
	WorkDeadline       time.Time `json:"work_deadline"`
	Status             JobStatus `json:"status"`
	AssignedWorker     string    `json:"assigned_worker,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	AssignedAt         time.Time `json:"assigned_at"`
	EscrowID           *big.Int  `json:"escrow_id,omitempty"`
}

// HasEscrow reports whether an escrow has been created for the job.
func (j *Job) HasEscrow() bool {
	return j.EscrowID != nil && j.EscrowID.Sign() != 0
}

// Validate checks the relationship between status, worker and escrow.
func (j *Job) Validate() error {
	if j.Status.HasWorker() != (j.AssignedWorker != "") {
		return errors.Newf(errors.KindDecode, "validate_job", "job %s: status %s inconsistent with assigned worker %q", j.ID, j.Status, j.AssignedWorker)
	}
	if j.HasEscrow() && !j.Status.HasWorker() {
		return errors.Newf(errors.KindDecode, "validate_job", "job %s: escrow set while %s", j.ID, j.Status)
	}
	return nil
}

// Clone returns a deep copy of j.
func (j Job) Clone() Job {
	c := j
	if j.ID != nil {
		c.ID = new(big.Int).Set(j.ID)
	}
	if j.PaymentAmount != nil {
		c.PaymentAmount = new(big.Int).Set(j.PaymentAmount)
	}
	if j.EscrowID != nil {
		c.EscrowID = new(big.Int).Set(j.EscrowID)
	}
	return c
}

// WorkerApplication is one worker's bid on one job.
type WorkerApplication struct {
	WorkerPseudonym string            `json:"worker_pseudonym"`
	SkillProofHash  string            `json:"skill_proof_hash"`
	ProposalHash    string            `json:"proposal_hash"`
	AppliedAt       time.Time         `json:"applied_at"`
	Status          ApplicationStatus `json:"status"`
}

// ExtensionRequest is a worker's request to push a job's deadline.
type ExtensionRequest struct {
	JobID            *big.Int               `json:"job_id"`
	WorkerPseudonym  string                 `json:"worker_pseudonym"`
	AdditionalDays   uint64                 `json:"additional_days"`
	Reason           string                 `json:"reason"`
	RequestedAt      time.Time              `json:"requested_at"`
	Status           ExtensionRequestStatus `json:"status"`
	EmployerResponse string                 `json:"employer_response"`
	RespondedAt      time.Time              `json:"responded_at"`
}

// WorkerProfile is the pseudonymous identity record.
type WorkerProfile struct {
	Pseudonym        string    `json:"pseudonym"`
	OwnerCommitment  string    `json:"owner_commitment"`
	SkillsCommitment string    `json:"skills_commitment"`
	ReputationScore  int64     `json:"reputation_score"`
	CompletedJobs    uint64    `json:"completed_jobs"`
	TotalEarnings    *big.Int  `json:"total_earnings"`
	RegistrationTime time.Time `json:"registration_time"`
	ReputationBond   *big.Int  `json:"reputation_bond"`
	Active           bool      `json:"active"`
}

// SkillProof is a verifiable skill claim attached to a pseudonym.
type SkillProof struct {
	SkillTypeHash   string     `json:"skill_type_hash"`
	Level           SkillLevel `json:"level"`
	ProofData       []string   `json:"proof_data"`
	VerificationKey string     `json:"verification_key"`
	Timestamp       time.Time  `json:"timestamp"`
	Verified        bool       `json:"verified"`
}

// EscrowDetails is the escrow held for a job.
type EscrowDetails struct {
	ID              *big.Int     `json:"id"`
	JobID           *big.Int     `json:"job_id"`
	Employer        string       `json:"employer"`
	WorkerPseudonym string       `json:"worker_pseudonym"`
	Amount          *big.Int     `json:"amount"`
	Token           string       `json:"token"`
	Status          EscrowStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ReputationAward is the reputation delta granted when work is approved.
const ReputationAward = 50

// Limits on user supplied job parameters.
const (
	MinDeadlineDays = 1
	MaxDeadlineDays = 365
)

// TimeFromUnix converts a contract timestamp; zero stays the zero time.
func TimeFromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
