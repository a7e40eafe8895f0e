package contracts

import (
	"context"
	"math/big"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/session"
)

// JobMarketplace wraps the job marketplace contract.
type JobMarketplace struct {
	base
}

// NewJobMarketplace creates a job marketplace gateway.
func NewJobMarketplace(invoker chain.Invoker, contractHash string, sess *session.Session, opts ...Option) *JobMarketplace {
	return &JobMarketplace{base: newBase(NameJobMarketplace, invoker, contractHash, sess, opts)}
}

// PostJobParams are the arguments of post_job.
type PostJobParams struct {
	Title              string
	Description        string
	RequiredSkillsHash string
	PaymentAmount      string // smallest token unit
	DeadlineDays       uint64
	PaymentToken       string
}

// =============================================================================
// Write Methods
// =============================================================================

// PostJob creates a job in the Open status.
func (m *JobMarketplace) PostJob(ctx context.Context, p PostJobParams) (string, error) {
	l := &paramList{}
	l.plain(ByteArrayParam(p.Title))
	l.plain(ByteArrayParam(p.Description))
	l.add(FeltParam("required_skills_hash", p.RequiredSkillsHash))
	l.add(Uint256Param(p.PaymentAmount))
	l.plain(uintParam(p.DeadlineDays))
	l.add(FeltParam("payment_token", p.PaymentToken))
	return m.send(ctx, "post_job", l)
}

// ApplyForJob records a worker application.
func (m *JobMarketplace) ApplyForJob(ctx context.Context, jobID, pseudonym, skillProofHash, proposalHash string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.add(PseudonymParam(pseudonym))
	l.add(FeltParam("skill_proof_hash", skillProofHash))
	l.add(FeltParam("proposal_hash", proposalHash))
	return m.send(ctx, "apply_for_job", l)
}

// AssignJob assigns an applicant to an open job.
func (m *JobMarketplace) AssignJob(ctx context.Context, jobID, worker, payoutAddress string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.add(PseudonymParam(worker))
	l.add(FeltParam("worker_payout_address", payoutAddress))
	return m.send(ctx, "assign_job", l)
}

// SubmitWork records the assigned worker's deliverable.
func (m *JobMarketplace) SubmitWork(ctx context.Context, jobID, workProofHash, submissionURI string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.add(FeltParam("work_proof_hash", workProofHash))
	l.plain(ByteArrayParam(submissionURI))
	return m.send(ctx, "submit_work", l)
}

// ApproveWork completes a submitted job.
func (m *JobMarketplace) ApproveWork(ctx context.Context, jobID string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	return m.send(ctx, "approve_work", l)
}

// DisputeWork disputes a submitted job.
func (m *JobMarketplace) DisputeWork(ctx context.Context, jobID, reason string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.plain(ByteArrayParam(reason))
	return m.send(ctx, "dispute_work", l)
}

// CancelJob cancels an open job.
func (m *JobMarketplace) CancelJob(ctx context.Context, jobID string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	return m.send(ctx, "cancel_job", l)
}

// ExtendDeadline lets the employer push the deadline directly.
func (m *JobMarketplace) ExtendDeadline(ctx context.Context, jobID string, additionalDays uint64) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.plain(uintParam(additionalDays))
	return m.send(ctx, "extend_deadline", l)
}

// RequestDeadlineExtension asks the employer for more time.
func (m *JobMarketplace) RequestDeadlineExtension(ctx context.Context, jobID string, additionalDays uint64, reason string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.plain(uintParam(additionalDays))
	l.plain(ByteArrayParam(reason))
	return m.send(ctx, "request_deadline_extension", l)
}

// RespondToExtensionRequest approves or rejects the pending extension request.
func (m *JobMarketplace) RespondToExtensionRequest(ctx context.Context, jobID string, approve bool, response string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.plain(chain.NewBoolParam(approve))
	l.plain(ByteArrayParam(response))
	return m.send(ctx, "respond_to_extension_request", l)
}

// UpdateWorkerReputation adjusts a worker's reputation for a job.
func (m *JobMarketplace) UpdateWorkerReputation(ctx context.Context, pseudonym string, delta int64, jobID string) (string, error) {
	l := &paramList{}
	l.add(PseudonymParam(pseudonym))
	l.plain(intParam(delta))
	l.add(Uint256Param(jobID))
	return m.send(ctx, "update_worker_reputation", l)
}

// CreateJobEscrow funds an escrow for an assigned job.
func (m *JobMarketplace) CreateJobEscrow(ctx context.Context, jobID, worker, amount, token, payoutAddress string) (string, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	l.add(PseudonymParam(worker))
	l.add(Uint256Param(amount))
	l.add(FeltParam("token", token))
	l.add(FeltParam("payout_address", payoutAddress))
	return m.send(ctx, "create_job_escrow", l)
}

// =============================================================================
// Read Methods
// =============================================================================

// GetJobDetails returns a job.
func (m *JobMarketplace) GetJobDetails(ctx context.Context, jobID string) (*marketplace.Job, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	item, err := m.query(ctx, "get_job_details", l)
	if err != nil {
		return nil, err
	}
	job, err := ParseJob(item)
	if err != nil {
		return nil, m.decodeFailed(ctx, "get_job_details", err)
	}
	return job, nil
}

// GetJobCount returns the number of jobs ever posted. Job identifiers run
// from 1 to the count.
func (m *JobMarketplace) GetJobCount(ctx context.Context) (*big.Int, error) {
	item, err := m.query(ctx, "get_job_count", &paramList{})
	if err != nil {
		return nil, err
	}
	n, err := ParseUint256(item)
	if err != nil {
		return nil, m.decodeFailed(ctx, "get_job_count", err)
	}
	return n, nil
}

// GetWorkerApplications returns every application for a job.
func (m *JobMarketplace) GetWorkerApplications(ctx context.Context, jobID string) ([]marketplace.WorkerApplication, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	item, err := m.query(ctx, "get_worker_applications", l)
	if err != nil {
		return nil, err
	}
	apps, err := parseList(item, ParseApplication)
	if err != nil {
		return nil, m.decodeFailed(ctx, "get_worker_applications", err)
	}
	return apps, nil
}

// GetExtensionRequests returns every extension request for a job, oldest first.
func (m *JobMarketplace) GetExtensionRequests(ctx context.Context, jobID string) ([]marketplace.ExtensionRequest, error) {
	l := &paramList{}
	l.add(Uint256Param(jobID))
	item, err := m.query(ctx, "get_extension_requests", l)
	if err != nil {
		return nil, err
	}
	reqs, err := parseList(item, ParseExtensionRequest)
	if err != nil {
		return nil, m.decodeFailed(ctx, "get_extension_requests", err)
	}
	return reqs, nil
}
