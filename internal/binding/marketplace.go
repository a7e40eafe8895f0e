package binding

import (
	"context"
	"math/big"

	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
	"github.com/Rampop01/spectralpay/internal/session"
)

// Operation names.
const (
	OpPostJob            = "post_job"
	OpApplyForJob        = "apply_for_job"
	OpAssignJob          = "assign_job"
	OpSubmitWork         = "submit_work"
	OpApproveWork        = "approve_work"
	OpDisputeWork        = "dispute_work"
	OpCancelJob          = "cancel_job"
	OpExtendDeadline     = "extend_deadline"
	OpRequestExtension   = "request_deadline_extension"
	OpRespondToExtension = "respond_to_extension_request"
	OpRetryEscrow        = "retry_escrow"
	OpRetryReputation    = "retry_reputation"
	OpJobDetails         = "get_job_details"
	OpJobCount           = "get_job_count"
	OpApplications       = "get_worker_applications"
	OpExtensionRequests  = "get_extension_requests"

	stepEscrow     = "create_job_escrow"
	stepReputation = "update_worker_reputation"
)

// PostJobInput describes a new job. The payment is given either in the
// smallest token unit or in whole tokens. RequiredSkills is hashed unless
// SkillsHash is set.
type PostJobInput struct {
	Title          string
	Description    string
	RequiredSkills []string
	SkillsHash     string
	PaymentWei     string
	PaymentTokens  string
	DeadlineDays   uint64
	PaymentToken   string
}

// ApplyInput is a worker's application. Without a Proof one is produced by
// the configured prover.
type ApplyInput struct {
	JobID         string
	Pseudonym     string
	Proposal      string
	SkillTypeHash string
	Proof         *marketplace.ZKProofComponents
}

// AssignInput picks a worker. PayoutAddress defaults to the signer.
type AssignInput struct {
	JobID         string
	Worker        string
	PayoutAddress string
}

// SubmitInput is a deliverable. WorkProofHash defaults to a hash of the
// submission URI.
type SubmitInput struct {
	JobID         string
	SubmissionURI string
	WorkProofHash string
}

// DisputeInput disputes submitted work.
type DisputeInput struct {
	JobID  string
	Reason string
}

// ExtendInput pushes a job's deadline out by Days.
type ExtendInput struct {
	JobID string
	Days  uint64
}

// ExtensionRequestInput asks the employer for more time.
type ExtensionRequestInput struct {
	JobID  string
	Days   uint64
	Reason string
}

// ExtensionResponseInput answers the pending extension request.
type ExtensionResponseInput struct {
	JobID    string
	Approve  bool
	Response string
}

// RetryEscrowInput funds a missing job escrow. PayoutAddress defaults to the signer.
type RetryEscrowInput struct {
	JobID         string
	PayoutAddress string
}

// Marketplace is the set of job marketplace operations.
type Marketplace struct {
	deps *Deps

	PostJob            *Operation[PostJobInput, string]
	ApplyForJob        *Operation[ApplyInput, string]
	AssignJob          *Operation[AssignInput, AssignOutcome]
	SubmitWork         *Operation[SubmitInput, string]
	ApproveWork        *Operation[string, ApproveOutcome]
	DisputeWork        *Operation[DisputeInput, string]
	CancelJob          *Operation[string, string]
	ExtendDeadline     *Operation[ExtendInput, string]
	RequestExtension   *Operation[ExtensionRequestInput, string]
	RespondToExtension *Operation[ExtensionResponseInput, string]
	RetryEscrow        *Operation[RetryEscrowInput, Step]
	RetryReputation    *Operation[string, Step]

	JobDetails        *Operation[string, marketplace.JobView]
	JobCount          *Operation[struct{}, *big.Int]
	Applications      *Operation[string, []marketplace.WorkerApplication]
	ExtensionRequests *Operation[string, []marketplace.ExtensionRequest]
}

// NewMarketplace builds the marketplace operations.
func NewMarketplace(deps Deps) *Marketplace {
	d := deps.withDefaults()
	m := &Marketplace{deps: d}

	m.PostJob = newOperation(d, OpPostJob, true, m.postJob)
	m.ApplyForJob = newOperation(d, OpApplyForJob, true, m.applyForJob).
		onCommit(func(in ApplyInput, _ string) { m.optimistic(in.JobID, marketplace.ActionApply) })
	m.AssignJob = newOperation(d, OpAssignJob, true, m.assignJob).
		onCommit(func(in AssignInput, out AssignOutcome) {
			m.optimistic(in.JobID, marketplace.ActionAssign, func(j *marketplace.Job) {
				j.AssignedWorker = in.Worker
			})
		})
	m.SubmitWork = newOperation(d, OpSubmitWork, true, m.submitWork).
		onCommit(func(in SubmitInput, _ string) { m.optimistic(in.JobID, marketplace.ActionSubmit) })
	m.ApproveWork = newOperation(d, OpApproveWork, true, m.approveWork).
		onCommit(func(id string, _ ApproveOutcome) { m.optimistic(id, marketplace.ActionApprove) })
	m.DisputeWork = newOperation(d, OpDisputeWork, true, m.disputeWork).
		onCommit(func(in DisputeInput, _ string) { m.optimistic(in.JobID, marketplace.ActionDispute) })
	m.CancelJob = newOperation(d, OpCancelJob, true, m.cancelJob).
		onCommit(func(id string, _ string) { m.optimistic(id, marketplace.ActionCancel) })
	m.ExtendDeadline = newOperation(d, OpExtendDeadline, true, m.extendDeadline).
		onCommit(func(in ExtendInput, _ string) { m.optimistic(in.JobID, marketplace.ActionExtendDeadline) })
	m.RequestExtension = newOperation(d, OpRequestExtension, true, m.requestExtension).
		onCommit(func(in ExtensionRequestInput, _ string) {
			m.optimistic(in.JobID, marketplace.ActionRequestExtension)
		})
	m.RespondToExtension = newOperation(d, OpRespondToExtension, true, m.respondToExtension).
		onCommit(func(in ExtensionResponseInput, _ string) {
			m.optimistic(in.JobID, marketplace.ActionRespondExtension)
		})
	m.RetryEscrow = newOperation(d, OpRetryEscrow, true, m.retryEscrow)
	m.RetryReputation = newOperation(d, OpRetryReputation, true, m.retryReputation)

	m.JobDetails = newOperation(d, OpJobDetails, false, m.jobDetails).
		onCommit(func(_ string, v marketplace.JobView) { d.Tracker.Observe(v.Job) })
	m.JobCount = newOperation(d, OpJobCount, false, m.jobCount)
	m.Applications = newOperation(d, OpApplications, false, m.applications)
	m.ExtensionRequests = newOperation(d, OpExtensionRequests, false, m.extensionRequests)
	return m
}

// View returns the latest view of a job: confirmed after JobDetails,
// provisional after a mutation the chain has not been re-read for.
func (m *Marketplace) View(id string) (marketplace.JobView, bool) {
	key, err := jobID("view", id)
	if err != nil {
		return marketplace.JobView{}, false
	}
	return m.deps.Tracker.Get(key)
}

// optimistic marks the tracked job with the status the action leads to.
func (m *Marketplace) optimistic(id string, a marketplace.Action, mutate ...func(*marketplace.Job)) {
	key, err := jobID("optimistic", id)
	if err != nil {
		return
	}
	if _, _, err := m.deps.Tracker.Apply(key, a, mutate...); err != nil {
		m.deps.Logger.WithFields(map[string]interface{}{
			"job_id": key,
			"action": string(a),
		}).WithError(err).Debug("optimistic update skipped")
	}
}

// guard reads the job and checks that action a is legal for its status.
// The read is recorded as the job's confirmed view.
func (m *Marketplace) guard(ctx context.Context, g *contracts.JobMarketplace, op, id string, a marketplace.Action) (*marketplace.Job, error) {
	job, err := g.GetJobDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	m.deps.Tracker.Observe(*job)
	if err := marketplace.CheckAction(op, job.Status, a); err != nil {
		return nil, err
	}
	return job, nil
}

// =============================================================================
// Mutations
// =============================================================================

func (m *Marketplace) postJob(ctx context.Context, sess *session.Session, in PostJobInput) (string, error) {
	title, err := requireText(OpPostJob, "title", in.Title)
	if err != nil {
		return "", err
	}
	if err := deadlineDays(OpPostJob, in.DeadlineDays); err != nil {
		return "", err
	}
	payment, err := amountWei(OpPostJob, in.PaymentWei, in.PaymentTokens)
	if err != nil {
		return "", err
	}
	hash := skillsHash(in.RequiredSkills)
	if in.SkillsHash != "" {
		if hash, err = requireFelt(OpPostJob, "skills hash", in.SkillsHash); err != nil {
			return "", err
		}
	}
	token := in.PaymentToken
	if token == "" {
		token = DefaultPaymentToken
	}
	if token, err = requireFelt(OpPostJob, "payment token", token); err != nil {
		return "", err
	}

	return m.deps.market(sess).PostJob(ctx, contracts.PostJobParams{
		Title:              title,
		Description:        in.Description,
		RequiredSkillsHash: hash,
		PaymentAmount:      payment,
		DeadlineDays:       in.DeadlineDays,
		PaymentToken:       token,
	})
}

func (m *Marketplace) applyForJob(ctx context.Context, sess *session.Session, in ApplyInput) (string, error) {
	id, err := jobID(OpApplyForJob, in.JobID)
	if err != nil {
		return "", err
	}
	pseudonym, err := requireText(OpApplyForJob, "pseudonym", in.Pseudonym)
	if err != nil {
		return "", err
	}

	g := m.deps.market(sess)
	job, err := m.guard(ctx, g, OpApplyForJob, id, marketplace.ActionApply)
	if err != nil {
		return "", err
	}

	proof := in.Proof
	if proof == nil {
		skill := in.SkillTypeHash
		if skill == "" {
			skill = job.RequiredSkillsHash
		}
		p, err := m.deps.Prover.Prove(ctx, marketplace.ProofStatement{
			Pseudonym:     pseudonym,
			SkillTypeHash: skill,
		})
		if err != nil {
			return "", errors.Wrap(errors.KindInternal, OpApplyForJob, err)
		}
		proof = &p
	}
	if err := proof.Validate(); err != nil {
		return "", errors.Classify(OpApplyForJob, err)
	}

	proposal := codec.HashContent("proposal", id, pseudonym, in.Proposal)
	return g.ApplyForJob(ctx, id, pseudonym, proof.SkillProofHash(), proposal)
}

func (m *Marketplace) assignJob(ctx context.Context, sess *session.Session, in AssignInput) (AssignOutcome, error) {
	id, err := jobID(OpAssignJob, in.JobID)
	if err != nil {
		return AssignOutcome{}, err
	}
	worker, err := requireText(OpAssignJob, "worker", in.Worker)
	if err != nil {
		return AssignOutcome{}, err
	}
	payout := in.PayoutAddress
	if payout == "" {
		payout = sess.Address()
	}
	if payout, err = requireFelt(OpAssignJob, "payout address", payout); err != nil {
		return AssignOutcome{}, err
	}

	g := m.deps.market(sess)
	job, err := m.guard(ctx, g, OpAssignJob, id, marketplace.ActionAssign)
	if err != nil {
		return AssignOutcome{}, err
	}
	tx, err := g.AssignJob(ctx, id, worker, payout)
	if err != nil {
		return AssignOutcome{}, err
	}

	out := AssignOutcome{TxHash: tx, Escrow: Step{Name: stepEscrow}}
	out.Escrow.TxHash, out.Escrow.Err = g.CreateJobEscrow(ctx, id, worker,
		job.PaymentAmount.String(), job.PaymentToken, payout)
	if out.Partial() {
		m.partial(ctx, id, out.Escrow)
	}
	return out, nil
}

func (m *Marketplace) submitWork(ctx context.Context, sess *session.Session, in SubmitInput) (string, error) {
	id, err := jobID(OpSubmitWork, in.JobID)
	if err != nil {
		return "", err
	}
	uri, err := requireText(OpSubmitWork, "submission URI", in.SubmissionURI)
	if err != nil {
		return "", err
	}
	proofHash := codec.HashContent("work", id, uri)
	if in.WorkProofHash != "" {
		if proofHash, err = requireFelt(OpSubmitWork, "work proof hash", in.WorkProofHash); err != nil {
			return "", err
		}
	}

	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpSubmitWork, id, marketplace.ActionSubmit); err != nil {
		return "", err
	}
	return g.SubmitWork(ctx, id, proofHash, uri)
}

func (m *Marketplace) approveWork(ctx context.Context, sess *session.Session, rawID string) (ApproveOutcome, error) {
	id, err := jobID(OpApproveWork, rawID)
	if err != nil {
		return ApproveOutcome{}, err
	}

	g := m.deps.market(sess)
	job, err := m.guard(ctx, g, OpApproveWork, id, marketplace.ActionApprove)
	if err != nil {
		return ApproveOutcome{}, err
	}
	tx, err := g.ApproveWork(ctx, id)
	if err != nil {
		return ApproveOutcome{}, err
	}

	out := ApproveOutcome{TxHash: tx, Reputation: Step{Name: stepReputation}}
	out.Reputation.TxHash, out.Reputation.Err = g.UpdateWorkerReputation(ctx,
		job.AssignedWorker, marketplace.ReputationAward, id)
	if out.Partial() {
		m.partial(ctx, id, out.Reputation)
	}
	return out, nil
}

func (m *Marketplace) partial(ctx context.Context, id string, s Step) {
	m.deps.Metrics.RecordPartial(s.Name)
	m.deps.Logger.WithContext(ctx).WithError(s.Err).WithFields(map[string]interface{}{
		"job_id": id,
		"step":   s.Name,
	}).Warn("primary action succeeded but follow-up step failed")
}

func (m *Marketplace) disputeWork(ctx context.Context, sess *session.Session, in DisputeInput) (string, error) {
	id, err := jobID(OpDisputeWork, in.JobID)
	if err != nil {
		return "", err
	}
	reason, err := requireText(OpDisputeWork, "reason", in.Reason)
	if err != nil {
		return "", err
	}
	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpDisputeWork, id, marketplace.ActionDispute); err != nil {
		return "", err
	}
	return g.DisputeWork(ctx, id, reason)
}

func (m *Marketplace) cancelJob(ctx context.Context, sess *session.Session, rawID string) (string, error) {
	id, err := jobID(OpCancelJob, rawID)
	if err != nil {
		return "", err
	}
	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpCancelJob, id, marketplace.ActionCancel); err != nil {
		return "", err
	}
	return g.CancelJob(ctx, id)
}

func (m *Marketplace) extendDeadline(ctx context.Context, sess *session.Session, in ExtendInput) (string, error) {
	id, err := jobID(OpExtendDeadline, in.JobID)
	if err != nil {
		return "", err
	}
	if err := positiveDays(OpExtendDeadline, in.Days); err != nil {
		return "", err
	}
	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpExtendDeadline, id, marketplace.ActionExtendDeadline); err != nil {
		return "", err
	}
	return g.ExtendDeadline(ctx, id, in.Days)
}

func (m *Marketplace) requestExtension(ctx context.Context, sess *session.Session, in ExtensionRequestInput) (string, error) {
	id, err := jobID(OpRequestExtension, in.JobID)
	if err != nil {
		return "", err
	}
	if err := positiveDays(OpRequestExtension, in.Days); err != nil {
		return "", err
	}
	reason, err := requireText(OpRequestExtension, "reason", in.Reason)
	if err != nil {
		return "", err
	}
	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpRequestExtension, id, marketplace.ActionRequestExtension); err != nil {
		return "", err
	}
	return g.RequestDeadlineExtension(ctx, id, in.Days, reason)
}

func (m *Marketplace) respondToExtension(ctx context.Context, sess *session.Session, in ExtensionResponseInput) (string, error) {
	id, err := jobID(OpRespondToExtension, in.JobID)
	if err != nil {
		return "", err
	}
	g := m.deps.market(sess)
	if _, err := m.guard(ctx, g, OpRespondToExtension, id, marketplace.ActionRespondExtension); err != nil {
		return "", err
	}

	reqs, err := g.GetExtensionRequests(ctx, id)
	if err != nil {
		return "", err
	}
	if len(reqs) == 0 {
		return "", errors.Newf(errors.KindNotFound, OpRespondToExtension, "job %s has no extension requests", id)
	}
	status := reqs[len(reqs)-1].Status
	if pending, ok := marketplace.PendingExtension(reqs); ok {
		status = pending.Status
	}
	if _, err := marketplace.RespondToExtension(status, in.Approve); err != nil {
		return "", errors.Classify(OpRespondToExtension, err)
	}
	return g.RespondToExtensionRequest(ctx, id, in.Approve, in.Response)
}

// retryEscrow funds the escrow for an assigned job that has none.
func (m *Marketplace) retryEscrow(ctx context.Context, sess *session.Session, in RetryEscrowInput) (Step, error) {
	id, err := jobID(OpRetryEscrow, in.JobID)
	if err != nil {
		return Step{}, err
	}
	payout := in.PayoutAddress
	if payout == "" {
		payout = sess.Address()
	}
	if payout, err = requireFelt(OpRetryEscrow, "payout address", payout); err != nil {
		return Step{}, err
	}

	g := m.deps.market(sess)
	job, err := g.GetJobDetails(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if !job.Status.HasWorker() || job.Status.IsTerminal() {
		return Step{}, errors.Newf(errors.KindIllegalTransition, OpRetryEscrow, "job %s is %s", id, job.Status)
	}
	if job.HasEscrow() {
		return Step{}, errors.Newf(errors.KindValidation, OpRetryEscrow, "job %s already has escrow %s", id, job.EscrowID)
	}
	tx, err := g.CreateJobEscrow(ctx, id, job.AssignedWorker, job.PaymentAmount.String(), job.PaymentToken, payout)
	if err != nil {
		return Step{}, err
	}
	return Step{Name: stepEscrow, TxHash: tx}, nil
}

// retryReputation awards the completion reputation for a completed job.
func (m *Marketplace) retryReputation(ctx context.Context, sess *session.Session, rawID string) (Step, error) {
	id, err := jobID(OpRetryReputation, rawID)
	if err != nil {
		return Step{}, err
	}
	g := m.deps.market(sess)
	job, err := g.GetJobDetails(ctx, id)
	if err != nil {
		return Step{}, err
	}
	if job.Status != marketplace.JobStatusCompleted {
		return Step{}, errors.Newf(errors.KindIllegalTransition, OpRetryReputation, "job %s is %s, not completed", id, job.Status)
	}
	tx, err := g.UpdateWorkerReputation(ctx, job.AssignedWorker, marketplace.ReputationAward, id)
	if err != nil {
		return Step{}, err
	}
	return Step{Name: stepReputation, TxHash: tx}, nil
}

// =============================================================================
// Queries
// =============================================================================

func (m *Marketplace) jobDetails(ctx context.Context, sess *session.Session, rawID string) (marketplace.JobView, error) {
	id, err := jobID(OpJobDetails, rawID)
	if err != nil {
		return marketplace.JobView{}, err
	}
	job, err := m.deps.market(sess).GetJobDetails(ctx, id)
	if err != nil {
		return marketplace.JobView{}, err
	}
	return marketplace.JobView{Job: *job}, nil
}

func (m *Marketplace) jobCount(ctx context.Context, sess *session.Session, _ struct{}) (*big.Int, error) {
	return m.deps.market(sess).GetJobCount(ctx)
}

func (m *Marketplace) applications(ctx context.Context, sess *session.Session, rawID string) ([]marketplace.WorkerApplication, error) {
	id, err := jobID(OpApplications, rawID)
	if err != nil {
		return nil, err
	}
	return m.deps.market(sess).GetWorkerApplications(ctx, id)
}

func (m *Marketplace) extensionRequests(ctx context.Context, sess *session.Session, rawID string) ([]marketplace.ExtensionRequest, error) {
	id, err := jobID(OpExtensionRequests, rawID)
	if err != nil {
		return nil, err
	}
	return m.deps.market(sess).GetExtensionRequests(ctx, id)
}
