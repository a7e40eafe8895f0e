package simchain

import (
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
)

// Status ordinals as stored on chain.
const (
	jobOpen int64 = iota + 1
	jobAssigned
	jobSubmitted
	jobCompleted
	jobDisputed
	jobCancelled
)

const (
	appPending int64 = iota + 1
	appAccepted
	appRejected
)

const (
	extPending int64 = iota + 1
	extApproved
	extRejected
)

type job struct {
	id          *big.Int
	employer    string
	title       string
	description string
	skillsHash  string
	payment     *big.Int
	token       string
	days        uint64
	deadline    time.Time
	status      int64
	worker      string
	payout      string
	createdAt   time.Time
	assignedAt  time.Time
	escrowID    *big.Int
	submission  string
	rewarded    bool
}

type application struct {
	pseudonym      string
	skillProofHash string
	proposalHash   string
	appliedAt      time.Time
	status         int64
}

type extension struct {
	jobID       *big.Int
	pseudonym   string
	days        uint64
	reason      string
	requestedAt time.Time
	status      int64
	response    string
	respondedAt time.Time
}

type marketState struct {
	count      *big.Int
	jobs       map[string]*job
	apps       map[string][]*application
	extensions map[string][]*extension
}

func newMarketState() *marketState {
	return &marketState{
		count:      new(big.Int),
		jobs:       make(map[string]*job),
		apps:       make(map[string][]*application),
		extensions: make(map[string][]*extension),
	}
}

var marketEntryPoints = map[string]entryPoint{
	"post_job":                     {6, true, postJob},
	"apply_for_job":                {4, true, applyForJob},
	"assign_job":                   {3, true, assignJob},
	"submit_work":                  {3, true, submitWork},
	"approve_work":                 {1, true, approveWork},
	"dispute_work":                 {2, true, disputeWork},
	"cancel_job":                   {1, true, cancelJob},
	"extend_deadline":              {2, true, extendDeadline},
	"request_deadline_extension":   {3, true, requestExtension},
	"respond_to_extension_request": {3, true, respondExtension},
	"update_worker_reputation":     {3, true, updateWorkerReputation},
	"create_job_escrow":            {5, true, createJobEscrow},
	"get_job_details":              {1, false, getJobDetails},
	"get_job_count":                {0, false, getJobCount},
	"get_worker_applications":      {1, false, getWorkerApplications},
	"get_extension_requests":       {1, false, getExtensionRequests},
}

func (m *marketState) job(id *big.Int) (*job, error) {
	j, ok := m.jobs[idKey(id)]
	if !ok {
		return nil, fault("job %s not found", id)
	}
	return j, nil
}

// employerJob loads a job the caller must own.
func (c *Chain) employerJob(in *call, id *big.Int) (*job, error) {
	j, err := c.market.job(id)
	if err != nil {
		return nil, err
	}
	if j.employer != in.caller {
		return nil, fault("only the employer can do this")
	}
	return j, nil
}

// workerJob loads a job whose assigned worker the caller must control.
func (c *Chain) workerJob(in *call, id *big.Int) (*job, error) {
	j, err := c.market.job(id)
	if err != nil {
		return nil, err
	}
	if j.worker == "" || !c.registry.controls(in.caller, j.worker) {
		return nil, fault("only the assigned worker can do this")
	}
	return j, nil
}

func requireStatus(j *job, allowed ...int64) error {
	for _, s := range allowed {
		if j.status == s {
			return nil
		}
	}
	return fault("job %s: invalid status %d", j.id, j.status)
}

func postJob(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	title, desc, skills := a.text(0), a.text(1), a.felt(2)
	payment, days, token := a.u256(3), a.days(4), a.felt(5)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	if title == "" {
		return chain.StackItem{}, fault("title required")
	}
	if payment.Sign() == 0 {
		return chain.StackItem{}, fault("payment must be positive")
	}

	m := c.market
	m.count = new(big.Int).Add(m.count, big.NewInt(1))
	now := c.now().UTC()
	j := &job{
		id:          new(big.Int).Set(m.count),
		employer:    in.caller,
		title:       title,
		description: desc,
		skillsHash:  skills,
		payment:     payment,
		token:       token,
		days:        days,
		deadline:    now.Add(time.Duration(days) * 24 * time.Hour),
		status:      jobOpen,
		createdAt:   now,
		escrowID:    new(big.Int),
	}
	m.jobs[idKey(j.id)] = j
	return u256Item(j.id), nil
}

func applyForJob(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, pseudonym, proofHash, proposal := a.u256(0), a.str(1), a.felt(2), a.felt(3)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.market.job(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobOpen); err != nil {
		return chain.StackItem{}, err
	}
	if !c.registry.controls(in.caller, pseudonym) {
		return chain.StackItem{}, fault("pseudonym %s not registered to caller", pseudonym)
	}
	for _, app := range c.market.apps[idKey(id)] {
		if app.pseudonym == pseudonym {
			return chain.StackItem{}, fault("%s already applied", pseudonym)
		}
	}
	c.market.apps[idKey(id)] = append(c.market.apps[idKey(id)], &application{
		pseudonym:      pseudonym,
		skillProofHash: proofHash,
		proposalHash:   proposal,
		appliedAt:      c.now().UTC(),
		status:         appPending,
	})
	return okItem(), nil
}

func assignJob(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, worker, payout := a.u256(0), a.str(1), a.felt(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobOpen); err != nil {
		return chain.StackItem{}, err
	}
	apps := c.market.apps[idKey(id)]
	found := false
	for _, app := range apps {
		found = found || app.pseudonym == worker
	}
	if !found {
		return chain.StackItem{}, fault("%s has not applied", worker)
	}

	for _, app := range apps {
		if app.pseudonym == worker {
			app.status = appAccepted
		} else {
			app.status = appRejected
		}
	}
	j.status = jobAssigned
	j.worker = worker
	j.payout = payout
	j.assignedAt = c.now().UTC()
	return okItem(), nil
}

func submitWork(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, proofHash, uri := a.u256(0), a.felt(1), a.text(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.workerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobAssigned); err != nil {
		return chain.StackItem{}, err
	}
	j.status = jobSubmitted
	j.submission = proofHash + " " + uri
	return okItem(), nil
}

func approveWork(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobSubmitted); err != nil {
		return chain.StackItem{}, err
	}
	j.status = jobCompleted
	return okItem(), nil
}

func disputeWork(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, reason := a.u256(0), a.text(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.market.job(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if j.employer != in.caller && !c.registry.controls(in.caller, j.worker) {
		return chain.StackItem{}, fault("only the employer or the assigned worker can dispute")
	}
	if reason == "" {
		return chain.StackItem{}, fault("reason required")
	}
	if err := requireStatus(j, jobSubmitted); err != nil {
		return chain.StackItem{}, err
	}
	j.status = jobDisputed
	return okItem(), nil
}

func cancelJob(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobOpen); err != nil {
		return chain.StackItem{}, err
	}
	j.status = jobCancelled
	return okItem(), nil
}

func extendDeadline(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, days := a.u256(0), a.days(1)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobAssigned, jobSubmitted); err != nil {
		return chain.StackItem{}, err
	}
	j.extend(days)
	return okItem(), nil
}

func (j *job) extend(days uint64) {
	j.days += days
	j.deadline = j.deadline.Add(time.Duration(days) * 24 * time.Hour)
}

func requestExtension(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, days, reason := a.u256(0), a.days(1), a.text(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.workerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobAssigned, jobSubmitted); err != nil {
		return chain.StackItem{}, err
	}
	if reason == "" {
		return chain.StackItem{}, fault("reason required")
	}
	for _, e := range c.market.extensions[idKey(id)] {
		if e.status == extPending {
			return chain.StackItem{}, fault("an extension request is already pending")
		}
	}
	c.market.extensions[idKey(id)] = append(c.market.extensions[idKey(id)], &extension{
		jobID:       new(big.Int).Set(id),
		pseudonym:   j.worker,
		days:        days,
		reason:      reason,
		requestedAt: c.now().UTC(),
		status:      extPending,
	})
	return okItem(), nil
}

func respondExtension(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, approve, response := a.u256(0), a.boolean(1), a.text(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	var pending *extension
	for _, e := range c.market.extensions[idKey(id)] {
		if e.status == extPending {
			pending = e
		}
	}
	if pending == nil {
		return chain.StackItem{}, fault("no pending extension request")
	}
	if approve {
		if err := requireStatus(j, jobAssigned, jobSubmitted); err != nil {
			return chain.StackItem{}, err
		}
		pending.status = extApproved
		j.extend(pending.days)
	} else {
		pending.status = extRejected
	}
	pending.response = response
	pending.respondedAt = c.now().UTC()
	return okItem(), nil
}

// updateWorkerReputation forwards the award for a completed job to the
// registry. Each job is rewarded once.
func updateWorkerReputation(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	pseudonym, delta, id := a.str(0), a.signed(1), a.u256(2)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobCompleted); err != nil {
		return chain.StackItem{}, err
	}
	if j.worker != pseudonym {
		return chain.StackItem{}, fault("%s is not the worker of job %s", pseudonym, id)
	}
	if j.rewarded {
		return chain.StackItem{}, fault("job %s already rewarded", id)
	}
	p, err := c.registry.profile(pseudonym)
	if err != nil {
		return chain.StackItem{}, err
	}
	p.reputation += delta
	p.completed++
	p.earnings = new(big.Int).Add(p.earnings, j.payment)
	j.rewarded = true
	return okItem(), nil
}

func createJobEscrow(c *Chain, in *call) (chain.StackItem, error) {
	a := in.args
	id, worker, amount, token, payout := a.u256(0), a.str(1), a.u256(2), a.felt(3), a.felt(4)
	if a.err != nil {
		return chain.StackItem{}, a.err
	}
	j, err := c.employerJob(in, id)
	if err != nil {
		return chain.StackItem{}, err
	}
	if err := requireStatus(j, jobAssigned, jobSubmitted); err != nil {
		return chain.StackItem{}, err
	}
	if j.worker != worker {
		return chain.StackItem{}, fault("%s is not the worker of job %s", worker, id)
	}
	if j.escrowID.Sign() != 0 {
		return chain.StackItem{}, fault("job %s already has escrow %s", id, j.escrowID)
	}
	if amount.Sign() == 0 {
		return chain.StackItem{}, fault("escrow amount must be positive")
	}
	e := c.escrow.create(id, in.caller, worker, amount, token, c.now().UTC())
	e.payout = payout
	j.escrowID = new(big.Int).Set(e.id)
	return u256Item(e.id), nil
}

func getJobDetails(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	j, err := c.market.job(id)
	if err != nil {
		return chain.StackItem{}, err
	}
	return chain.NewStructItem(
		u256Item(j.id),
		feltItem(j.employer),
		textItem(j.title),
		textItem(j.description),
		feltItem(j.skillsHash),
		u256Item(j.payment),
		feltItem(j.token),
		chain.NewIntegerItem(new(big.Int).SetUint64(j.days)),
		timeItem(j.deadline),
		intItem(j.status),
		stringItem(j.worker),
		timeItem(j.createdAt),
		timeItem(j.assignedAt),
		u256Item(j.escrowID),
	), nil
}

func getJobCount(c *Chain, in *call) (chain.StackItem, error) {
	return u256Item(c.market.count), nil
}

func getWorkerApplications(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	if _, err := c.market.job(id); err != nil {
		return chain.StackItem{}, err
	}
	var items []chain.StackItem
	for _, app := range c.market.apps[idKey(id)] {
		items = append(items, chain.NewStructItem(
			stringItem(app.pseudonym),
			feltItem(app.skillProofHash),
			feltItem(app.proposalHash),
			timeItem(app.appliedAt),
			intItem(app.status),
		))
	}
	return chain.NewArrayItem(items...), nil
}

func getExtensionRequests(c *Chain, in *call) (chain.StackItem, error) {
	id := in.args.u256(0)
	if in.args.err != nil {
		return chain.StackItem{}, in.args.err
	}
	if _, err := c.market.job(id); err != nil {
		return chain.StackItem{}, err
	}
	var items []chain.StackItem
	for _, e := range c.market.extensions[idKey(id)] {
		items = append(items, chain.NewStructItem(
			u256Item(e.jobID),
			stringItem(e.pseudonym),
			chain.NewIntegerItem(new(big.Int).SetUint64(e.days)),
			textItem(e.reason),
			timeItem(e.requestedAt),
			intItem(e.status),
			textItem(e.response),
			timeItem(e.respondedAt),
		))
	}
	return chain.NewArrayItem(items...), nil
}
