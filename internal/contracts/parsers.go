package contracts

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
)

// =============================================================================
// Field Decoders
// =============================================================================

// ParseUint256 decodes a [low, high] pair.
func ParseUint256(item chain.StackItem) (*big.Int, error) {
	items, err := chain.ParseArray(item)
	if err != nil {
		return nil, err
	}
	if len(items) != 2 {
		return nil, fmt.Errorf("expected 2 limbs, got %d", len(items))
	}
	low, err := chain.ParseInteger(items[0])
	if err != nil {
		return nil, fmt.Errorf("parse low: %w", err)
	}
	high, err := chain.ParseInteger(items[1])
	if err != nil {
		return nil, fmt.Errorf("parse high: %w", err)
	}
	return codec.FromUint256(codec.Uint256{Low: low, High: high})
}

// ParseFelt decodes an Integer field element to hex.
func ParseFelt(item chain.StackItem) (string, error) {
	n, err := chain.ParseInteger(item)
	if err != nil {
		return "", err
	}
	if n.Sign() < 0 || n.Cmp(codec.FeltPrime) >= 0 {
		return "", fmt.Errorf("field element out of range")
	}
	return codec.FormatFelt(n), nil
}

// ParseText decodes a string given either as a ByteString or in the chunked
// byte array layout.
func ParseText(item chain.StackItem) (string, error) {
	switch item.Type {
	case "ByteString", "Buffer", "Null", "Any":
		return chain.ParseString(item)
	}
	items, err := chain.ParseArray(item)
	if err != nil {
		return "", err
	}
	if len(items) != 3 {
		return "", fmt.Errorf("expected byte array triple, got %d items", len(items))
	}
	wordItems, err := chain.ParseArray(items[0])
	if err != nil {
		return "", fmt.Errorf("parse words: %w", err)
	}
	ba := codec.ByteArray{Data: make([]*big.Int, len(wordItems))}
	for i, w := range wordItems {
		if ba.Data[i], err = chain.ParseInteger(w); err != nil {
			return "", fmt.Errorf("parse word %d: %w", i, err)
		}
	}
	if ba.PendingWord, err = chain.ParseInteger(items[1]); err != nil {
		return "", fmt.Errorf("parse pending word: %w", err)
	}
	n, err := chain.ParseInt64(items[2])
	if err != nil {
		return "", fmt.Errorf("parse pending length: %w", err)
	}
	ba.PendingWordLen = int(n)
	return codec.FromByteArray(ba)
}

func parseTime(item chain.StackItem) (time.Time, error) {
	n, err := chain.ParseInt64(item)
	if err != nil {
		return time.Time{}, err
	}
	return marketplace.TimeFromUnix(n), nil
}

func parseUint64(item chain.StackItem) (uint64, error) {
	n, err := chain.ParseInteger(item)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, fmt.Errorf("integer %s out of range", n)
	}
	return n.Uint64(), nil
}

// fields decodes positional struct fields, keeping the first error.
type fields struct {
	items []chain.StackItem
	err   error
}

func newFields(item chain.StackItem, want int) (*fields, error) {
	items, err := chain.ParseArray(item)
	if err != nil {
		return nil, err
	}
	if len(items) < want {
		return nil, fmt.Errorf("expected at least %d items, got %d", want, len(items))
	}
	return &fields{items: items}, nil
}

func (f *fields) wrap(name string, err error) {
	if f.err == nil && err != nil {
		f.err = fmt.Errorf("parse %s: %w", name, err)
	}
}

func (f *fields) u256(i int, name string) *big.Int {
	v, err := ParseUint256(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) felt(i int, name string) string {
	v, err := ParseFelt(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) text(i int, name string) string {
	v, err := ParseText(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) unix(i int, name string) time.Time {
	v, err := parseTime(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) count(i int, name string) uint64 {
	v, err := parseUint64(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) integer(i int, name string) int64 {
	v, err := chain.ParseInt64(f.items[i])
	f.wrap(name, err)
	return v
}

func (f *fields) flag(i int, name string) bool {
	v, err := chain.ParseBoolean(f.items[i])
	f.wrap(name, err)
	return v
}

// =============================================================================
// Struct Parsers
// =============================================================================

// ParseJob decodes a job struct.
func ParseJob(item chain.StackItem) (*marketplace.Job, error) {
	f, err := newFields(item, 14)
	if err != nil {
		return nil, err
	}
	job := &marketplace.Job{
		ID:                 f.u256(0, "id"),
		Employer:           f.felt(1, "employer"),
		Title:              f.text(2, "title"),
		Description:        f.text(3, "description"),
		RequiredSkillsHash: f.felt(4, "required_skills_hash"),
		PaymentAmount:      f.u256(5, "payment_amount"),
		PaymentToken:       f.felt(6, "payment_token"),
		WorkDeadlineDays:   f.count(7, "work_deadline_days"),
		WorkDeadline:       f.unix(8, "work_deadline"),
		AssignedWorker:     f.text(10, "assigned_worker"),
		CreatedAt:          f.unix(11, "created_at"),
		AssignedAt:         f.unix(12, "assigned_at"),
	}
	status := f.integer(9, "status")
	escrow := f.u256(13, "escrow_id")
	if f.err != nil {
		return nil, f.err
	}
	if job.Status, err = marketplace.ParseJobStatus(status); err != nil {
		return nil, err
	}
	if escrow.Sign() != 0 {
		job.EscrowID = escrow
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// ParseApplication decodes a worker application struct.
func ParseApplication(item chain.StackItem) (*marketplace.WorkerApplication, error) {
	f, err := newFields(item, 5)
	if err != nil {
		return nil, err
	}
	app := &marketplace.WorkerApplication{
		WorkerPseudonym: f.text(0, "worker_pseudonym"),
		SkillProofHash:  f.felt(1, "skill_proof_hash"),
		ProposalHash:    f.felt(2, "proposal_hash"),
		AppliedAt:       f.unix(3, "applied_at"),
	}
	status := f.integer(4, "status")
	if f.err != nil {
		return nil, f.err
	}
	if app.Status, err = marketplace.ParseApplicationStatus(status); err != nil {
		return nil, err
	}
	return app, nil
}

// ParseExtensionRequest decodes an extension request struct.
func ParseExtensionRequest(item chain.StackItem) (*marketplace.ExtensionRequest, error) {
	f, err := newFields(item, 8)
	if err != nil {
		return nil, err
	}
	req := &marketplace.ExtensionRequest{
		JobID:            f.u256(0, "job_id"),
		WorkerPseudonym:  f.text(1, "worker_pseudonym"),
		AdditionalDays:   f.count(2, "additional_days"),
		Reason:           f.text(3, "reason"),
		RequestedAt:      f.unix(4, "requested_at"),
		EmployerResponse: f.text(6, "employer_response"),
		RespondedAt:      f.unix(7, "responded_at"),
	}
	status := f.integer(5, "status")
	if f.err != nil {
		return nil, f.err
	}
	if req.Status, err = marketplace.ParseExtensionRequestStatus(status); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseWorkerProfile decodes a worker profile struct.
func ParseWorkerProfile(item chain.StackItem) (*marketplace.WorkerProfile, error) {
	f, err := newFields(item, 9)
	if err != nil {
		return nil, err
	}
	p := &marketplace.WorkerProfile{
		Pseudonym:        f.text(0, "pseudonym"),
		OwnerCommitment:  f.felt(1, "owner_commitment"),
		SkillsCommitment: f.felt(2, "skills_commitment"),
		ReputationScore:  f.integer(3, "reputation_score"),
		CompletedJobs:    f.count(4, "completed_jobs"),
		TotalEarnings:    f.u256(5, "total_earnings"),
		RegistrationTime: f.unix(6, "registration_time"),
		ReputationBond:   f.u256(7, "reputation_bond"),
		Active:           f.flag(8, "active"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return p, nil
}

// ParseSkillProof decodes a skill proof struct.
func ParseSkillProof(item chain.StackItem) (*marketplace.SkillProof, error) {
	f, err := newFields(item, 6)
	if err != nil {
		return nil, err
	}
	sp := &marketplace.SkillProof{
		SkillTypeHash:   f.felt(0, "skill_type_hash"),
		VerificationKey: f.felt(3, "verification_key"),
		Timestamp:       f.unix(4, "timestamp"),
		Verified:        f.flag(5, "verified"),
	}
	level := f.integer(1, "level")
	if f.err != nil {
		return nil, f.err
	}
	if sp.Level, err = marketplace.ParseSkillLevel(level); err != nil {
		return nil, err
	}
	data, err := chain.ParseArray(f.items[2])
	if err != nil {
		return nil, fmt.Errorf("parse proof_data: %w", err)
	}
	sp.ProofData = make([]string, len(data))
	for i, d := range data {
		if sp.ProofData[i], err = ParseFelt(d); err != nil {
			return nil, fmt.Errorf("parse proof_data[%d]: %w", i, err)
		}
	}
	return sp, nil
}

// ParseEscrow decodes an escrow struct.
func ParseEscrow(item chain.StackItem) (*marketplace.EscrowDetails, error) {
	f, err := newFields(item, 8)
	if err != nil {
		return nil, err
	}
	e := &marketplace.EscrowDetails{
		ID:              f.u256(0, "id"),
		JobID:           f.u256(1, "job_id"),
		Employer:        f.felt(2, "employer"),
		WorkerPseudonym: f.text(3, "worker_pseudonym"),
		Amount:          f.u256(4, "amount"),
		Token:           f.felt(5, "token"),
		CreatedAt:       f.unix(7, "created_at"),
	}
	status := f.integer(6, "status")
	if f.err != nil {
		return nil, f.err
	}
	if e.Status, err = marketplace.ParseEscrowStatus(status); err != nil {
		return nil, err
	}
	return e, nil
}

func parseList[T any](item chain.StackItem, parse func(chain.StackItem) (*T, error)) ([]T, error) {
	items, err := chain.ParseArray(item)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i, it := range items {
		v, err := parse(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, *v)
	}
	return out, nil
}
