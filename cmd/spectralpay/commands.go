package main

import (
	"context"
	"flag"
	"strings"

	"github.com/Rampop01/spectralpay/internal/binding"
	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/cli"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
)

type runner func(ctx context.Context) (interface{}, error)

// command is one subcommand. setup only declares flags; the returned runner
// reads them after parsing.
type command struct {
	name  string
	usage string
	setup func(a *app, fs *flag.FlagSet) runner
}

var commandTable []command

func init() {
	commandTable = append(append(append(jobCommands(), identityCommands()...), escrowCommands()...), toolCommands()...)
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commandTable {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// skillRef accepts either a skill name or its 0x hash.
func skillRef(s string) string {
	if s == "" || strings.HasPrefix(s, "0x") {
		return s
	}
	return binding.SkillTypeHash(s)
}

// =============================================================================
// Job Marketplace
// =============================================================================

func jobCommands() []command {
	return []command{
		{"post-job", "Post a job", func(a *app, fs *flag.FlagSet) runner {
			title := fs.String("title", "", "Job title")
			desc := fs.String("description", "", "Job description")
			skills := fs.String("skills", "", "Comma separated required skills")
			skillsHash := fs.String("skills-hash", "", "Required skills hash, instead of -skills")
			payment := fs.String("payment", "", "Payment in tokens, e.g. 2.5")
			paymentWei := fs.String("payment-wei", "", "Payment in the smallest token unit")
			days := fs.Uint64("days", 7, "Work deadline in days (1-365)")
			token := fs.String("token", "", "Payment token address")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.PostJob.Do(ctx, binding.PostJobInput{
					Title:          *title,
					Description:    *desc,
					RequiredSkills: splitList(*skills),
					SkillsHash:     *skillsHash,
					PaymentTokens:  *payment,
					PaymentWei:     *paymentWei,
					DeadlineDays:   *days,
					PaymentToken:   *token,
				})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"apply", "Apply for a job with a registered pseudonym", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			pseudonym := fs.String("pseudonym", "", "Worker pseudonym")
			proposal := fs.String("proposal", "", "Proposal text; only its hash goes on chain")
			skill := fs.String("skill", "", "Skill the proof is for, name or hash; defaults to the job's")
			return func(ctx context.Context) (interface{}, error) {
				in := binding.ApplyInput{JobID: *job, Pseudonym: *pseudonym, Proposal: *proposal}
				if *skill != "" {
					in.SkillTypeHash = skillRef(*skill)
				}
				tx, err := a.market.ApplyForJob.Do(ctx, in)
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"assign", "Assign a job to an applicant and fund its escrow", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			worker := fs.String("worker", "", "Worker pseudonym")
			payout := fs.String("payout", "", "Worker payout address; defaults to the signer")
			return func(ctx context.Context) (interface{}, error) {
				out, err := a.market.AssignJob.Do(ctx, binding.AssignInput{JobID: *job, Worker: *worker, PayoutAddress: *payout})
				if err != nil {
					return nil, err
				}
				return a.twoStep(out.TxHash, out.Escrow, "spectralpay retry-escrow -job "+*job), nil
			}
		}},
		{"submit", "Submit work for an assigned job", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			uri := fs.String("uri", "", "Submission URI")
			proofHash := fs.String("proof-hash", "", "Work proof hash; defaults to a hash of the URI")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.SubmitWork.Do(ctx, binding.SubmitInput{JobID: *job, SubmissionURI: *uri, WorkProofHash: *proofHash})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"approve", "Approve submitted work and award reputation", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				out, err := a.market.ApproveWork.Do(ctx, *job)
				if err != nil {
					return nil, err
				}
				return a.twoStep(out.TxHash, out.Reputation, "spectralpay retry-reputation -job "+*job), nil
			}
		}},
		{"dispute", "Dispute submitted work", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			reason := fs.String("reason", "", "Dispute reason")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.DisputeWork.Do(ctx, binding.DisputeInput{JobID: *job, Reason: *reason})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"cancel", "Cancel an open job", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.CancelJob.Do(ctx, *job)
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"extend", "Extend a job's deadline", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			days := fs.Uint64("days", 0, "Additional days")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.ExtendDeadline.Do(ctx, binding.ExtendInput{JobID: *job, Days: *days})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"request-extension", "Ask the employer for more time", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			days := fs.Uint64("days", 0, "Additional days")
			reason := fs.String("reason", "", "Why more time is needed")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.RequestExtension.Do(ctx, binding.ExtensionRequestInput{JobID: *job, Days: *days, Reason: *reason})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"respond-extension", "Approve or reject the pending extension request", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			approve := fs.Bool("approve", false, "Approve the request; without it the request is rejected")
			response := fs.String("response", "", "Message to the worker")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.market.RespondToExtension.Do(ctx, binding.ExtensionResponseInput{JobID: *job, Approve: *approve, Response: *response})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"retry-escrow", "Fund the escrow of an assigned job that has none", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			payout := fs.String("payout", "", "Worker payout address; defaults to the signer")
			return func(ctx context.Context) (interface{}, error) {
				s, err := a.market.RetryEscrow.Do(ctx, binding.RetryEscrowInput{JobID: *job, PayoutAddress: *payout})
				if err != nil {
					return nil, err
				}
				return a.step(s), nil
			}
		}},
		{"retry-reputation", "Award the reputation of a completed job", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				s, err := a.market.RetryReputation.Do(ctx, *job)
				if err != nil {
					return nil, err
				}
				return a.step(s), nil
			}
		}},
		{"job", "Show a job", func(a *app, fs *flag.FlagSet) runner {
			id := fs.String("id", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				v, err := a.market.JobDetails.Do(ctx, *id)
				if err != nil {
					return nil, err
				}
				return struct {
					marketplace.Job
					Allowed []marketplace.Action `json:"allowed_actions"`
				}{v.Job, marketplace.AllowedActions(v.Job.Status).List()}, nil
			}
		}},
		{"job-count", "Show the number of jobs posted", func(a *app, fs *flag.FlagSet) runner {
			return func(ctx context.Context) (interface{}, error) {
				n, err := a.market.JobCount.Do(ctx, struct{}{})
				if err != nil {
					return nil, err
				}
				return map[string]string{"count": n.String()}, nil
			}
		}},
		{"applications", "List a job's applications", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				return a.market.Applications.Do(ctx, *job)
			}
		}},
		{"extensions", "List a job's extension requests", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			return func(ctx context.Context) (interface{}, error) {
				return a.market.ExtensionRequests.Do(ctx, *job)
			}
		}},
	}
}

// =============================================================================
// Pseudonym Registry and ZK Verifier
// =============================================================================

func identityCommands() []command {
	return []command{
		{"register", "Register a pseudonym", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym to register")
			secret := fs.String("secret", "", "Secret the identity commitment is derived from")
			skills := fs.String("skills", "", "Comma separated skills to commit to")
			bond := fs.String("bond", "", "Reputation bond in tokens; defaults to 0.1")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.pseudo.Register.Do(ctx, binding.RegisterInput{
					Pseudonym:  *pseudonym,
					Secret:     *secret,
					Skills:     splitList(*skills),
					BondTokens: *bond,
				})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"profile", "Show a worker profile", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			return func(ctx context.Context) (interface{}, error) {
				return a.pseudo.Profile.Do(ctx, *pseudonym)
			}
		}},
		{"registered", "Check whether a pseudonym is registered", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			return func(ctx context.Context) (interface{}, error) {
				ok, err := a.pseudo.IsRegistered.Do(ctx, *pseudonym)
				if err != nil {
					return nil, err
				}
				return map[string]bool{"registered": ok}, nil
			}
		}},
		{"add-skill", "Attach a skill proof to a pseudonym", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			skill := fs.String("skill", "", "Skill name or hash")
			level := fs.String("level", "intermediate", "beginner, intermediate, advanced or expert")
			vk := fs.String("vk", "", "Verification key")
			return func(ctx context.Context) (interface{}, error) {
				lvl, err := marketplace.SkillLevelFromName(strings.ToLower(*level))
				if err != nil {
					return nil, err
				}
				tx, err := a.pseudo.AddSkillProof.Do(ctx, binding.SkillProofInput{
					Pseudonym:       *pseudonym,
					SkillTypeHash:   skillRef(*skill),
					Level:           lvl,
					VerificationKey: *vk,
				})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"skills", "List a pseudonym's skill proofs", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			return func(ctx context.Context) (interface{}, error) {
				return a.pseudo.SkillProofs.Do(ctx, *pseudonym)
			}
		}},
		{"verify-skill", "Check a pseudonym against a skill requirement", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			skill := fs.String("skill", "", "Skill name or hash")
			return func(ctx context.Context) (interface{}, error) {
				ok, err := a.pseudo.VerifySkill.Do(ctx, binding.SkillRequirementInput{Pseudonym: *pseudonym, SkillTypeHash: skillRef(*skill)})
				if err != nil {
					return nil, err
				}
				return map[string]bool{"satisfied": ok}, nil
			}
		}},
		{"prove-ownership", "Prove control of a pseudonym", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			secret := fs.String("secret", "", "Registration secret")
			return func(ctx context.Context) (interface{}, error) {
				ok, err := a.pseudo.ProveOwnership.Do(ctx, binding.OwnershipInput{Pseudonym: *pseudonym, Secret: *secret})
				if err != nil {
					return nil, err
				}
				return map[string]bool{"owned": ok}, nil
			}
		}},
		{"verify-identity", "Check a pseudonym's identity commitment", func(a *app, fs *flag.FlagSet) runner {
			pseudonym := fs.String("pseudonym", "", "Pseudonym")
			secret := fs.String("secret", "", "Registration secret")
			commitment := fs.String("commitment", "", "Identity commitment, instead of -secret")
			return func(ctx context.Context) (interface{}, error) {
				ok, err := a.verifier.VerifyIdentityProof.Do(ctx, binding.IdentityProofInput{Pseudonym: *pseudonym, Secret: *secret, Commitment: *commitment})
				if err != nil {
					return nil, err
				}
				return map[string]bool{"valid": ok}, nil
			}
		}},
		{"add-vk", "Register a verification key for a skill", func(a *app, fs *flag.FlagSet) runner {
			skill := fs.String("skill", "", "Skill name or hash")
			vk := fs.String("vk", "", "Verification key")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.verifier.AddVerificationKey.Do(ctx, binding.VerificationKeyInput{SkillTypeHash: skillRef(*skill), VerificationKey: *vk})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"check-vk", "Check a verification key", func(a *app, fs *flag.FlagSet) runner {
			skill := fs.String("skill", "", "Skill name or hash")
			vk := fs.String("vk", "", "Verification key")
			return func(ctx context.Context) (interface{}, error) {
				ok, err := a.verifier.IsValidKey.Do(ctx, binding.VerificationKeyInput{SkillTypeHash: skillRef(*skill), VerificationKey: *vk})
				if err != nil {
					return nil, err
				}
				return map[string]bool{"valid": ok}, nil
			}
		}},
	}
}

// =============================================================================
// Escrow
// =============================================================================

func escrowCommands() []command {
	return []command{
		{"escrow-create", "Fund a standalone escrow", func(a *app, fs *flag.FlagSet) runner {
			job := fs.String("job", "", "Job ID")
			worker := fs.String("worker", "", "Worker pseudonym")
			amount := fs.String("amount", "", "Amount in tokens")
			amountWei := fs.String("amount-wei", "", "Amount in the smallest token unit")
			token := fs.String("token", "", "Token address")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.escrow.Create.Do(ctx, binding.CreateEscrowInput{
					JobID: *job, Worker: *worker, AmountTokens: *amount, AmountWei: *amountWei, Token: *token,
				})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"escrow-release", "Release an escrow to the worker", func(a *app, fs *flag.FlagSet) runner {
			id := fs.String("id", "", "Escrow ID")
			payout := fs.String("payout", "", "Payout address; defaults to the signer")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.escrow.Release.Do(ctx, binding.ReleaseInput{EscrowID: *id, PayoutAddress: *payout})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"escrow-dispute", "Dispute an escrow", func(a *app, fs *flag.FlagSet) runner {
			id := fs.String("id", "", "Escrow ID")
			reason := fs.String("reason", "", "Dispute reason")
			return func(ctx context.Context) (interface{}, error) {
				tx, err := a.escrow.Dispute.Do(ctx, binding.EscrowDisputeInput{EscrowID: *id, Reason: *reason})
				if err != nil {
					return nil, err
				}
				return a.tx(tx), nil
			}
		}},
		{"escrow", "Show an escrow", func(a *app, fs *flag.FlagSet) runner {
			id := fs.String("id", "", "Escrow ID")
			return func(ctx context.Context) (interface{}, error) {
				return a.escrow.Details.Do(ctx, *id)
			}
		}},
	}
}

// =============================================================================
// Tools
// =============================================================================

func toolCommands() []command {
	return []command{
		{"probe", "Check that each configured contract is deployed", func(a *app, fs *flag.FlagSet) runner {
			return func(ctx context.Context) (interface{}, error) {
				return a.probe(ctx)
			}
		}},
		{"receipt", "Wait for a transaction and show its execution", func(a *app, fs *flag.FlagSet) runner {
			hash := fs.String("tx", "", "Transaction hash")
			wait := fs.Duration("wait", chain.DefaultTxWaitTimeout, "How long to wait")
			return func(ctx context.Context) (interface{}, error) {
				if *hash == "" {
					return nil, errors.New(errors.KindValidation, "receipt", "-tx is required")
				}
				return a.receipt(ctx, *hash, *wait)
			}
		}},
		{"completion", "Print a shell completion script", func(a *app, fs *flag.FlagSet) runner {
			shell := fs.String("shell", "bash", "bash, zsh or fish")
			return func(ctx context.Context) (interface{}, error) {
				if err := cli.WriteCompletion(a.out, *shell, "spectralpay", completionCommands()); err != nil {
					return nil, errors.Wrap(errors.KindValidation, "completion", err)
				}
				return nil, nil
			}
		}},
	}
}

func completionCommands() []cli.Command {
	out := make([]cli.Command, 0, len(commandTable))
	for _, c := range commandTable {
		fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
		c.setup(nil, fs)
		cc := cli.Command{Name: c.name, Usage: c.usage}
		fs.VisitAll(func(f *flag.Flag) { cc.Flags = append(cc.Flags, f.Name) })
		out = append(out, cc)
	}
	return out
}
