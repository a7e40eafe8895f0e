package binding

import (
	"encoding/json"
)

// Step is a follow-up call made after a primary action succeeded.
type Step struct {
	Name   string
	TxHash string
	Err    error
}

// OK reports whether the step's transaction was accepted.
func (s Step) OK() bool {
	return s.Err == nil && s.TxHash != ""
}

func (s Step) MarshalJSON() ([]byte, error) {
	out := struct {
		Name   string `json:"name"`
		TxHash string `json:"tx_hash,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Name: s.Name, TxHash: s.TxHash}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// AssignOutcome is the result of assigning a worker: the assignment itself
// and the escrow funding that follows it.
type AssignOutcome struct {
	TxHash string `json:"tx_hash"`
	Escrow Step   `json:"escrow"`
}

// Partial reports that the worker was assigned but no escrow was created.
// RetryEscrow reconciles it.
func (o AssignOutcome) Partial() bool {
	return o.TxHash != "" && !o.Escrow.OK()
}

// ApproveOutcome is the result of approving work: the approval and the
// reputation award that follows it.
type ApproveOutcome struct {
	TxHash     string `json:"tx_hash"`
	Reputation Step   `json:"reputation"`
}

// Partial reports that the work was approved but the award failed.
// RetryReputation reconciles it.
func (o ApproveOutcome) Partial() bool {
	return o.TxHash != "" && !o.Reputation.OK()
}
