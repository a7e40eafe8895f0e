package marketplace

import (
	"sync"
)

// JobView is a job as currently shown to the user. Provisional views carry
// an optimistic status that no authoritative read has confirmed yet.
type JobView struct {
	Job         Job    `json:"job"`
	Provisional bool   `json:"provisional"`
	Pending     Action `json:"pending_action,omitempty"`
}

// Tracker keeps the latest view of each job the client has touched.
type Tracker struct {
	mu    sync.RWMutex
	views map[string]JobView
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{views: make(map[string]JobView)}
}

// Observe records an authoritative read. It replaces any provisional view.
func (t *Tracker) Observe(job Job) JobView {
	v := JobView{Job: job.Clone()}
	t.mu.Lock()
	t.views[job.ID.String()] = v
	t.mu.Unlock()
	return v
}

// Apply records the optimistic outcome of a successful mutating action. When
// the job has not been observed yet there is nothing to update. Each mutate
// func may fill in fields the action implies, such as the assigned worker.
func (t *Tracker) Apply(jobID string, a Action, mutate ...func(*Job)) (JobView, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.views[jobID]
	if !ok {
		return JobView{}, false, nil
	}
	next, err := NextStatus(v.Job.Status, a)
	if err != nil {
		return v, true, err
	}
	v.Job = v.Job.Clone()
	v.Job.Status = next
	for _, m := range mutate {
		m(&v.Job)
	}
	v.Provisional = true
	v.Pending = a
	t.views[jobID] = v
	return v, true, nil
}

// Get returns the current view of a job.
func (t *Tracker) Get(jobID string) (JobView, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.views[jobID]
	return v, ok
}

// Forget drops a job's view.
func (t *Tracker) Forget(jobID string) {
	t.mu.Lock()
	delete(t.views, jobID)
	t.mu.Unlock()
}
