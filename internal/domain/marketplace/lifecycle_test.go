package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/errors"
)

func TestAllowedActions(t *testing.T) {
	open := AllowedActions(JobStatusOpen)
	assert.True(t, open.Has(ActionAssign))
	assert.True(t, open.Has(ActionCancel))
	assert.False(t, open.Has(ActionSubmit))
	assert.False(t, open.Has(ActionApprove))
	assert.False(t, open.Has(ActionDispute))

	assigned := AllowedActions(JobStatusAssigned)
	assert.True(t, assigned.Has(ActionSubmit))
	assert.False(t, assigned.Has(ActionApprove))

	submitted := AllowedActions(JobStatusSubmitted)
	assert.True(t, submitted.Has(ActionApprove))
	assert.True(t, submitted.Has(ActionDispute))
	assert.False(t, submitted.Has(ActionSubmit))
	assert.False(t, submitted.Has(ActionAssign))

	for _, s := range []JobStatus{JobStatusCompleted, JobStatusDisputed, JobStatusCancelled, JobStatusUnknown} {
		assert.Empty(t, AllowedActions(s), s.String())
	}
}

func TestAllowedActions_ReturnsCopy(t *testing.T) {
	s := AllowedActions(JobStatusOpen)
	s[ActionApprove] = struct{}{}
	assert.False(t, AllowedActions(JobStatusOpen).Has(ActionApprove))
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   JobStatus
		action Action
		want   JobStatus
	}{
		{JobStatusOpen, ActionAssign, JobStatusAssigned},
		{JobStatusOpen, ActionCancel, JobStatusCancelled},
		{JobStatusOpen, ActionApply, JobStatusOpen},
		{JobStatusAssigned, ActionSubmit, JobStatusSubmitted},
		{JobStatusAssigned, ActionExtendDeadline, JobStatusAssigned},
		{JobStatusAssigned, ActionRequestExtension, JobStatusAssigned},
		{JobStatusSubmitted, ActionApprove, JobStatusCompleted},
		{JobStatusSubmitted, ActionDispute, JobStatusDisputed},
		{JobStatusSubmitted, ActionExtendDeadline, JobStatusSubmitted},
	}
	for _, tt := range tests {
		got, err := NextStatus(tt.from, tt.action)
		require.NoError(t, err, "%s/%s", tt.from, tt.action)
		assert.Equal(t, tt.want, got, "%s/%s", tt.from, tt.action)
	}
}

func TestNextStatus_Illegal(t *testing.T) {
	for _, tc := range []struct {
		from   JobStatus
		action Action
	}{
		{JobStatusOpen, ActionApprove},
		{JobStatusAssigned, ActionAssign},
		{JobStatusCompleted, ActionDispute},
		{JobStatusDisputed, ActionApprove},
		{JobStatusCancelled, ActionAssign},
	} {
		got, err := NextStatus(tc.from, tc.action)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindIllegalTransition))
		assert.Equal(t, tc.from, got)
	}
}

// Every status reachable through NextStatus must be consistent with
// AllowedActions and no action may lead back to Open.
func TestNextStatus_NoReverse(t *testing.T) {
	for s := JobStatusUnknown; s <= JobStatusCancelled; s++ {
		for _, a := range AllowedActions(s).List() {
			next, err := NextStatus(s, a)
			require.NoError(t, err)
			if s != JobStatusOpen {
				assert.NotEqual(t, JobStatusOpen, next)
			}
			assert.GreaterOrEqual(t, int(next), int(s))
		}
	}
}

func TestRespondToExtension(t *testing.T) {
	got, err := RespondToExtension(ExtensionStatusPending, false)
	require.NoError(t, err)
	assert.Equal(t, ExtensionStatusRejected, got)

	got, err = RespondToExtension(ExtensionStatusPending, true)
	require.NoError(t, err)
	assert.Equal(t, ExtensionStatusApproved, got)

	for _, s := range []ExtensionRequestStatus{ExtensionStatusApproved, ExtensionStatusRejected, ExtensionStatusUnknown} {
		_, err := RespondToExtension(s, true)
		assert.True(t, errors.IsKind(err, errors.KindIllegalTransition), s.String())
	}
}

func TestPendingExtension(t *testing.T) {
	_, ok := PendingExtension(nil)
	assert.False(t, ok)

	reqs := []ExtensionRequest{
		{AdditionalDays: 2, Status: ExtensionStatusRejected},
		{AdditionalDays: 5, Status: ExtensionStatusPending},
	}
	p, ok := PendingExtension(reqs)
	require.True(t, ok)
	assert.Equal(t, uint64(5), p.AdditionalDays)
}
